package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/gomlx/go-bpe/bpe"
	"github.com/gomlx/go-bpe/corpus"
	"github.com/gomlx/go-bpe/model"
	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

func trainCmd() *cli.Command {
	var (
		corpusPath string
		merges     int64
		marker     string
		specials   bool
		mergesOut  string
		vocabOut   string
		jsonOut    string
		progress   bool
	)

	return &cli.Command{
		Name:  "train",
		Usage: "Train a BPE merge table over a text corpus",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "corpus",
				Aliases:     []string{"i"},
				Usage:       "path to plaintext training corpus",
				Required:    true,
				Destination: &corpusPath,
			},
			&cli.Int64Flag{
				Name:        "merges",
				Aliases:     []string{"n"},
				Usage:       "number of merge rounds",
				Value:       1000,
				Destination: &merges,
			},
			&cli.StringFlag{
				Name:        "marker",
				Usage:       "end-of-word marker appended to every word (empty disables)",
				Destination: &marker,
			},
			&cli.BoolFlag{
				Name:        "special-tokens",
				Usage:       "reserve ids for <|bos|>, <|eos|>, <|pad|> and <|unk|>",
				Destination: &specials,
			},
			&cli.StringFlag{
				Name:        "save-merges",
				Usage:       "also write the merge table to this path",
				Destination: &mergesOut,
			},
			&cli.StringFlag{
				Name:        "save-vocab",
				Usage:       "also write the final vocabulary to this path",
				Destination: &vocabOut,
			},
			&cli.StringFlag{
				Name:        "export-json",
				Usage:       "also write a tokenizer.json style export to this path",
				Destination: &jsonOut,
			},
			&cli.BoolFlag{
				Name:        "progress",
				Usage:       "print each merge as it is selected",
				Destination: &progress,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging()
			applyTrainConfig(cmd, LoadConfig(), &merges, &marker)

			words, err := corpus.Load(corpusPath)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				return errors.Errorf("corpus %q contains no words", corpusPath)
			}

			cfg := bpe.Config{Merges: int(merges), Marker: marker}
			if progress {
				cfg.Observer = func(round int, pair bpe.Pair, freq int) {
					fmt.Printf("round %4d: %q + %q -> %q (freq %d)\n",
						round, pair.Left, pair.Right, pair.Merged(), freq)
				}
			}
			trainer, err := bpe.NewTrainer(bpe.NewVocabulary(words, marker), cfg)
			if err != nil {
				return err
			}
			res := trainer.Train()

			var opts []bpetokenizer.Option
			if specials {
				opts = append(opts, bpetokenizer.WithSpecialTokens())
			}
			tok := bpetokenizer.New(res, opts...)

			fmt.Printf("run %s: %d words, %d distinct sequences\n", res.RunID, len(words), len(res.Vocab))
			if res.Exhausted() {
				fmt.Printf("training exhausted: %d of %d merges performed\n", len(res.Merges), merges)
			} else {
				fmt.Printf("training complete: %d merges performed\n", len(res.Merges))
			}
			fmt.Printf("token set size: %d\n", tok.VocabSize())

			if modelPath != "" {
				if err := model.SaveTokenizer(modelPath, tok); err != nil {
					return err
				}
				fmt.Printf("wrote model to %s\n", modelPath)
			}
			if mergesOut != "" {
				if err := model.SaveMerges(mergesOut, res.Merges); err != nil {
					return err
				}
				fmt.Printf("wrote merges to %s\n", mergesOut)
			}
			if vocabOut != "" {
				if err := model.SaveVocab(vocabOut, res.Vocab); err != nil {
					return err
				}
				fmt.Printf("wrote vocabulary to %s\n", vocabOut)
			}
			if jsonOut != "" {
				f, err := os.Create(jsonOut)
				if err != nil {
					return errors.Wrapf(err, "creating %q", jsonOut)
				}
				err = model.ExportJSON(f, tok, res.RunID.String())
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				fmt.Printf("wrote JSON export to %s\n", jsonOut)
			}
			return nil
		},
	}
}
