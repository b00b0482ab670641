package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/gomlx/go-bpe/internal/files"
	"github.com/gomlx/go-bpe/model"
	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

// loadModel loads the tokenizer named by --model, with a friendlier error
// than the raw open failure when the path is missing.
func loadModel() (*bpetokenizer.Tokenizer, error) {
	if modelPath == "" {
		return nil, errors.New("no model given, use --model or set model_path in the config file")
	}
	if !files.Exists(modelPath) {
		return nil, errors.Errorf("model file %q does not exist", modelPath)
	}
	return model.LoadTokenizer(modelPath)
}

func encodeCmd() *cli.Command {
	var (
		prompt string
		addBOS bool
		addEOS bool
	)

	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode text into token ids with a trained model",
		ArgsUsage: "[text...]",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "text to encode (alternative to positional args)",
				Destination: &prompt,
			},
			&cli.BoolFlag{
				Name:        "add-bos",
				Usage:       "prepend the beginning-of-sentence id",
				Destination: &addBOS,
			},
			&cli.BoolFlag{
				Name:        "add-eos",
				Usage:       "append the end-of-sentence id",
				Destination: &addEOS,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging()
			applyModelConfig(cmd, LoadConfig())

			text := prompt
			if text == "" {
				text = strings.Join(cmd.Args().Slice(), " ")
			}
			if text == "" {
				return errors.New("nothing to encode, pass text or --prompt")
			}

			tok, err := loadModel()
			if err != nil {
				return err
			}
			ids, err := tok.EncodeText(text, addBOS, addEOS)
			if err != nil {
				return err
			}
			symbols, err := tok.DecodeAll(ids)
			if err != nil {
				return err
			}
			for i, id := range ids {
				fmt.Printf("%6d  %q\n", id, symbols[i])
			}
			return nil
		},
	}
}

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode token ids back into text",
		ArgsUsage: "id [id...]",
		Flags:     commonModelFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging()
			applyModelConfig(cmd, LoadConfig())

			args := cmd.Args().Slice()
			if len(args) == 0 {
				return errors.New("no token ids given")
			}
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, err := strconv.Atoi(arg)
				if err != nil {
					return errors.Wrapf(err, "parsing token id %q", arg)
				}
				ids = append(ids, id)
			}

			tok, err := loadModel()
			if err != nil {
				return err
			}
			text, err := tok.DecodeText(ids)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}
