package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func inspectCmd() *cli.Command {
	var showMerges bool

	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the token set and merge table of a trained model",
		Flags: append(commonModelFlags(),
			&cli.BoolFlag{
				Name:        "merges",
				Usage:       "also print the merge table in rank order",
				Destination: &showMerges,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			setupLogging()
			applyModelConfig(cmd, LoadConfig())

			tok, err := loadModel()
			if err != nil {
				return err
			}
			printModel(tok, showMerges)
			return nil
		},
	}
}

func printModel(tok *bpetokenizer.Tokenizer, showMerges bool) {
	fmt.Println(headerStyle.Render("Model"))
	fmt.Printf("  tokens:         %d\n", tok.VocabSize())
	fmt.Printf("  merges:         %d\n", len(tok.Merges()))
	fmt.Printf("  marker:         %q\n", tok.Marker())
	fmt.Printf("  special tokens: %v\n", tok.HasSpecialTokens())
	fmt.Println()

	fmt.Println(headerStyle.Render("Tokens"))
	for id, text := range tok.Tokens() {
		score := tok.Score(text)
		line := fmt.Sprintf("  %6d  %-20s", id, tokenStyle.Render(fmt.Sprintf("%q", text)))
		if score == bpetokenizer.NeverMergedScore {
			line += dimStyle.Render("never merged")
		} else {
			line += fmt.Sprintf("%.4f", score)
		}
		fmt.Println(line)
	}

	if showMerges {
		fmt.Println()
		fmt.Println(headerStyle.Render("Merges"))
		for rank, m := range tok.Merges() {
			fmt.Printf("  %6d  %q + %q -> %q  (freq %d)\n",
				rank, m.Pair.Left, m.Pair.Right, m.Pair.Merged(), m.Freq)
		}
	}
}
