package model

import (
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/gomlx/go-bpe/bpe"
	"github.com/gomlx/go-bpe/tokenizers/api"
	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

// TokenizerJSON is the JSON export of a trained tokenizer, shaped after the
// HuggingFace tokenizer.json layout so the dump is familiar to inspect. It
// is a diagnostic/interchange format, not the canonical model file.
type TokenizerJSON struct {
	Version     string       `json:"version"`
	RunID       string       `json:"run_id,omitempty"`
	AddedTokens []AddedToken `json:"added_tokens,omitempty"`
	Model       ModelJSON    `json:"model"`
}

// AddedToken is a special token entry in the export.
type AddedToken struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Special bool   `json:"special"`
}

// ModelJSON holds the BPE model itself: the vocabulary with id assignments
// and the merge list in rank order, each merge rendered "left right".
type ModelJSON struct {
	Type            string             `json:"type"`
	EndOfWordSuffix string             `json:"end_of_word_suffix,omitempty"`
	Vocab           map[string]int     `json:"vocab"`
	Merges          []string           `json:"merges"`
	Scores          map[string]float64 `json:"scores,omitempty"`
}

// ExportJSON writes the tokenizer to w as TokenizerJSON. runID may be empty.
func ExportJSON(w io.Writer, t *bpetokenizer.Tokenizer, runID string) error {
	merges := t.Merges()
	export := TokenizerJSON{
		Version: "1.0",
		RunID:   runID,
		Model: ModelJSON{
			Type:            "BPE",
			EndOfWordSuffix: t.Marker(),
			Vocab:           make(map[string]int, t.VocabSize()),
			Merges:          make([]string, 0, len(merges)),
			Scores:          t.Scores(),
		},
	}
	for id, tok := range t.Tokens() {
		export.Model.Vocab[tok] = id
	}
	for _, m := range merges {
		export.Model.Merges = append(export.Model.Merges, m.Pair.String())
	}
	if t.HasSpecialTokens() {
		for st := api.SpecialToken(0); st < api.TokSpecialTokensCount; st++ {
			id, err := t.SpecialTokenID(st)
			if err != nil {
				return err
			}
			export.AddedTokens = append(export.AddedTokens, AddedToken{
				ID:      id,
				Content: st.Text(),
				Special: true,
			})
			// Specials are reserved ids, not vocabulary entries.
			delete(export.Model.Vocab, st.Text())
			delete(export.Model.Scores, st.Text())
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return errors.Wrapf(err, "encoding tokenizer export")
	}
	return nil
}

// ImportJSON rebuilds a tokenizer from a TokenizerJSON export. Merge
// frequencies are not part of the export and come back as zero; ranks and
// scores are fully reconstructed from merge order.
func ImportJSON(r io.Reader) (*bpetokenizer.Tokenizer, error) {
	var export TokenizerJSON
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, errors.Wrapf(err, "decoding tokenizer export")
	}
	if export.Model.Type != "BPE" {
		return nil, errors.Errorf("unsupported model type %q", export.Model.Type)
	}

	merges := make(bpe.MergeTable, 0, len(export.Model.Merges))
	for i, m := range export.Model.Merges {
		left, right, ok := strings.Cut(m, " ")
		if !ok {
			return nil, errors.Errorf("malformed merge %d: %q", i, m)
		}
		merges = append(merges, bpe.Merge{Pair: bpe.Pair{Left: left, Right: right}})
	}

	// Vocab ids are contiguous and start after any reserved special ids.
	firstCore := len(export.AddedTokens)
	core := make([]string, len(export.Model.Vocab))
	for tok, id := range export.Model.Vocab {
		idx := id - firstCore
		if idx < 0 || idx >= len(core) {
			return nil, errors.Errorf("vocab id %d for %q out of range", id, tok)
		}
		core[idx] = tok
	}
	return bpetokenizer.Restore(export.Model.EndOfWordSuffix, merges, core, firstCore > 0), nil
}
