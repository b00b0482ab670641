// Package bpetokenizer implements a tokenizer built from a completed BPE
// training result. The tokenizer owns the merge table and the token set (id
// mapping in both directions); it is immutable after construction and safe
// for concurrent Encode/Decode calls.
package bpetokenizer

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/gomlx/go-bpe/bpe"
	"github.com/gomlx/go-bpe/tokenizers/api"
)

// NeverMergedScore is the Score of a symbol that no merge produced: a base
// alphabet symbol has no rank, so it sorts below every merged symbol.
const NeverMergedScore = -1e6

var (
	// ErrUnknownSymbol reports an encode result symbol with no assigned id.
	// It means the tokenizer's token set was not derived from the same
	// vocabulary it trained on, a caller contract violation.
	ErrUnknownSymbol = errors.New("symbol not present in token set")
	// ErrIDOutOfRange reports a decode call with an id that was never
	// assigned.
	ErrIDOutOfRange = errors.New("token id out of range")
)

// Option configures tokenizer construction.
type Option func(*options)

type options struct {
	specialTokens bool
}

// WithSpecialTokens reserves the first ids for the bos/eos/pad/unk markers,
// in that order; the core token set follows in lexicographic order.
func WithSpecialTokens() Option {
	return func(o *options) { o.specialTokens = true }
}

// Tokenizer maps between words and token ids using a trained merge table.
type Tokenizer struct {
	marker    string
	merges    bpe.MergeTable
	mergeRank map[bpe.Pair]int
	ranks     map[string]int
	tokenToID map[string]int
	idToToken []string
	special   map[api.SpecialToken]int
}

var _ api.Tokenizer = &Tokenizer{}

// New builds a tokenizer from a training result. Ids are assigned to the
// distinct symbols of the final vocabulary in lexicographic order of their
// literal text, so identical trainings yield identical id assignments.
func New(res *bpe.Result, opts ...Option) *Tokenizer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return build(res.Marker, res.Merges, res.Vocab.Symbols(), o.specialTokens)
}

// Restore rebuilds a tokenizer from persisted parts: the marker, the ordered
// merge table and the core token list in id order (specials excluded).
func Restore(marker string, merges bpe.MergeTable, tokens []string, specialTokens bool) *Tokenizer {
	return build(marker, merges, tokens, specialTokens)
}

func build(marker string, merges bpe.MergeTable, core []string, specialTokens bool) *Tokenizer {
	t := &Tokenizer{
		marker:    marker,
		merges:    merges,
		mergeRank: make(map[bpe.Pair]int, len(merges)),
		ranks:     make(map[string]int, len(merges)),
	}
	for round, m := range merges {
		if _, ok := t.mergeRank[m.Pair]; !ok {
			t.mergeRank[m.Pair] = round
		}
		if _, ok := t.ranks[m.Pair.Merged()]; !ok {
			t.ranks[m.Pair.Merged()] = round
		}
	}

	if specialTokens {
		t.special = make(map[api.SpecialToken]int, api.TokSpecialTokensCount)
		for tok := api.SpecialToken(0); tok < api.TokSpecialTokensCount; tok++ {
			t.special[tok] = len(t.idToToken)
			t.idToToken = append(t.idToToken, tok.Text())
		}
	}
	t.idToToken = append(t.idToToken, core...)

	t.tokenToID = make(map[string]int, len(t.idToToken))
	for id, tok := range t.idToToken {
		t.tokenToID[tok] = id
	}
	return t
}

// Train trains a merge table over words and builds the tokenizer from it.
// The result is returned alongside for callers that want the merge table and
// the final vocabulary for reporting or persistence.
func Train(words []string, merges int, marker string, opts ...Option) (*Tokenizer, *bpe.Result, error) {
	res, err := bpe.Train(words, bpe.Config{Merges: merges, Marker: marker})
	if err != nil {
		return nil, nil, err
	}
	return New(res, opts...), res, nil
}

// Tokens returns the token set in id order.
func (t *Tokenizer) Tokens() []string {
	out := make([]string, len(t.idToToken))
	copy(out, t.idToToken)
	return out
}

// Merges returns the ordered merge table the tokenizer was built from.
func (t *Tokenizer) Merges() bpe.MergeTable {
	out := make(bpe.MergeTable, len(t.merges))
	copy(out, t.merges)
	return out
}

// Marker returns the end-of-word marker the training used, or "".
func (t *Tokenizer) Marker() string {
	return t.marker
}

// VocabSize returns the number of assigned ids, special tokens included.
func (t *Tokenizer) VocabSize() int {
	return len(t.idToToken)
}

// HasSpecialTokens reports whether ids were reserved for special tokens.
func (t *Tokenizer) HasSpecialTokens() bool {
	return t.special != nil
}

// TokenToID returns the id assigned to a token.
func (t *Tokenizer) TokenToID(token string) (int, bool) {
	id, ok := t.tokenToID[token]
	return id, ok
}

// IDToToken returns the token text for an id.
func (t *Tokenizer) IDToToken(id int) (string, bool) {
	if id < 0 || id >= len(t.idToToken) {
		return "", false
	}
	return t.idToToken[id], true
}

// Rank returns the training round whose merge produced this symbol's text.
// Base alphabet symbols were never produced by a merge and have no rank.
func (t *Tokenizer) Rank(symbol string) (int, bool) {
	rank, ok := t.ranks[symbol]
	return rank, ok
}

// Score returns -ln(rank+1) for merged symbols, so symbols merged earlier
// score higher, and NeverMergedScore for symbols with no rank. A merge
// priority heuristic for downstream consumers, not a probability.
func (t *Tokenizer) Score(symbol string) float64 {
	rank, ok := t.ranks[symbol]
	if !ok {
		return NeverMergedScore
	}
	return -math.Log(float64(rank + 1))
}

// Scores returns the Score of every token in the set, keyed by token text.
func (t *Tokenizer) Scores() map[string]float64 {
	scores := make(map[string]float64, len(t.idToToken))
	for _, tok := range t.idToToken {
		scores[tok] = t.Score(tok)
	}
	return scores
}

// Encode converts one word into token ids: the word is decomposed exactly as
// at training time (single code point symbols plus the marker), the merge
// table is applied in rank order until no entry applies, and the resulting
// symbols are mapped to ids. A symbol without an id is ErrUnknownSymbol.
func (t *Tokenizer) Encode(word string) ([]int, error) {
	seq := t.merge(bpe.Split(word, t.marker))
	if len(seq) == 0 {
		return nil, nil
	}
	ids := make([]int, len(seq))
	for i, sym := range seq {
		id, ok := t.tokenToID[sym]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSymbol, "encoding %q: symbol %q", word, sym)
		}
		ids[i] = id
	}
	return ids, nil
}

// merge applies the trained merge table to a sequence. Each iteration picks
// the applicable pair with the lowest rank and collapses all of its
// non-overlapping occurrences, the same rewrite training uses, so the loop
// replays the table in rank order.
func (t *Tokenizer) merge(seq bpe.Sequence) bpe.Sequence {
	for len(seq) > 1 {
		bestRank := -1
		var best bpe.Pair
		for i := 0; i+1 < len(seq); i++ {
			pair := bpe.Pair{Left: seq[i], Right: seq[i+1]}
			if rank, ok := t.mergeRank[pair]; ok && (bestRank == -1 || rank < bestRank) {
				bestRank, best = rank, pair
			}
		}
		if bestRank == -1 {
			break
		}
		seq = bpe.MergeSequence(seq, best)
	}
	return seq
}

// EncodeText splits text into whitespace-delimited words and encodes each in
// order. When requested, the bos/eos ids wrap the result; both require the
// tokenizer to have been built with special tokens.
func (t *Tokenizer) EncodeText(text string, addBOS, addEOS bool) ([]int, error) {
	var ids []int
	if addBOS {
		id, err := t.SpecialTokenID(api.TokBeginningOfSentence)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	for _, word := range strings.Fields(text) {
		wordIDs, err := t.Encode(word)
		if err != nil {
			return nil, err
		}
		ids = append(ids, wordIDs...)
	}
	if addEOS {
		id, err := t.SpecialTokenID(api.TokEndOfSentence)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode returns the symbol text assigned to an id. An unassigned id is
// ErrIDOutOfRange.
func (t *Tokenizer) Decode(id int) (string, error) {
	tok, ok := t.IDToToken(id)
	if !ok {
		return "", errors.Wrapf(ErrIDOutOfRange, "id %d, vocab size %d", id, len(t.idToToken))
	}
	return tok, nil
}

// DecodeAll decodes each id in order, failing on the first unassigned id.
func (t *Tokenizer) DecodeAll(ids []int) ([]string, error) {
	symbols := make([]string, len(ids))
	for i, id := range ids {
		sym, err := t.Decode(id)
		if err != nil {
			return nil, err
		}
		symbols[i] = sym
	}
	return symbols, nil
}

// DecodeText decodes ids and reassembles text: symbols are concatenated and
// end-of-word markers become word boundaries.
func (t *Tokenizer) DecodeText(ids []int) (string, error) {
	symbols, err := t.DecodeAll(ids)
	if err != nil {
		return "", err
	}
	text := strings.Join(symbols, "")
	if t.marker != "" {
		text = strings.TrimSuffix(strings.ReplaceAll(text, t.marker, " "), " ")
	}
	return text, nil
}

// SpecialTokenID returns the id reserved for the given special token.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	id, ok := t.special[token]
	if !ok {
		return 0, errors.Errorf("special token %s not available", token)
	}
	return id, nil
}
