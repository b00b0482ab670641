// Package bpe implements byte-pair encoding merge training over a word
// vocabulary (Sennrich et al., arXiv:1508.07909).
//
// Training starts from a Vocabulary mapping each corpus word, rendered as a
// space-joined sequence of single-code-point symbols, to its corpus
// frequency. Each round counts adjacent symbol pairs, selects the most
// frequent one and rewrites the vocabulary with the pair collapsed into a
// single symbol. The ordered list of selected pairs is the merge table that
// tokenizers are built from.
package bpe

import (
	"sort"
	"strings"
)

// Symbol is an atomic subword unit: a single code point from the corpus, or
// the concatenation produced by a previous merge. Identity is value equality.
type Symbol = string

// Sequence is the ordered list of symbols representing one corpus word.
// A sequence held by a Vocabulary is never empty.
type Sequence []Symbol

// Render returns the canonical textual rendering of the sequence: its
// symbols joined by a single space. Corpus words are whitespace-delimited,
// so a space can never occur inside a symbol.
func (s Sequence) Render() string {
	return strings.Join(s, " ")
}

// ParseSequence splits a canonical rendering back into its symbols.
func ParseSequence(rendering string) Sequence {
	if rendering == "" {
		return nil
	}
	return strings.Split(rendering, " ")
}

// Split decomposes a word into one symbol per code point (multi-byte glyphs
// are never split into bytes) and appends marker as a final symbol when it
// is non-empty. An empty word yields a nil sequence.
func Split(word, marker string) Sequence {
	if word == "" {
		return nil
	}
	seq := make(Sequence, 0, len(word)+1)
	for _, r := range word {
		seq = append(seq, string(r))
	}
	if marker != "" {
		seq = append(seq, marker)
	}
	return seq
}

// Vocabulary maps the canonical rendering of each symbol sequence to its
// corpus frequency. Frequencies always accumulate: when two sequences become
// identical (at construction from duplicate words, or after a merge rewrite)
// their frequencies are summed, never overwritten.
type Vocabulary map[string]int

// NewVocabulary builds the initial vocabulary from an ordered list of corpus
// words, splitting each word into single-code-point symbols plus the optional
// end-of-word marker. Duplicate words accumulate frequency, so the total
// frequency equals the number of non-empty input words.
//
// Empty words are skipped as a deliberate no-op contribution: they carry no
// symbols and would otherwise violate the non-empty sequence invariant.
func NewVocabulary(words []string, marker string) Vocabulary {
	vocab := make(Vocabulary, len(words))
	for _, word := range words {
		seq := Split(word, marker)
		if len(seq) == 0 {
			continue
		}
		vocab[seq.Render()]++
	}
	return vocab
}

// TotalFrequency returns the summed frequency over all sequences. Merge
// application conserves this value.
func (v Vocabulary) TotalFrequency() int {
	total := 0
	for _, freq := range v {
		total += freq
	}
	return total
}

// Clone returns an independent copy of the vocabulary.
func (v Vocabulary) Clone() Vocabulary {
	clone := make(Vocabulary, len(v))
	for rendering, freq := range v {
		clone[rendering] = freq
	}
	return clone
}

// Symbols returns the distinct symbols occurring in the vocabulary's
// sequences, sorted lexicographically by their literal text.
func (v Vocabulary) Symbols() []string {
	seen := make(map[string]struct{})
	for rendering := range v {
		for _, sym := range ParseSequence(rendering) {
			seen[sym] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}
