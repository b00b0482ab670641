// Package api defines the Tokenizer API shared by tokenizer
// implementations, so drivers can depend on the interface without importing
// a concrete tokenizer.
package api

// Tokenizer converts single words to token ids and back. Implementations
// are read-only after construction and safe for concurrent use.
//
// Both operations fail loudly on contract violations: Encode returns an
// error when a resulting symbol has no assigned id (the tokenizer was built
// from mismatched training data), Decode when the id was never assigned.
type Tokenizer interface {
	Encode(word string) ([]int, error)
	Decode(id int) (string, error)

	// SpecialTokenID returns the id for the given special token if the
	// tokenizer was built with special tokens, or an error if not.
	SpecialTokenID(token SpecialToken) (int, error)
}

// SpecialToken is an enum of the guidance markers a tokenizer may reserve
// ids for.
type SpecialToken int

const (
	TokBeginningOfSentence SpecialToken = iota
	TokEndOfSentence
	TokPad
	TokUnknown
	TokSpecialTokensCount
)

func (t SpecialToken) String() string {
	switch t {
	case TokBeginningOfSentence:
		return "beginning_of_sentence"
	case TokEndOfSentence:
		return "end_of_sentence"
	case TokPad:
		return "pad"
	case TokUnknown:
		return "unknown"
	}
	return "invalid"
}

// Text returns the default literal text of the special token.
func (t SpecialToken) Text() string {
	switch t {
	case TokBeginningOfSentence:
		return "<|bos|>"
	case TokEndOfSentence:
		return "<|eos|>"
	case TokPad:
		return "<|pad|>"
	case TokUnknown:
		return "<|unk|>"
	}
	return ""
}
