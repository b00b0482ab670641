// Package model persists trained BPE artifacts: the merge table, the
// vocabulary and the full tokenizer model. All files are little-endian
// binaries with a magic/version header; saves are atomic (written to a
// temporary file under a file lock, then renamed).
package model

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gomlx/go-bpe/bpe"
	"github.com/gomlx/go-bpe/tokenizers/api"
	"github.com/gomlx/go-bpe/tokenizers/bpetokenizer"
)

const (
	// MergesMagic identifies a merges file ("pair").
	MergesMagic uint32 = 0x70616972
	// VocabMagic identifies a vocabulary file ("syms").
	VocabMagic uint32 = 0x73796D73
	// TokenizerMagic identifies a tokenizer model file ("voxp").
	TokenizerMagic uint32 = 0x766F7870
	// Version is the current format version for all three files.
	Version uint32 = 1

	// maxStringLen is a sanity bound for a single length-prefixed string.
	maxStringLen = 1 << 20
)

// SaveMerges writes the ordered merge table to path.
//
// Format: magic, version, count (uint32 each); per merge: left and right
// symbol as length-prefixed strings, then the selection frequency (int32).
func SaveMerges(path string, merges bpe.MergeTable) error {
	return lockedWrite(path, func(w io.Writer) error {
		if err := writeHeader(w, MergesMagic, uint32(len(merges))); err != nil {
			return err
		}
		for _, m := range merges {
			if err := writeString(w, m.Pair.Left); err != nil {
				return err
			}
			if err := writeString(w, m.Pair.Right); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, int32(m.Freq)); err != nil {
				return fmt.Errorf("model: write merge freq: %w", err)
			}
		}
		return nil
	})
}

// LoadMerges reads a merge table written by SaveMerges.
func LoadMerges(path string) (bpe.MergeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count, err := readHeader(r, MergesMagic)
	if err != nil {
		return nil, err
	}
	merges := make(bpe.MergeTable, 0, count)
	for i := uint32(0); i < count; i++ {
		left, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read merge %d left: %w", i, err)
		}
		right, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read merge %d right: %w", i, err)
		}
		var freq int32
		if err := binary.Read(r, binary.LittleEndian, &freq); err != nil {
			return nil, fmt.Errorf("model: read merge %d freq: %w", i, err)
		}
		merges = append(merges, bpe.Merge{Pair: bpe.Pair{Left: left, Right: right}, Freq: int(freq)})
	}
	return merges, nil
}

// SaveVocab writes a vocabulary to path.
//
// Format: magic, version, count; per entry: the sequence rendering as a
// length-prefixed string, then the frequency (int32).
func SaveVocab(path string, vocab bpe.Vocabulary) error {
	return lockedWrite(path, func(w io.Writer) error {
		if err := writeHeader(w, VocabMagic, uint32(len(vocab))); err != nil {
			return err
		}
		for rendering, freq := range vocab {
			if err := writeString(w, rendering); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, int32(freq)); err != nil {
				return fmt.Errorf("model: write vocab freq: %w", err)
			}
		}
		return nil
	})
}

// LoadVocab reads a vocabulary written by SaveVocab.
func LoadVocab(path string) (bpe.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count, err := readHeader(r, VocabMagic)
	if err != nil {
		return nil, err
	}
	vocab := make(bpe.Vocabulary, count)
	for i := uint32(0); i < count; i++ {
		rendering, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read vocab entry %d: %w", i, err)
		}
		var freq int32
		if err := binary.Read(r, binary.LittleEndian, &freq); err != nil {
			return nil, fmt.Errorf("model: read vocab freq %d: %w", i, err)
		}
		vocab[rendering] += int(freq)
	}
	return vocab, nil
}

// SaveTokenizer writes a complete tokenizer model to path.
//
// Format: magic, version; marker string; specials flag (uint8); merge count
// and merges as in SaveMerges; core token count and tokens in id order
// (special tokens are not stored, they are reconstructed on load).
func SaveTokenizer(path string, t *bpetokenizer.Tokenizer) error {
	return lockedWrite(path, func(w io.Writer) error {
		if err := writeHeader(w, TokenizerMagic, 0); err != nil {
			return err
		}
		if err := writeString(w, t.Marker()); err != nil {
			return err
		}
		specials := uint8(0)
		if t.HasSpecialTokens() {
			specials = 1
		}
		if err := binary.Write(w, binary.LittleEndian, specials); err != nil {
			return fmt.Errorf("model: write specials flag: %w", err)
		}

		merges := t.Merges()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(merges))); err != nil {
			return fmt.Errorf("model: write merge count: %w", err)
		}
		for _, m := range merges {
			if err := writeString(w, m.Pair.Left); err != nil {
				return err
			}
			if err := writeString(w, m.Pair.Right); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, int32(m.Freq)); err != nil {
				return fmt.Errorf("model: write merge freq: %w", err)
			}
		}

		core := coreTokens(t)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(core))); err != nil {
			return fmt.Errorf("model: write token count: %w", err)
		}
		for _, tok := range core {
			if err := writeString(w, tok); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTokenizer reads a tokenizer model written by SaveTokenizer.
func LoadTokenizer(path string) (*bpetokenizer.Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if _, err := readHeader(r, TokenizerMagic); err != nil {
		return nil, err
	}
	marker, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("model: read marker: %w", err)
	}
	var specials uint8
	if err := binary.Read(r, binary.LittleEndian, &specials); err != nil {
		return nil, fmt.Errorf("model: read specials flag: %w", err)
	}

	var mergeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &mergeCount); err != nil {
		return nil, fmt.Errorf("model: read merge count: %w", err)
	}
	merges := make(bpe.MergeTable, 0, mergeCount)
	for i := uint32(0); i < mergeCount; i++ {
		left, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read merge %d left: %w", i, err)
		}
		right, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read merge %d right: %w", i, err)
		}
		var freq int32
		if err := binary.Read(r, binary.LittleEndian, &freq); err != nil {
			return nil, fmt.Errorf("model: read merge %d freq: %w", i, err)
		}
		merges = append(merges, bpe.Merge{Pair: bpe.Pair{Left: left, Right: right}, Freq: int(freq)})
	}

	var tokenCount uint32
	if err := binary.Read(r, binary.LittleEndian, &tokenCount); err != nil {
		return nil, fmt.Errorf("model: read token count: %w", err)
	}
	core := make([]string, 0, tokenCount)
	for i := uint32(0); i < tokenCount; i++ {
		tok, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("model: read token %d: %w", i, err)
		}
		core = append(core, tok)
	}

	return bpetokenizer.Restore(marker, merges, core, specials != 0), nil
}

// coreTokens returns the token list in id order with reserved special token
// ids stripped.
func coreTokens(t *bpetokenizer.Tokenizer) []string {
	tokens := t.Tokens()
	if t.HasSpecialTokens() {
		tokens = tokens[api.TokSpecialTokensCount:]
	}
	return tokens
}

// writeHeader writes magic, version and a count field.
func writeHeader(w io.Writer, magic, count uint32) error {
	for _, v := range []uint32{magic, Version, count} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("model: write header: %w", err)
		}
	}
	return nil
}

// readHeader reads and validates magic and version, returning the count.
func readHeader(r io.Reader, wantMagic uint32) (uint32, error) {
	var magic, version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return 0, fmt.Errorf("model: read magic: %w", err)
	}
	if magic != wantMagic {
		return 0, fmt.Errorf("model: invalid magic 0x%08X, expected 0x%08X", magic, wantMagic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, fmt.Errorf("model: read version: %w", err)
	}
	if version != Version {
		return 0, fmt.Errorf("model: unsupported version %d (current %d)", version, Version)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, fmt.Errorf("model: read count: %w", err)
	}
	return count, nil
}

// writeString writes a uint32 length prefix followed by the string bytes.
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("model: write string length: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("model: write string data: %w", err)
	}
	return nil
}

// readString reads a length-prefixed string.
func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds %d limit", length, maxStringLen)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	return string(buf), nil
}
