// Package corpus loads whitespace-delimited training words from plaintext
// files. This is the corpus-loading collaborator of the trainer: it performs
// no preprocessing beyond input decoding: case, punctuation and anything
// else pass through verbatim.
package corpus

import (
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// mmapThreshold is the file size above which the corpus is memory-mapped
// instead of read into a buffer.
const mmapThreshold = 1 << 20

// Load reads the file at path and returns its whitespace-delimited words in
// order. UTF-16 inputs and byte order marks are transparently decoded to
// UTF-8; plain UTF-8 passes through untouched.
func Load(path string) ([]string, error) {
	data, closer, err := readFile(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	text, err := decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding corpus %q", path)
	}
	return strings.Fields(text), nil
}

// Words splits already-loaded text into whitespace-delimited words.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordFrequencies counts the occurrences of each distinct word.
func WordFrequencies(words []string) map[string]int {
	freqs := make(map[string]int, len(words))
	for _, word := range words {
		freqs[word]++
	}
	return freqs
}

// readFile returns the file's bytes and a release function. Large files are
// memory-mapped; small ones are read into memory so the common case avoids
// the mapping syscalls.
func readFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening corpus %q", path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errors.Wrapf(err, "stating corpus %q", path)
	}

	if info.Size() >= mmapThreshold {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			_ = f.Close()
			return nil, nil, errors.Wrapf(err, "mapping corpus %q", path)
		}
		return m, func() {
			_ = m.Unmap()
			_ = f.Close()
		}, nil
	}

	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading corpus %q", path)
	}
	return data, func() {}, nil
}

// decode converts BOM-prefixed or UTF-16 input to UTF-8.
func decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
