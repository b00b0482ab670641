package bpe

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	got := Split("low", "")
	want := Sequence{"l", "o", "w"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(\"low\", \"\") = %v, want %v", got, want)
	}

	got = Split("low", "</w>")
	want = Sequence{"l", "o", "w", "</w>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(\"low\", \"</w>\") = %v, want %v", got, want)
	}

	if got := Split("", "</w>"); got != nil {
		t.Errorf("Split(\"\", marker) = %v, want nil", got)
	}
}

func TestSplitMultiByteRunes(t *testing.T) {
	// Code points, not bytes: the umlaut and the kanji stay whole.
	got := Split("bär", "")
	want := Sequence{"b", "ä", "r"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(\"bär\", \"\") = %v, want %v", got, want)
	}

	got = Split("日本", "")
	want = Sequence{"日", "本"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(\"日本\", \"\") = %v, want %v", got, want)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	seq := Sequence{"lo", "w", "e", "r"}
	if got := ParseSequence(seq.Render()); !reflect.DeepEqual(got, seq) {
		t.Errorf("ParseSequence(Render()) = %v, want %v", got, seq)
	}
	if got := ParseSequence(""); got != nil {
		t.Errorf("ParseSequence(\"\") = %v, want nil", got)
	}
}

func TestNewVocabulary(t *testing.T) {
	vocab := NewVocabulary([]string{"low", "low", "lo"}, "")
	want := Vocabulary{
		"l o w": 2,
		"l o":   1,
	}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("NewVocabulary = %v, want %v", vocab, want)
	}
	if got := vocab.TotalFrequency(); got != 3 {
		t.Errorf("TotalFrequency = %d, want 3", got)
	}
}

func TestNewVocabularyMarker(t *testing.T) {
	vocab := NewVocabulary([]string{"lo"}, "</w>")
	want := Vocabulary{"l o </w>": 1}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("NewVocabulary with marker = %v, want %v", vocab, want)
	}
}

func TestNewVocabularySkipsEmptyWords(t *testing.T) {
	vocab := NewVocabulary([]string{"", "a", ""}, "")
	want := Vocabulary{"a": 1}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("NewVocabulary = %v, want %v", vocab, want)
	}

	if got := NewVocabulary(nil, ""); len(got) != 0 {
		t.Errorf("NewVocabulary(nil) = %v, want empty", got)
	}
}

func TestClone(t *testing.T) {
	vocab := NewVocabulary([]string{"low"}, "")
	clone := vocab.Clone()
	clone["l o w"] = 99
	if vocab["l o w"] != 1 {
		t.Errorf("Clone shares storage with original")
	}
}

func TestSymbols(t *testing.T) {
	vocab := Vocabulary{
		"lo w e r": 1,
		"w i de":   2,
	}
	got := vocab.Symbols()
	want := []string{"de", "e", "i", "lo", "r", "w"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols = %v, want %v", got, want)
	}
}
