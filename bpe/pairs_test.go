package bpe

import (
	"reflect"
	"testing"
)

func TestCount(t *testing.T) {
	vocab := Vocabulary{
		"l o w": 2,
		"l o":   1,
	}
	got := Count(vocab)
	want := PairCounts{
		{"l", "o"}: 3,
		{"o", "w"}: 2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Count = %v, want %v", got, want)
	}
}

func TestCountSingleSymbolSequences(t *testing.T) {
	// A fully merged sequence has no adjacent pairs left.
	got := Count(Vocabulary{"low": 5})
	if len(got) != 0 {
		t.Errorf("Count of single-symbol vocab = %v, want empty", got)
	}
}

func TestBest(t *testing.T) {
	counts := PairCounts{
		{"a", "b"}: 3,
		{"b", "c"}: 5,
		{"c", "d"}: 1,
	}
	pair, freq, ok := counts.Best()
	if !ok || pair != (Pair{"b", "c"}) || freq != 5 {
		t.Errorf("Best = %v/%d/%v, want {b c}/5/true", pair, freq, ok)
	}
}

func TestBestTieBreak(t *testing.T) {
	counts := PairCounts{
		{"w", "i"}: 3,
		{"l", "o"}: 3,
		{"d", "e"}: 3,
		{"i", "d"}: 3,
		{"o", "w"}: 2,
	}
	// Ties resolve to the lexicographically smallest pair, and the result
	// must not depend on map iteration order.
	for i := 0; i < 10; i++ {
		pair, freq, ok := counts.Best()
		if !ok || pair != (Pair{"d", "e"}) || freq != 3 {
			t.Fatalf("Best = %v/%d/%v, want {d e}/3/true", pair, freq, ok)
		}
	}
}

func TestBestTieBreakRightElement(t *testing.T) {
	counts := PairCounts{
		{"a", "c"}: 2,
		{"a", "b"}: 2,
	}
	pair, _, _ := counts.Best()
	if pair != (Pair{"a", "b"}) {
		t.Errorf("Best = %v, want {a b}", pair)
	}
}

func TestBestEmpty(t *testing.T) {
	if _, _, ok := (PairCounts{}).Best(); ok {
		t.Errorf("Best of empty counts reported ok")
	}
}

func TestMergeSequence(t *testing.T) {
	got := MergeSequence(Sequence{"l", "o", "w", "e", "r"}, Pair{"l", "o"})
	want := Sequence{"lo", "w", "e", "r"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeSequence = %v, want %v", got, want)
	}
}

func TestMergeSequenceNonOverlapping(t *testing.T) {
	// Left-to-right, consumed symbols are skipped: the fresh "aa" is not
	// rematched against the trailing "a".
	got := MergeSequence(Sequence{"a", "a", "a"}, Pair{"a", "a"})
	want := Sequence{"aa", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeSequence([a a a], {a a}) = %v, want %v", got, want)
	}

	got = MergeSequence(Sequence{"a", "a", "a", "a"}, Pair{"a", "a"})
	want = Sequence{"aa", "aa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeSequence([a a a a], {a a}) = %v, want %v", got, want)
	}
}

func TestMergeSequenceDoesNotModifyInput(t *testing.T) {
	seq := Sequence{"a", "b", "c"}
	MergeSequence(seq, Pair{"a", "b"})
	if !reflect.DeepEqual(seq, Sequence{"a", "b", "c"}) {
		t.Errorf("input sequence was modified: %v", seq)
	}
}

func TestApplyMergesCollidingSequences(t *testing.T) {
	// Distinct sequences that become identical after the merge sum their
	// frequencies.
	vocab := Vocabulary{
		"a b": 2,
		"ab":  3,
	}
	got := Apply(vocab, Pair{"a", "b"})
	want := Vocabulary{"ab": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestApplyConservesFrequency(t *testing.T) {
	vocab := NewVocabulary([]string{"low", "lower", "lo", "low"}, "")
	total := vocab.TotalFrequency()
	out := Apply(vocab, Pair{"l", "o"})
	if got := out.TotalFrequency(); got != total {
		t.Errorf("TotalFrequency after Apply = %d, want %d", got, total)
	}
}
