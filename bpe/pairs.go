package bpe

// Pair is an ordered pair of adjacent symbols.
type Pair struct {
	Left, Right Symbol
}

// Merged returns the symbol a merge of this pair produces.
func (p Pair) Merged() Symbol {
	return p.Left + p.Right
}

// String renders the pair the same way a two-symbol sequence renders.
func (p Pair) String() string {
	return p.Left + " " + p.Right
}

// less orders pairs lexicographically, left element first. This is the
// deterministic tie-break order for selection.
func (p Pair) less(o Pair) bool {
	if p.Left != o.Left {
		return p.Left < o.Left
	}
	return p.Right < o.Right
}

// PairCounts maps each adjacent symbol pair to its total frequency across a
// vocabulary, weighted by sequence frequency.
type PairCounts map[Pair]int

// Count tallies every adjacent symbol pair in the vocabulary. Each
// occurrence contributes the owning sequence's frequency. Sequences with
// fewer than two symbols contribute nothing. One pass, O(total symbols).
func Count(v Vocabulary) PairCounts {
	counts := make(PairCounts)
	for rendering, freq := range v {
		seq := ParseSequence(rendering)
		for i := 0; i+1 < len(seq); i++ {
			counts[Pair{seq[i], seq[i+1]}] += freq
		}
	}
	return counts
}

// Best returns the pair with the strictly highest frequency. Pairs tied for
// the maximum are resolved to the lexicographically smallest pair (left
// element first, then right), so the result never depends on map iteration
// order. The third result is false when the table is empty, which is the
// training termination signal, not an error.
func (c PairCounts) Best() (Pair, int, bool) {
	var best Pair
	bestFreq := 0
	found := false
	for pair, freq := range c {
		if !found || freq > bestFreq || (freq == bestFreq && pair.less(best)) {
			best, bestFreq, found = pair, freq, true
		}
	}
	return best, bestFreq, found
}

// MergeSequence rewrites one sequence, replacing every non-overlapping
// occurrence of the pair, scanning left to right, with the merged symbol.
// A consumed pair is skipped past: merging ("a","a") in [a a a] yields
// [aa a], and a freshly produced symbol is never rematched against its
// neighbor within the same pass. The input sequence is not modified.
func MergeSequence(seq Sequence, p Pair) Sequence {
	out := make(Sequence, 0, len(seq))
	for i := 0; i < len(seq); {
		if i+1 < len(seq) && seq[i] == p.Left && seq[i+1] == p.Right {
			out = append(out, p.Merged())
			i += 2
		} else {
			out = append(out, seq[i])
			i++
		}
	}
	return out
}

// Apply rewrites every sequence in the vocabulary with the pair merged,
// returning a new vocabulary. Frequencies carry over unchanged; if two
// previously distinct sequences become identical their frequencies are
// summed, so total frequency mass is conserved.
func Apply(v Vocabulary, p Pair) Vocabulary {
	out := make(Vocabulary, len(v))
	for rendering, freq := range v {
		merged := MergeSequence(ParseSequence(rendering), p)
		out[merged.Render()] += freq
	}
	return out
}
