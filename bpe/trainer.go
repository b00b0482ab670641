package bpe

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// State is the trainer's lifecycle state.
type State int

const (
	// StateRunning means training has not finished.
	StateRunning State = iota
	// StateExhausted means training stopped early because no adjacent pair
	// remained. This is normal termination, not a failure: the merge table
	// holds fewer entries than the configured round count.
	StateExhausted
	// StateComplete means the configured number of rounds was performed.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Merge records the pair chosen at one training round together with its
// frequency at selection time. The round index is the merge's rank.
type Merge struct {
	Pair Pair
	Freq int
}

// MergeTable is the ordered sequence of merges produced by training.
// Append-only while training runs, immutable afterwards. Earlier entries
// have higher priority during encoding.
type MergeTable []Merge

// Observer is invoked once per completed round with the chosen pair and its
// frequency. It replaces ad-hoc print tracing; nil disables it.
type Observer func(round int, pair Pair, freq int)

// Config holds the trainer parameters.
type Config struct {
	// Merges is the round budget N. Must be >= 0.
	Merges int
	// Marker is the optional end-of-word marker appended to every word's
	// sequence at vocabulary construction. Empty disables it.
	Marker string
	// Observer receives per-round diagnostics. Optional.
	Observer Observer
}

// Result is the outcome of a training run. Merges and Vocab are owned by the
// caller once returned and are no longer mutated.
type Result struct {
	// Merges is the ordered merge table; len(Merges) < rounds iff State is
	// StateExhausted.
	Merges MergeTable
	// Vocab is the final vocabulary after all merges were applied.
	Vocab Vocabulary
	// State is StateComplete or StateExhausted.
	State State
	// Marker is the end-of-word marker the run was configured with.
	Marker string
	// RunID identifies this training run in logs and exports. It is
	// metadata only: two runs over identical input differ solely in RunID.
	RunID uuid.UUID
}

// Exhausted reports whether training stopped before the round budget because
// every sequence collapsed to a single symbol.
func (r *Result) Exhausted() bool {
	return r.State == StateExhausted
}

// Trainer drives the count → select → apply loop over a vocabulary it owns
// exclusively for the duration of the run. Rounds are strictly sequential:
// each one depends on the vocabulary state the previous round produced.
type Trainer struct {
	vocab  Vocabulary
	cfg    Config
	state  State
	merges MergeTable
	runID  uuid.UUID
}

// NewTrainer takes ownership of vocab and prepares a run. The vocabulary
// must not be mutated externally until Train returns.
func NewTrainer(vocab Vocabulary, cfg Config) (*Trainer, error) {
	if cfg.Merges < 0 {
		return nil, errors.Errorf("bpe: merge budget must be >= 0, got %d", cfg.Merges)
	}
	return &Trainer{
		vocab: vocab,
		cfg:   cfg,
		state: StateRunning,
		runID: uuid.New(),
	}, nil
}

// Train runs the merge loop until the round budget is spent or no pair
// remains, and returns the result. Given identical input vocabulary and
// configuration, the merge table and final vocabulary are byte-identical
// across runs: selection uses the explicit tie-break in Best, never map
// iteration order.
func (t *Trainer) Train() *Result {
	klog.V(1).Infof("bpe: run %s training %d merges over %d sequences", t.runID, t.cfg.Merges, len(t.vocab))
	for round := 0; round < t.cfg.Merges; round++ {
		counts := Count(t.vocab)
		pair, freq, ok := counts.Best()
		if !ok {
			t.state = StateExhausted
			klog.V(1).Infof("bpe: run %s exhausted after %d merges", t.runID, round)
			break
		}
		t.merges = append(t.merges, Merge{Pair: pair, Freq: freq})
		t.vocab = Apply(t.vocab, pair)
		klog.V(2).Infof("bpe: run %s round %d merged %q + %q freq=%d", t.runID, round, pair.Left, pair.Right, freq)
		if t.cfg.Observer != nil {
			t.cfg.Observer(round, pair, freq)
		}
	}
	if t.state == StateRunning {
		t.state = StateComplete
	}
	return &Result{
		Merges: t.merges,
		Vocab:  t.vocab,
		State:  t.state,
		Marker: t.cfg.Marker,
		RunID:  t.runID,
	}
}

// Train builds the initial vocabulary from words and runs a full training
// with the given configuration.
func Train(words []string, cfg Config) (*Result, error) {
	trainer, err := NewTrainer(NewVocabulary(words, cfg.Marker), cfg)
	if err != nil {
		return nil, err
	}
	return trainer.Train(), nil
}
