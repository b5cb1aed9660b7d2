package tokenizer

import (
	"context"
	"log/slog"
)

// Merge records one completed training step.
type Merge struct {
	Left      string
	Right     string
	Symbol    string
	Frequency int64
}

// Step performs one merge: it selects the best pair of m, merges it across
// the words holding it and appends the new symbol to v. It reports false when
// m has no pairs left.
func Step(m *Model, v *Vocabulary) (Merge, bool) {
	pair, count, ok := m.Best()
	if !ok {
		return Merge{}, false
	}
	left, right := m.merge(pair)
	v.add(pair)
	return Merge{Left: left, Right: right, Symbol: pair, Frequency: count}, true
}

// State is the state of a Trainer.
type State int

const (
	// Running means more merges can be made.
	Running State = iota
	// Done means the target vocabulary size was reached.
	Done
	// Exhausted means the pair table emptied before reaching the target.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Done:
		return "done"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Trainer drives Step until the vocabulary reaches the target size or the
// model runs out of pairs.
type Trainer struct {
	model    *Model
	vocab    *Vocabulary
	target   int
	state    State
	merges   []Merge
	logger   *slog.Logger
	logEvery int
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithLogger sets the logger used for progress reports.
func WithLogger(l *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithLogEvery sets the number of steps between progress reports.
// Zero or less disables them.
func WithLogEvery(n int) TrainerOption {
	return func(t *Trainer) { t.logEvery = n }
}

// NewTrainer starts a trainer whose vocabulary is the model's alphabet.
func NewTrainer(m *Model, vocabSize int, opts ...TrainerOption) *Trainer {
	alphabet := m.Alphabet()
	v := newVocabulary(max(vocabSize, len(alphabet)) + 1)
	for _, c := range alphabet {
		v.add(c)
	}
	t := &Trainer{
		model:    m,
		vocab:    v,
		target:   vocabSize,
		logger:   slog.Default(),
		logEvery: 100,
	}
	for _, opt := range opts {
		opt(t)
	}
	if v.Len() >= vocabSize {
		t.state = Done
	}
	return t
}

// Step advances the trainer by one transition and returns the merge made,
// if any.
func (t *Trainer) Step() (Merge, bool) {
	if t.state != Running {
		return Merge{}, false
	}
	mg, ok := Step(t.model, t.vocab)
	if !ok {
		t.state = Exhausted
		return Merge{}, false
	}
	t.merges = append(t.merges, mg)
	if t.vocab.Len() >= t.target {
		t.state = Done
	}
	return mg, true
}

// Run steps until the trainer leaves the Running state or ctx is done.
func (t *Trainer) Run(ctx context.Context) error {
	for t.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		mg, ok := t.Step()
		if ok && t.logEvery > 0 && len(t.merges)%t.logEvery == 0 {
			t.logger.Info("merge progress",
				"step", len(t.merges),
				"merged", mg.Symbol,
				"frequency", mg.Frequency,
				"vocab_size", t.vocab.Len(),
				"percent", t.vocab.Len()*100/t.target,
			)
		}
	}
	if t.state == Exhausted {
		t.logger.Warn("no more pairs to merge, cannot reach target vocab size",
			"target", t.target, "vocab_size", t.vocab.Len())
	}
	t.logger.Info("training finished",
		"state", t.state.String(), "steps", len(t.merges), "vocab_size", t.vocab.Len())
	return nil
}

// State returns the current state.
func (t *Trainer) State() State { return t.state }

// Steps returns the number of completed merges.
func (t *Trainer) Steps() int { return len(t.merges) }

// Merges returns the merges made so far, in order.
func (t *Trainer) Merges() []Merge {
	out := make([]Merge, len(t.merges))
	copy(out, t.merges)
	return out
}

// Finish appends UnknownToken and returns the vocabulary. Calling it more
// than once is harmless.
func (t *Trainer) Finish() *Vocabulary {
	t.vocab.add(UnknownToken)
	return t.vocab
}
