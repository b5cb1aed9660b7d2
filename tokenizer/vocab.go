package tokenizer

import (
	"github.com/pkg/errors"
)

// UnknownToken is the reserved marker for symbols absent from the vocabulary.
const UnknownToken = "[UNK]"

var (
	// ErrMissingUnknown is returned when a vocabulary lacks UnknownToken.
	ErrMissingUnknown = errors.New("vocabulary has no " + UnknownToken + " entry")
	// ErrDuplicateSymbol is returned when a symbol list repeats an entry.
	ErrDuplicateSymbol = errors.New("duplicate vocabulary symbol")
)

// Vocabulary is an append-only ordered list of unique symbols.
// A symbol's id is its position.
type Vocabulary struct {
	symbols []string
	ids     map[string]int
}

func newVocabulary(capacity int) *Vocabulary {
	return &Vocabulary{
		symbols: make([]string, 0, capacity),
		ids:     make(map[string]int, capacity),
	}
}

// NewVocabulary builds a vocabulary from an ordered symbol list, such as one
// read back from disk. Empty or repeated symbols are rejected.
func NewVocabulary(symbols []string) (*Vocabulary, error) {
	v := newVocabulary(len(symbols))
	for i, s := range symbols {
		if s == "" {
			return nil, errors.Errorf("vocabulary: empty symbol at id %d", i)
		}
		if !v.add(s) {
			return nil, errors.Wrapf(ErrDuplicateSymbol, "vocabulary: %q at id %d", s, i)
		}
	}
	return v, nil
}

// add appends s and reports whether it was new.
func (v *Vocabulary) add(s string) bool {
	if _, ok := v.ids[s]; ok {
		return false
	}
	v.ids[s] = len(v.symbols)
	v.symbols = append(v.symbols, s)
	return true
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Symbol returns the symbol with the given id.
func (v *Vocabulary) Symbol(id int) (string, bool) {
	if id < 0 || id >= len(v.symbols) {
		return "", false
	}
	return v.symbols[id], true
}

// ID returns the id of symbol s.
func (v *Vocabulary) ID(s string) (int, bool) {
	id, ok := v.ids[s]
	return id, ok
}

// Contains reports whether s is in the vocabulary.
func (v *Vocabulary) Contains(s string) bool {
	_, ok := v.ids[s]
	return ok
}

// UnknownID returns the id of UnknownToken.
func (v *Vocabulary) UnknownID() (int, bool) {
	return v.ID(UnknownToken)
}

// Symbols returns a copy of the ordered symbol list.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, len(v.symbols))
	copy(out, v.symbols)
	return out
}
