package tokenizer

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// EncodeMode selects how Encode picks the next merge.
type EncodeMode int

const (
	// ScanOrder merges the first adjacent pair, in left-to-right order, whose
	// concatenation is in the vocabulary. Every non-overlapping occurrence of
	// that pair is merged before scanning restarts.
	ScanOrder EncodeMode = iota
	// RankOrder merges the applicable pair whose symbol has the lowest id,
	// i.e. the one learned earliest.
	RankOrder
)

// ParseEncodeMode converts "scan" or "rank" to an EncodeMode.
func ParseEncodeMode(s string) (EncodeMode, error) {
	switch strings.ToLower(s) {
	case "", "scan":
		return ScanOrder, nil
	case "rank":
		return RankOrder, nil
	default:
		return ScanOrder, errors.Errorf("unknown encode mode %q", s)
	}
}

func (m EncodeMode) String() string {
	if m == RankOrder {
		return "rank"
	}
	return "scan"
}

// DefaultCacheSize is the number of encoded texts kept by default.
const DefaultCacheSize = 1024

// Tokenizer segments text with a finished vocabulary.
type Tokenizer struct {
	vocab  *Vocabulary
	merges []Merge
	unkID  int
	mode   EncodeMode
	cache  *lru.Cache
}

// Option configures a Tokenizer.
type Option func(*tokenizerOptions)

type tokenizerOptions struct {
	mode      EncodeMode
	cacheSize int
	merges    []Merge
}

// WithEncodeMode selects the merge order used by Encode.
func WithEncodeMode(mode EncodeMode) Option {
	return func(o *tokenizerOptions) { o.mode = mode }
}

// WithCacheSize sets the encode cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *tokenizerOptions) { o.cacheSize = n }
}

func withMerges(merges []Merge) Option {
	return func(o *tokenizerOptions) { o.merges = merges }
}

// New builds a tokenizer over v, which must contain UnknownToken.
func New(v *Vocabulary, opts ...Option) (*Tokenizer, error) {
	o := tokenizerOptions{mode: ScanOrder, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	unk, ok := v.UnknownID()
	if !ok {
		return nil, ErrMissingUnknown
	}
	t := &Tokenizer{vocab: v, merges: o.merges, unkID: unk, mode: o.mode}
	if o.cacheSize > 0 {
		cache, err := lru.New(o.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create encode cache")
		}
		t.cache = cache
	}
	return t, nil
}

// TrainConfig holds training parameters.
type TrainConfig struct {
	// VocabSize is the target vocabulary size, not counting UnknownToken.
	VocabSize int
	// Pattern is the pre-tokenizer pattern; SpacePattern when empty.
	Pattern string
	// LogEvery is the number of merges between progress reports.
	LogEvery int
	Logger   *slog.Logger
	// Options configure the returned Tokenizer.
	Options []Option
}

// Train learns a vocabulary from corpus lines.
func Train(ctx context.Context, lines []string, cfg TrainConfig) (*Tokenizer, error) {
	i := 0
	return TrainFromIterator(ctx, func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		i++
		return lines[i-1], true
	}, cfg)
}

// TrainFromIterator reads every line from iter, then trains. The iterator
// should return (value, true) while data remains, and (_, false) when
// exhausted.
func TrainFromIterator(ctx context.Context, iter func() (string, bool), cfg TrainConfig) (*Tokenizer, error) {
	pre, err := NewPreTokenizer(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	var words []string
	for {
		line, ok := iter()
		if !ok {
			break
		}
		words = pre.appendLine(words, line)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := NewModel(words)
	logger.Debug("frequency model built",
		"tokens", len(words), "words", m.Words(), "pairs", m.Pairs(), "alphabet", len(m.alphabet))

	tr := NewTrainer(m, cfg.VocabSize, WithLogger(logger), WithLogEvery(cfg.LogEvery))
	if err := tr.Run(ctx); err != nil {
		return nil, err
	}

	opts := append([]Option{withMerges(tr.Merges())}, cfg.Options...)
	return New(tr.Finish(), opts...)
}

// Vocabulary returns the tokenizer's vocabulary.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Mode returns the encode mode.
func (t *Tokenizer) Mode() EncodeMode {
	return t.mode
}

// Merges returns the merges that built the vocabulary. For a tokenizer that
// was not trained in this process they are derived from the vocabulary.
func (t *Tokenizer) Merges() []Merge {
	if t.merges == nil {
		return deriveMerges(t.vocab)
	}
	out := make([]Merge, len(t.merges))
	copy(out, t.merges)
	return out
}

type encoded struct {
	symbols []string
	ids     []int
}

// Encode segments text and maps every symbol to its id. Symbols absent from
// the vocabulary become UnknownToken, so both slices always have the same
// length.
func (t *Tokenizer) Encode(text string) ([]string, []int) {
	if t.cache != nil {
		if hit, ok := t.cache.Get(text); ok {
			e := hit.(encoded)
			return append([]string(nil), e.symbols...), append([]int(nil), e.ids...)
		}
	}

	var symbols []string
	if t.mode == RankOrder {
		symbols = t.segmentByRank(text)
	} else {
		symbols = t.segmentByScan(text)
	}

	ids := make([]int, len(symbols))
	for i, s := range symbols {
		id, ok := t.vocab.ID(s)
		if !ok {
			symbols[i] = UnknownToken
			id = t.unkID
		}
		ids[i] = id
	}

	if t.cache != nil {
		t.cache.Add(text, encoded{
			symbols: append([]string(nil), symbols...),
			ids:     append([]int(nil), ids...),
		})
	}
	return symbols, ids
}

func (t *Tokenizer) segmentByScan(text string) []string {
	symbols := splitChars(text)
	for len(symbols) >= 2 {
		pair := ""
		for i := 0; i < len(symbols)-1; i++ {
			if p := symbols[i] + symbols[i+1]; t.vocab.Contains(p) {
				pair = p
				break
			}
		}
		if pair == "" {
			break
		}
		symbols, _, _, _ = mergePair(symbols, pair)
	}
	return symbols
}

func (t *Tokenizer) segmentByRank(text string) []string {
	symbols := splitChars(text)
	for len(symbols) >= 2 {
		found := false
		var bestIdx, bestID int
		for i := 0; i < len(symbols)-1; i++ {
			if id, ok := t.vocab.ID(symbols[i] + symbols[i+1]); ok {
				if !found || id < bestID {
					bestIdx = i
					bestID = id
					found = true
				}
			}
		}
		if !found {
			break
		}
		symbols[bestIdx] = symbols[bestIdx] + symbols[bestIdx+1]
		symbols = append(symbols[:bestIdx+1], symbols[bestIdx+2:]...)
	}
	return symbols
}

// Decode concatenates the symbols of ids. Ids outside the vocabulary decode
// to UnknownToken.
func (t *Tokenizer) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		s, ok := t.vocab.Symbol(id)
		if !ok {
			s = UnknownToken
		}
		b.WriteString(s)
	}
	return b.String()
}
