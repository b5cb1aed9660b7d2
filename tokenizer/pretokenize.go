package tokenizer

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// SpacePattern splits a line on single spaces and keeps the space with the
// fragment it follows:
//
//   - [^ ]* : a fragment (possibly empty) followed by one space; consecutive
//     spaces therefore yield a lone " " word.
//   - [^ ]+ : the last fragment of the line, which carries no trailing space.
const SpacePattern = `[^ ]* |[^ ]+`

// PreTokenizer turns corpus lines into word tokens.
type PreTokenizer struct {
	pattern  string
	compiled *regexp2.Regexp
}

var defaultPreTokenizer = mustPreTokenizer(SpacePattern)

func mustPreTokenizer(pattern string) *PreTokenizer {
	p, err := NewPreTokenizer(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPreTokenizer compiles pattern. An empty pattern selects SpacePattern.
func NewPreTokenizer(pattern string) (*PreTokenizer, error) {
	if pattern == "" {
		pattern = SpacePattern
	}
	compiled, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pre-tokenizer pattern %q", pattern)
	}
	return &PreTokenizer{pattern: pattern, compiled: compiled}, nil
}

// Pattern returns the regex pattern being used.
func (p *PreTokenizer) Pattern() string {
	return p.pattern
}

// Split strips every line and returns its matches in corpus order.
// Blank lines contribute nothing.
func (p *PreTokenizer) Split(lines []string) []string {
	var words []string
	for _, line := range lines {
		words = p.appendLine(words, line)
	}
	return words
}

func (p *PreTokenizer) appendLine(words []string, line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return words
	}
	match, err := p.compiled.FindStringMatch(line)
	for err == nil && match != nil {
		if s := match.String(); s != "" {
			words = append(words, s)
		}
		match, err = p.compiled.FindNextMatch(match)
	}
	return words
}

// PreTokenize splits lines with SpacePattern.
func PreTokenize(lines []string) []string {
	return defaultPreTokenizer.Split(lines)
}
