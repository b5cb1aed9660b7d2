package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreTokenize(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"single word", []string{"aaab"}, []string{"aaab"}},
		{"trailing space marker", []string{"hello big world"}, []string{"hello ", "big ", "world"}},
		{"lines concatenate", []string{"a b\n", "c d\n"}, []string{"a ", "b", "c ", "d"}},
		{"surrounding whitespace stripped", []string{"  padded line \r\n"}, []string{"padded ", "line"}},
		{"double space kept as word", []string{"a  b"}, []string{"a ", " ", "b"}},
		{"blank lines skipped", []string{"", "   ", "x"}, []string{"x"}},
		{"unicode", []string{"élève côté"}, []string{"élève ", "côté"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PreTokenize(tt.lines))
		})
	}
}

func TestPreTokenizeEmptyCorpus(t *testing.T) {
	require.Empty(t, PreTokenize(nil))
}

func TestPreTokenizerCustomPattern(t *testing.T) {
	p, err := NewPreTokenizer(`\w+|[^\w ]`)
	require.NoError(t, err)
	require.Equal(t, `\w+|[^\w ]`, p.Pattern())

	require.Equal(t, []string{"ab", ",", "cd"}, p.Split([]string{"ab, cd"}))
}

func TestPreTokenizerDefaultPattern(t *testing.T) {
	p, err := NewPreTokenizer("")
	require.NoError(t, err)
	require.Equal(t, SpacePattern, p.Pattern())
}

func TestPreTokenizerInvalidPattern(t *testing.T) {
	_, err := NewPreTokenizer("(")
	require.Error(t, err)
}
