package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// requireConservation checks every table entry against a recount from the
// word states.
func requireConservation(t *testing.T, m *Model) {
	t.Helper()
	for pair, c := range m.freq {
		require.Equal(t, m.Count(pair), c, "pair %q", pair)
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel([]string{"ab ", "ab ", "b", ""})

	require.Equal(t, 2, m.Words())
	require.Equal(t, []string{" ", "a", "b"}, m.Alphabet())

	c, ok := m.Frequency("ab")
	require.True(t, ok)
	require.EqualValues(t, 2, c)

	c, ok = m.Frequency("b ")
	require.True(t, ok)
	require.EqualValues(t, 2, c)

	require.Equal(t, 2, m.Pairs())
	requireConservation(t, m)
}

func TestNewModelCountsRepeatedPairs(t *testing.T) {
	m := NewModel([]string{"aaaa", "aaaa"})

	c, _ := m.Frequency("aa")
	require.EqualValues(t, 6, c)
	require.EqualValues(t, 6, m.Count("aa"))
}

func TestNewModelEmpty(t *testing.T) {
	m := NewModel(nil)

	require.Zero(t, m.Words())
	require.Zero(t, m.Pairs())
	require.Empty(t, m.Alphabet())
	_, _, ok := m.Best()
	require.False(t, ok)
}

func TestBestBreaksTiesByKey(t *testing.T) {
	m := NewModel([]string{"ba", "ab", "cd", "cd"})

	pair, c, ok := m.Best()
	require.True(t, ok)
	require.Equal(t, "cd", pair)
	require.EqualValues(t, 2, c)

	m.merge("cd")
	pair, c, ok = m.Best()
	require.False(t, ok, "pairs with frequency 1 are pruned after a merge, got %q=%d", pair, c)

	m = NewModel([]string{"ba", "ab"})
	pair, _, _ = m.Best()
	require.Equal(t, "ab", pair)
}

func TestMergePair(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		pair    string
		want    []string
		left    string
		right   string
	}{
		{"overlap consumed once", []string{"a", "a", "a"}, "aa", []string{"aa", "a"}, "a", "a"},
		{"two sites", []string{"a", "a", "a", "a"}, "aa", []string{"aa", "aa"}, "a", "a"},
		{"split on left", []string{"ab", "c", "d"}, "abc", []string{"abc", "d"}, "ab", "c"},
		{"split on right", []string{"x", "a", "bc"}, "abc", []string{"x", "abc"}, "a", "bc"},
		{"multi-byte", []string{"é", "l", "è"}, "lè", []string{"é", "lè"}, "l", "è"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, left, right, ok := mergePair(tt.symbols, tt.pair)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.left, left)
			require.Equal(t, tt.right, right)
		})
	}

	_, _, _, ok := mergePair([]string{"a", "b"}, "ba")
	require.False(t, ok)
}

func TestSplitChars(t *testing.T) {
	require.Equal(t, []string{"c", "ô", "t", "é", " "}, splitChars("côté "))
	require.Empty(t, splitChars(""))

	invalid := "a\xffb"
	got := splitChars(invalid)
	require.Equal(t, []string{"a", "\xff", "b"}, got)
}

func TestModelMergeUpdatesSegmentation(t *testing.T) {
	m := NewModel(PreTokenize([]string{"aaab", "ab"}))

	m.merge("aa")

	seg, ok := m.Segmentation("aaab")
	require.True(t, ok)
	require.Equal(t, []string{"aa", "a", "b"}, seg)

	seg, ok = m.Segmentation("ab")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, seg)

	_, ok = m.Segmentation("zz")
	require.False(t, ok)

	_, ok = m.Frequency("aa")
	require.False(t, ok, "merged pair must leave the table")
	requireConservation(t, m)
}

func TestMissingEntryIsRecountedWhenTouched(t *testing.T) {
	m := NewModel([]string{"abc", "abc", "dbc", "dbc"})
	c, _ := m.Frequency("bc")
	require.EqualValues(t, 4, c)

	// Drop "bc" as if an earlier prune had removed it.
	delete(m.freq, "bc")

	m.merge("ab")

	c, ok := m.Frequency("bc")
	require.True(t, ok)
	require.EqualValues(t, 2, c)
	requireConservation(t, m)
}
