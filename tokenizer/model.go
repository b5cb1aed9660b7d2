package tokenizer

import (
	"container/heap"
	"sort"
	"strings"
	"unicode/utf8"
)

// wordState is the training state of one distinct word.
type wordState struct {
	word    string
	n       int64
	symbols []string
	pairs   []string
}

// mergeJob is a candidate pair in the priority queue. Entries go stale when
// the pair's frequency changes; a fresh entry is pushed on every change.
type mergeJob struct {
	pair  string
	count int64
}

type mergeHeap []mergeJob

// heap.Interface implementation
func (h mergeHeap) Len() int { return len(h) }

// Less orders by count descending, then pair key ascending.
func (h mergeHeap) Less(i, j int) bool {
	if h[i].count == h[j].count {
		return h[i].pair < h[j].pair
	}
	return h[i].count > h[j].count
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(mergeJob))
}

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Model is the frequency model of a corpus: one wordState per distinct word
// plus the aggregated pair frequency table.
//
// For every key in the table, its value equals the sum over words of n times
// the number of times the key occurs in the word's pair list. Keys whose
// value drops to one or less are pruned after each merge and come back with
// an exact recount if a later merge produces them again.
type Model struct {
	words         []wordState
	lookup        map[string]int
	freq          map[string]int64
	whereToUpdate map[string]map[int]struct{}
	queue         mergeHeap
	alphabet      []string
	pruned        bool
}

// NewModel counts the distinct words and builds their pair lists and the
// pair frequency table. Empty words are ignored.
func NewModel(words []string) *Model {
	counts := make(map[string]int64)
	var order []string
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := counts[w]; !ok {
			order = append(order, w)
		}
		counts[w]++
	}

	m := &Model{
		words:         make([]wordState, 0, len(order)),
		lookup:        make(map[string]int, len(order)),
		freq:          make(map[string]int64),
		whereToUpdate: make(map[string]map[int]struct{}),
	}

	chars := make(map[string]struct{})
	for idx, w := range order {
		symbols := splitChars(w)
		for _, s := range symbols {
			chars[s] = struct{}{}
		}
		ws := wordState{word: w, n: counts[w], symbols: symbols, pairs: pairKeys(symbols)}
		for _, p := range ws.pairs {
			m.freq[p] += ws.n
			m.index(p, idx)
		}
		m.lookup[w] = idx
		m.words = append(m.words, ws)
	}

	m.alphabet = make([]string, 0, len(chars))
	for c := range chars {
		m.alphabet = append(m.alphabet, c)
	}
	sort.Strings(m.alphabet)

	m.queue = make(mergeHeap, 0, len(m.freq))
	for p, c := range m.freq {
		m.queue = append(m.queue, mergeJob{pair: p, count: c})
	}
	heap.Init(&m.queue)
	return m
}

// Alphabet returns the sorted distinct characters of the corpus.
func (m *Model) Alphabet() []string {
	out := make([]string, len(m.alphabet))
	copy(out, m.alphabet)
	return out
}

// Words returns the number of distinct words.
func (m *Model) Words() int {
	return len(m.words)
}

// Pairs returns the number of keys in the pair frequency table.
func (m *Model) Pairs() int {
	return len(m.freq)
}

// Frequency returns the table value for pair.
func (m *Model) Frequency(pair string) (int64, bool) {
	c, ok := m.freq[pair]
	return c, ok
}

// Count recomputes the frequency of pair from the word states, ignoring the
// table.
func (m *Model) Count(pair string) int64 {
	var total int64
	for idx := range m.whereToUpdate[pair] {
		w := &m.words[idx]
		for _, p := range w.pairs {
			if p == pair {
				total += w.n
			}
		}
	}
	return total
}

// Segmentation returns the current symbols of word.
func (m *Model) Segmentation(word string) ([]string, bool) {
	idx, ok := m.lookup[word]
	if !ok {
		return nil, false
	}
	out := make([]string, len(m.words[idx].symbols))
	copy(out, m.words[idx].symbols)
	return out, true
}

// Best returns the pair with the highest frequency, breaking ties by the
// lexicographically smallest key.
func (m *Model) Best() (string, int64, bool) {
	for m.queue.Len() > 0 {
		top := m.queue[0]
		if cur, ok := m.freq[top.pair]; ok && cur == top.count {
			return top.pair, cur, true
		}
		heap.Pop(&m.queue)
	}
	return "", 0, false
}

// merge replaces every occurrence of pair in the words that hold it, updates
// the table and removes pair from it. It returns the first split seen, in
// corpus order.
func (m *Model) merge(pair string) (left, right string) {
	positions := m.whereToUpdate[pair]
	ids := make([]int, 0, len(positions))
	for idx := range positions {
		ids = append(ids, idx)
	}
	sort.Ints(ids)

	deltas := make(map[string]int64)
	for _, idx := range ids {
		w := &m.words[idx]
		symbols, l, r, ok := mergePair(w.symbols, pair)
		if !ok {
			continue
		}
		if left == "" {
			left, right = l, r
		}
		old := w.pairs
		w.symbols = symbols
		w.pairs = pairKeys(symbols)
		for _, p := range old {
			deltas[p] -= w.n
		}
		for _, p := range w.pairs {
			deltas[p] += w.n
		}
		m.reindex(idx, old, w.pairs)
	}

	touched := make([]string, 0, len(deltas))
	for p, d := range deltas {
		if d == 0 || p == pair {
			continue
		}
		if cur, ok := m.freq[p]; ok {
			cur += d
			if cur < 0 {
				cur = 0
			}
			m.freq[p] = cur
		} else if c := m.Count(p); c > 0 {
			m.freq[p] = c
		}
		touched = append(touched, p)
	}
	delete(m.freq, pair)

	m.prune(touched)
	for _, p := range touched {
		if c, ok := m.freq[p]; ok {
			heap.Push(&m.queue, mergeJob{pair: p, count: c})
		}
	}
	return left, right
}

// prune drops table entries with a value of one or less. The first call
// scans the whole table; later calls only need the keys a merge touched.
func (m *Model) prune(touched []string) {
	if !m.pruned {
		for p, c := range m.freq {
			if c <= 1 {
				delete(m.freq, p)
			}
		}
		m.pruned = true
		return
	}
	for _, p := range touched {
		if c, ok := m.freq[p]; ok && c <= 1 {
			delete(m.freq, p)
		}
	}
}

func (m *Model) index(pair string, idx int) {
	pos, ok := m.whereToUpdate[pair]
	if !ok {
		pos = make(map[int]struct{})
		m.whereToUpdate[pair] = pos
	}
	pos[idx] = struct{}{}
}

func (m *Model) reindex(idx int, old, updated []string) {
	keep := make(map[string]struct{}, len(updated))
	for _, p := range updated {
		keep[p] = struct{}{}
		m.index(p, idx)
	}
	for _, p := range old {
		if _, ok := keep[p]; ok {
			continue
		}
		if pos, ok := m.whereToUpdate[p]; ok {
			delete(pos, idx)
			if len(pos) == 0 {
				delete(m.whereToUpdate, p)
			}
		}
	}
}

// splitChars splits s into one symbol per character. Invalid UTF-8 bytes
// become single-byte symbols so the symbols always concatenate back to s.
func splitChars(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		out = append(out, s[i:i+size])
		i += size
	}
	return out
}

// pairKeys yields the concatenation of every adjacent symbol pair.
func pairKeys(symbols []string) []string {
	if len(symbols) < 2 {
		return nil
	}
	out := make([]string, 0, len(symbols)-1)
	for i := 0; i < len(symbols)-1; i++ {
		out = append(out, symbols[i]+symbols[i+1])
	}
	return out
}

// mergePair merges all non-overlapping adjacent symbol pairs whose
// concatenation equals pair, scanning left to right. It returns the first
// merged split and whether anything was merged.
func mergePair(symbols []string, pair string) (out []string, left, right string, merged bool) {
	n := len(symbols)
	out = make([]string, 0, n)
	for i := 0; i < n; {
		if i+1 < n && joins(symbols[i], symbols[i+1], pair) {
			if !merged {
				left, right, merged = symbols[i], symbols[i+1], true
			}
			out = append(out, pair)
			i += 2
		} else {
			out = append(out, symbols[i])
			i++
		}
	}
	return out, left, right, merged
}

func joins(a, b, pair string) bool {
	return len(a)+len(b) == len(pair) && strings.HasPrefix(pair, a) && pair[len(a):] == b
}
