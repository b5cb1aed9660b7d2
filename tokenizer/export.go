package tokenizer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// WriteVocabJSON writes the vocabulary as a JSON array whose index is the
// token id.
func WriteVocabJSON(path string, v *Vocabulary) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.symbols); err != nil {
		return errors.Wrap(err, "encode vocabulary")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create vocabulary directory %q", dir)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write vocabulary %q", path)
	}
	return nil
}

// LoadVocabJSON reads a vocabulary written by WriteVocabJSON.
func LoadVocabJSON(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read vocabulary %q", path)
	}
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, errors.Wrapf(err, "parse vocabulary %q", path)
	}
	v, err := NewVocabulary(symbols)
	if err != nil {
		return nil, errors.Wrapf(err, "load vocabulary %q", path)
	}
	if _, ok := v.UnknownID(); !ok {
		return nil, errors.Wrapf(ErrMissingUnknown, "load vocabulary %q", path)
	}
	return v, nil
}

// WriteTokenizerJSON writes a Hugging Face style tokenizer.json for t.
func WriteTokenizerJSON(path string, t *Tokenizer) error {
	vocab := make(map[string]int, t.vocab.Len())
	for id, s := range t.vocab.symbols {
		vocab[s] = id
	}

	mergeList := t.Merges()
	merges := make([]string, 0, len(mergeList))
	for _, m := range mergeList {
		merges = append(merges, m.Left+" "+m.Right)
	}

	preTokenizer := map[string]any{
		"type":     "Split",
		"pattern":  map[string]any{"String": " "},
		"behavior": "MergedWithPrevious",
		"invert":   false,
	}

	model := map[string]any{
		"type":                      "BPE",
		"dropout":                   nil,
		"unk_token":                 UnknownToken,
		"continuing_subword_prefix": "",
		"end_of_word_suffix":        "",
		"vocab":                     vocab,
		"merges":                    merges,
		"fuse_unk":                  false,
		"byte_fallback":             false,
	}

	tokenizerJSON := map[string]any{
		"version":    "1.0",
		"truncation": nil,
		"padding":    nil,
		"added_tokens": []any{
			map[string]any{
				"id":          t.unkID,
				"content":     UnknownToken,
				"single_word": false,
				"lstrip":      false,
				"rstrip":      false,
				"normalized":  false,
				"special":     true,
			},
		},
		"normalizer":     nil,
		"pre_tokenizer":  preTokenizer,
		"post_processor": nil,
		"decoder":        map[string]any{"type": "Fuse"},
		"model":          model,
	}

	encoded, err := json.MarshalIndent(tokenizerJSON, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode tokenizer.json")
	}
	encoded = append(encoded, '\n')
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return errors.Wrapf(err, "write tokenizer.json %q", path)
	}
	return nil
}

// deriveMerges reconstructs a merge for every multi-character symbol by
// splitting it, at the leftmost possible point, into two symbols with lower
// ids.
func deriveMerges(v *Vocabulary) []Merge {
	merges := make([]Merge, 0, v.Len())
	for id, s := range v.symbols {
		if s == UnknownToken || utf8.RuneCountInString(s) < 2 {
			continue
		}
		_, size := utf8.DecodeRuneInString(s)
		for i := size; i < len(s); {
			left, right := s[:i], s[i:]
			lid, lok := v.ids[left]
			rid, rok := v.ids[right]
			if lok && rok && lid < id && rid < id {
				merges = append(merges, Merge{Left: left, Right: right, Symbol: s})
				break
			}
			_, size = utf8.DecodeRuneInString(s[i:])
			i += size
		}
	}
	return merges
}
