// Package corpus reads training text and locates the vocabulary trained from it.
package corpus

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoPath is returned when no corpus path was given.
var ErrNoPath = errors.New("corpus: need path")

const maxLineSize = 10 * 1024 * 1024

// Load reads the file at path as lines decoded from the named charset.
func Load(path, charset string) ([]string, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "corpus")
	}
	defer f.Close()

	lines, err := ReadLines(f, charset)
	if err != nil {
		return nil, errors.Wrapf(err, "corpus %q", path)
	}
	return lines, nil
}

// ReadLines decodes r from the named charset (a WHATWG name such as "utf-8"
// or "windows-1252"; empty means UTF-8) and splits it into lines without
// their terminators. A byte order mark overrides the charset.
func ReadLines(r io.Reader, charset string) ([]string, error) {
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown charset %q", charset)
	}
	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read error")
	}
	return lines, nil
}

// VocabPath derives the vocabulary file for a corpus: the corpus base name
// without its extension, spaces replaced by underscores, as
// dir/Vocab_of_<name>.json.
func VocabPath(dir, corpusPath string) string {
	name := filepath.Base(corpusPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, " ", "_")
	return filepath.Join(dir, "Vocab_of_"+name+".json")
}

// CheckVocab reports whether the vocabulary for corpusPath already exists,
// along with its path.
func CheckVocab(dir, corpusPath string) (bool, string) {
	path := VocabPath(dir, corpusPath)
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular(), path
}
