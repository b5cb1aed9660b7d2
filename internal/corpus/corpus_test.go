package corpus

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestReadLinesUTF8(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("Il faut cultiver\nnotre jardin.\r\n"), "utf-8")
	require.NoError(t, err)
	require.Equal(t, []string{"Il faut cultiver", "notre jardin."}, lines)
}

func TestReadLinesLatin1(t *testing.T) {
	// "élève" in ISO-8859-1.
	raw := []byte{0xe9, 'l', 0xe8, 'v', 'e', '\n'}

	lines, err := ReadLines(bytes.NewReader(raw), "latin1")
	require.NoError(t, err)
	require.Equal(t, []string{"élève"}, lines)
}

func TestReadLinesBOMOverridesCharset(t *testing.T) {
	raw := append([]byte{0xef, 0xbb, 0xbf}, []byte("café\n")...)

	lines, err := ReadLines(bytes.NewReader(raw), "windows-1252")
	require.NoError(t, err)
	require.Equal(t, []string{"café"}, lines)
}

func TestReadLinesEmpty(t *testing.T) {
	lines, err := ReadLines(strings.NewReader(""), "")
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestReadLinesUnknownCharset(t *testing.T) {
	_, err := ReadLines(strings.NewReader("x"), "klingon")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candide.txt")
	require.NoError(t, os.WriteFile(path, []byte("aaab\nab\n"), 0o644))

	lines, err := Load(path, "utf-8")
	require.NoError(t, err)
	require.Equal(t, []string{"aaab", "ab"}, lines)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), "utf-8")
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)

	_, err = Load("", "utf-8")
	require.True(t, errors.Is(err, ErrNoPath))
}

func TestVocabPath(t *testing.T) {
	tests := []struct {
		dir, corpus, want string
	}{
		{"Vocabs", "books/candide.txt", filepath.Join("Vocabs", "Vocab_of_candide.json")},
		{"v", "/data/Les Misérables.txt", filepath.Join("v", "Vocab_of_Les_Misérables.json")},
		{"v", "corpus", filepath.Join("v", "Vocab_of_corpus.json")},
		{"v", "archive.tar.gz", filepath.Join("v", "Vocab_of_archive.tar.json")},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, VocabPath(tt.dir, tt.corpus), "corpus %q", tt.corpus)
	}
}

func TestCheckVocab(t *testing.T) {
	dir := t.TempDir()

	found, path := CheckVocab(dir, "candide.txt")
	require.False(t, found)
	require.Equal(t, filepath.Join(dir, "Vocab_of_candide.json"), path)

	require.NoError(t, os.WriteFile(path, []byte(`["[UNK]"]`), 0o644))
	found, _ = CheckVocab(dir, "candide.txt")
	require.True(t, found)
}
