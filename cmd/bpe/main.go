package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/nanoschnack/bpe/internal/config"
	"github.com/nanoschnack/bpe/internal/corpus"
	"github.com/nanoschnack/bpe/internal/logging"
	"github.com/nanoschnack/bpe/tokenizer"
)

const usage = `usage: bpe <command> [flags]

commands:
  train   learn a vocabulary from a corpus
  encode  segment text with a trained vocabulary
  decode  turn token ids back into text
`

func main() {
	cfg := config.Load()
	logging.Init(cfg.Logging.JSON, logging.ParseLevel(cfg.Logging.Level))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, cfg, os.Args[2:], os.Stdin, os.Stdout)
	case "encode":
		err = runEncode(cfg, os.Args[2:], os.Stdin, os.Stdout)
	case "decode":
		err = runDecode(cfg, os.Args[2:], os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		slog.Error("bpe "+os.Args[1]+" failed", "error", err)
		os.Exit(1)
	}
}

func runTrain(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("train", flag.ContinueOnError)
	corpusPath := flags.String("corpus", "", "corpus text file (asked on stdin when empty)")
	size := flags.Int("size", cfg.Train.VocabSize, "target vocabulary size (asked on stdin when 0)")
	dir := flags.String("dir", cfg.Train.VocabDir, "vocabulary directory")
	charset := flags.String("encoding", cfg.Train.CorpusEncoding, "corpus charset")
	pattern := flags.String("pattern", cfg.Train.Pattern, "pre-tokenizer regex (single-space split when empty)")
	logEvery := flags.Int("log-every", cfg.Train.LogEvery, "merges between progress reports")
	force := flags.Bool("force", false, "retrain even if the vocabulary exists")
	jsonPath := flags.String("tokenizer-json", "", "also write a Hugging Face tokenizer.json")
	if err := flags.Parse(args); err != nil {
		return err
	}

	in := bufio.NewScanner(stdin)
	if *corpusPath == "" {
		*corpusPath = prompt(in, stdout, "PATH: ")
	}
	if *corpusPath == "" {
		return corpus.ErrNoPath
	}

	found, vocabPath := corpus.CheckVocab(*dir, *corpusPath)
	if found && !*force {
		slog.Info("vocabulary already exists for this corpus, use encode", "path", vocabPath)
		return nil
	}

	if *size <= 0 {
		answer := prompt(in, stdout, "Vocab size: ")
		n, err := strconv.Atoi(answer)
		if err != nil {
			return errors.Wrapf(err, "vocab size %q", answer)
		}
		*size = n
	}

	lines, err := corpus.Load(*corpusPath, *charset)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		slog.Warn("corpus not found, training on an empty corpus", "path", *corpusPath)
	}

	tok, err := tokenizer.Train(ctx, lines, tokenizer.TrainConfig{
		VocabSize: *size,
		Pattern:   *pattern,
		LogEvery:  *logEvery,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	if err := tokenizer.WriteVocabJSON(vocabPath, tok.Vocabulary()); err != nil {
		return err
	}
	slog.Info("vocab saved", "path", vocabPath, "size", tok.Vocabulary().Len())

	if *jsonPath != "" {
		if err := tokenizer.WriteTokenizerJSON(*jsonPath, tok); err != nil {
			return err
		}
		slog.Info("tokenizer.json saved", "path", *jsonPath)
	}
	return nil
}

func runEncode(cfg config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("encode", flag.ContinueOnError)
	vocabPath := flags.String("vocab", "", "vocabulary JSON file")
	mode := flags.String("mode", cfg.Encode.Mode, "merge order: scan or rank")
	cacheSize := flags.Int("cache", cfg.Encode.CacheSize, "encode cache entries, 0 disables")
	inText := flags.String("in", "", "text to encode once; reads stdin lines until q otherwise")
	if err := flags.Parse(args); err != nil {
		return err
	}

	tok, err := loadTokenizer(*vocabPath, *mode, *cacheSize)
	if err != nil {
		return err
	}

	if *inText != "" {
		printEncoding(stdout, tok, *inText)
		return nil
	}

	in := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "-> ")
		if !in.Scan() {
			break
		}
		line := in.Text()
		if line == "q" {
			break
		}
		printEncoding(stdout, tok, line)
	}
	return in.Err()
}

func runDecode(cfg config.Config, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("decode", flag.ContinueOnError)
	vocabPath := flags.String("vocab", "", "vocabulary JSON file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	tok, err := loadTokenizer(*vocabPath, cfg.Encode.Mode, 0)
	if err != nil {
		return err
	}

	ids := make([]int, 0, flags.NArg())
	for _, arg := range flags.Args() {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return errors.Wrapf(err, "token id %q", arg)
		}
		ids = append(ids, id)
	}
	fmt.Fprintln(stdout, tok.Decode(ids))
	return nil
}

func loadTokenizer(path, mode string, cacheSize int) (*tokenizer.Tokenizer, error) {
	if path == "" {
		return nil, errors.New("missing -vocab")
	}
	m, err := tokenizer.ParseEncodeMode(mode)
	if err != nil {
		return nil, err
	}
	v, err := tokenizer.LoadVocabJSON(path)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded vocab", "path", path, "size", v.Len())
	return tokenizer.New(v, tokenizer.WithEncodeMode(m), tokenizer.WithCacheSize(cacheSize))
}

func printEncoding(w io.Writer, tok *tokenizer.Tokenizer, text string) {
	symbols, ids := tok.Encode(text)

	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = strconv.Quote(s)
	}
	fmt.Fprintf(w, "deconstructed: [%s]\n", strings.Join(quoted, ", "))
	fmt.Fprintf(w, "Tokens: %v\n", ids)
	fmt.Fprintf(w, "Decoded: %s\n", tok.Decode(ids))
	fmt.Fprintln(w, "-----------------------------")
}

func prompt(in *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
