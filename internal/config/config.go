package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all bpe configuration.
type Config struct {
	Train   TrainConfig
	Encode  EncodeConfig
	Logging LoggingConfig
}

// TrainConfig holds vocabulary training settings.
type TrainConfig struct {
	VocabSize      int    // 0 means ask on stdin
	VocabDir       string // where derived vocabulary files live
	CorpusEncoding string // WHATWG charset name, e.g. "utf-8", "latin1"
	Pattern        string // pre-tokenizer pattern, empty for single-space split
	LogEvery       int
}

// EncodeConfig holds tokenizer settings.
type EncodeConfig struct {
	Mode      string // "scan" or "rank"
	CacheSize int
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Train: TrainConfig{
			VocabSize:      getenvInt("BPE_VOCAB_SIZE", 0),
			VocabDir:       getenv("BPE_VOCAB_DIR", "Vocabs"),
			CorpusEncoding: getenv("BPE_CORPUS_ENCODING", "utf-8"),
			Pattern:        os.Getenv("BPE_PATTERN"),
			LogEvery:       getenvInt("BPE_LOG_EVERY", 100),
		},
		Encode: EncodeConfig{
			Mode:      getenv("BPE_ENCODE_MODE", "scan"),
			CacheSize: getenvInt("BPE_CACHE_SIZE", 1024),
		},
		Logging: LoggingConfig{
			Level: getenv("BPE_LOG_LEVEL", "info"),
			JSON:  getenvBool("BPE_LOG_JSON", false),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
