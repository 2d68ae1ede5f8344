package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mcq-quiz/quiz"
)

const defaultQuestionFile = "OSE_Master_MCQ_QuestionBank.txt"

// config is read from the environment first; flags override it.
type config struct {
	File        string
	Mode        string
	Addr        string
	Seed        uint64
	Limit       int
	CORSOrigins []string
}

func loadConfig(args []string) (config, error) {
	cfg := config{
		File:  envOrDefault("QUIZ_FILE", defaultQuestionFile),
		Mode:  envOrDefault("QUIZ_MODE", "cli"),
		Addr:  envOrDefault("HTTP_ADDR", ":8080"),
		Seed:  uintOrDefault("QUIZ_SEED", 0),
		Limit: intOrDefault("QUIZ_LIMIT", 0),
	}
	origins := os.Getenv("CORS_ORIGINS")

	fs := flag.NewFlagSet("mcq-quiz", flag.ContinueOnError)
	fs.StringVar(&cfg.File, "file", cfg.File, "question bank (.txt or .xlsx)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "cli or web")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address for web mode")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed, 0 picks a random order")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "ask at most this many questions, 0 for all")
	fs.StringVar(&origins, "cors-origins", origins, "comma separated origins allowed to call the web API")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode != "cli" && cfg.Mode != "web" {
		return cfg, fmt.Errorf("unknown mode %q, want cli or web", cfg.Mode)
	}
	cfg.CORSOrigins = splitCSV(origins)
	return cfg, nil
}

func (c config) sessionOptions() []quiz.Option {
	var opts []quiz.Option
	if c.Seed != 0 {
		opts = append(opts, quiz.WithShuffler(quiz.NewRand(c.Seed)))
	}
	if c.Limit > 0 {
		opts = append(opts, quiz.WithLimit(c.Limit))
	}
	return opts
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func uintOrDefault(key string, fallback uint64) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
