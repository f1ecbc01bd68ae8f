package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/KonSprin/ztbd/internal/bench"
	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/platform/logger"
	"github.com/KonSprin/ztbd/internal/store"
)

func main() {
	configPath := flag.String("config", "", "optional YAML run profile")
	databases := flag.String("databases", "", "comma-separated backends (default: all)")
	limit := flag.Int("limit", 0, "row cap per query (0 = profile default)")
	repeats := flag.Int("repeats", 0, "runs per (case, backend) pair (0 = profile default)")
	timeout := flag.Duration("timeout", 0, "per-query deadline (0 = profile default)")
	outputDir := flag.String("output", "", "report directory (default: profile value)")
	noComparison := flag.Bool("no-comparison", false, "skip cross-backend result comparison")
	flag.Parse()

	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfgFile, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("config load failed", "error", err)
	}
	cfg := cfgFile.Run
	if *databases != "" {
		cfg.Databases = splitDatabases(*databases)
	}
	if *limit > 0 {
		cfg.Limit = *limit
	}
	if *repeats > 0 {
		cfg.Repeats = *repeats
	}
	if *timeout > 0 {
		cfg.QueryTimeout = *timeout
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *noComparison {
		cfg.SkipComparison = true
	}
	for _, name := range cfg.Databases {
		if !config.ValidBackend(name) {
			log.Fatal("unknown backend", "backend", name)
		}
	}

	ctx := context.Background()
	dsn := config.DSNFromEnv()

	var backends []bench.Backend
	for _, name := range cfg.Databases {
		p, err := store.Open(name, dsn, log)
		if err != nil {
			log.Error("backend init failed", "backend", name, "error", err)
			continue
		}
		b, err := bench.OpenBackend(p)
		if err != nil {
			_ = p.Close(ctx)
			log.Error("backend wrap failed", "backend", name, "error", err)
			continue
		}
		backends = append(backends, b)
	}
	defer func() {
		for _, b := range backends {
			if err := b.Close(ctx); err != nil {
				log.Warn("close failed", "backend", b.Name(), "error", err)
			}
		}
	}()

	runner, err := bench.NewRunner(backends, bench.Catalog(), cfg, log)
	if err != nil {
		log.Fatal("runner init failed", "error", err)
	}

	started := time.Now()
	results, err := runner.Run(ctx)
	if err != nil {
		log.Fatal("benchmark run failed", "error", err)
	}

	paths, err := bench.WriteReports(results, cfg.OutputDir, log)
	if err != nil {
		log.Fatal("report generation failed", "error", err)
	}
	log.Info("benchmark complete",
		"run_id", results.RunID,
		"reports", len(paths),
		"duration", time.Since(started).String())
}

func splitDatabases(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
