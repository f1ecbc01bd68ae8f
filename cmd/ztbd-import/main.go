package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/dataset"
	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
	"github.com/KonSprin/ztbd/internal/store"
)

func main() {
	gamesPath := flag.String("games", "data/games.csv", "path to the games CSV")
	reviewsPath := flag.String("reviews", "data/reviews.csv", "path to the reviews CSV")
	configPath := flag.String("config", "", "optional YAML run profile")
	databases := flag.String("databases", "", "comma-separated backends (default: all)")
	reviewLimit := flag.Int("review-limit", 0, "cap on review rows (0 = profile default)")
	monthsBack := flag.Int("months-back", 0, "price history look-back in months (0 = profile default)")
	batchSize := flag.Int("batch-size", 0, "insert batch size (0 = profile default)")
	drop := flag.Bool("drop", false, "drop projected tables before importing")
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
	cfg := cfgFile.Import
	if *databases != "" {
		cfg.Databases = splitDatabases(*databases)
	}
	if *reviewLimit > 0 {
		cfg.ReviewLimit = *reviewLimit
	}
	if *monthsBack > 0 {
		cfg.MonthsBack = *monthsBack
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if *drop {
		cfg.Drop = true
	}
	for _, name := range cfg.Databases {
		if !config.ValidBackend(name) {
			log.Fatal("unknown backend", "backend", name)
		}
	}

	games, err := dataset.LoadGames(*gamesPath, log)
	if err != nil {
		log.Fatal("games load failed", "error", err)
	}
	reviews, err := dataset.LoadReviews(*reviewsPath, cfg.ReviewLimit, log)
	if err != nil {
		log.Fatal("reviews load failed", "error", err)
	}

	m := model.Build(games, reviews, cfg.MonthsBack, time.Now().UTC(), log)
	tables := m.Tables(games, reviews)

	ctx := context.Background()
	dsn := config.DSNFromEnv()

	var projectors []store.Projector
	failures := 0
	for _, backend := range cfg.Databases {
		p, err := store.Open(backend, dsn, log)
		if err != nil {
			failures++
			log.Error("backend init failed", "backend", backend, "error", err)
			continue
		}
		projectors = append(projectors, p)
	}
	if len(projectors) == 0 {
		log.Fatal("no backends initialized")
	}
	defer func() {
		for _, p := range projectors {
			if err := p.Close(ctx); err != nil {
				log.Warn("close failed", "backend", p.Name(), "error", err)
			}
		}
	}()

	// One backend's failure never blocks the others; fatal only when
	// nothing imported.
	succeeded := store.ProjectAll(ctx, projectors, tables, cfg.BatchSize, cfg.Drop, log)
	if len(succeeded) == 0 {
		log.Fatal("all backend imports failed")
	}
	failures += len(projectors) - len(succeeded)

	if err := store.Verify(ctx, succeeded, tables, log); err != nil {
		log.Fatal("verification failed", "error", err)
	}
	log.Info("import verified", "backends", len(succeeded), "tables", len(tables))
	if failures > 0 {
		log.Warn("some backends were skipped", "failed", failures)
	}
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
