// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Command importer loads a CSV export of reviews into the database.
//
//	importer -file reviews.csv [-analyze] [-batch 500] [-dry-run]
//
// Database and predictor settings come from the same configuration as the
// server (config.yaml, .env, environment). Rows are inserted without
// sentiment; -analyze runs batch analysis afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/database"
	"github.com/tomtom215/branchpulse/internal/importer"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/sentiment"
)

type options struct {
	file    string
	analyze bool
	batch   int
	dryRun  bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", "", "CSV file to import (required)")
	fs.BoolVar(&opts.analyze, "analyze", false, "run batch sentiment analysis after the import")
	fs.IntVar(&opts.batch, "batch", 500, "rows per insert transaction")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.file == "" {
		return opts, errors.New("-file is required")
	}
	if opts.batch < 1 {
		return opts, fmt.Errorf("-batch must be positive, got %d", opts.batch)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "importer:", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		logging.Error().Err(err).Msg("Import failed")
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.file, err)
	}
	defer f.Close()

	res, err := importer.Read(f, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}
	for _, skipped := range res.Skipped {
		logging.Warn().Int("line", skipped.Line).Err(skipped.Err).Msg("Skipping row")
	}
	logging.Info().
		Str("file", opts.file).
		Int("rows", len(res.Reviews)).
		Int("skipped", len(res.Skipped)).
		Msg("CSV parsed")

	if opts.dryRun {
		return nil
	}

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	inserted, err := insertChunks(ctx, db, res.Reviews, opts.batch)
	logging.Info().Int("inserted", inserted).Msg("Reviews imported")
	if err != nil {
		return err
	}

	if !opts.analyze {
		return nil
	}

	svc := reviews.NewService(db, sentiment.NewClient(&cfg.Predictor))
	out, err := svc.BatchAnalyze(ctx)
	if err != nil {
		return fmt.Errorf("batch analyze: %w", err)
	}
	logging.Info().Int("total", out.Total).Int("updated", out.Updated).Msg(out.Message)
	return nil
}

type reviewInserter interface {
	InsertReviews(ctx context.Context, reviews []models.Review) (int, error)
}

// insertChunks writes rows in transactions of size. Chunks committed
// before a failure stay in the database.
func insertChunks(ctx context.Context, db reviewInserter, rows []models.Review, size int) (int, error) {
	total := 0
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		n, err := db.InsertReviews(ctx, rows[start:end])
		if err != nil {
			return total, fmt.Errorf("insert rows %d-%d: %w", start+1, end, err)
		}
		total += n
		logging.Debug().Int("inserted", total).Int("of", len(rows)).Msg("Import progress")
	}
	return total, nil
}
