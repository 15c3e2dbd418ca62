// Package main is the entry point for the receipt vault CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gitlab.com/yelinaung/receipt-vault/internal/blob"
	"gitlab.com/yelinaung/receipt-vault/internal/config"
	"gitlab.com/yelinaung/receipt-vault/internal/database"
	"gitlab.com/yelinaung/receipt-vault/internal/export"
	"gitlab.com/yelinaung/receipt-vault/internal/ledger"
	"gitlab.com/yelinaung/receipt-vault/internal/logger"
	"gitlab.com/yelinaung/receipt-vault/internal/repository"
	"gitlab.com/yelinaung/receipt-vault/internal/scan"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `usage: receipt-vault <command>

commands:
  migrate                 create or update the database schema
  export-csv <file>       write all receipts as CSV
  export-images <file>    write all receipt images as a zip archive
  chart <project-id> <file>
                          write a category breakdown PNG for a project
  scan <image-id>         extract a receipt suggestion from a stored image
  version                 print version information
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if os.Args[1] == "version" {
		fmt.Printf("receipt-vault %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store := repository.New(pool)
	blobs := blob.NewStore(cfg.DataDir)
	coordinator := ledger.NewCoordinator(store, blobs)
	projector := export.NewProjector(store, blobs)

	if cfg.ScannerEnabled() {
		scanner, err := scan.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create scanner")
		}
		coordinator.SetScanner(scanner)
	}

	switch os.Args[1] {
	case "migrate":
		// Migrations already ran above.
		logger.Log.Info().Msg("Schema is up to date")

	case "export-csv":
		requireArgs(3)
		data, err := projector.CSV(ctx)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("CSV export failed")
		}
		writeFile(os.Args[2], data)

	case "export-images":
		requireArgs(3)
		f, err := os.Create(os.Args[2])
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create zip file")
		}
		defer func() { _ = f.Close() }()
		if err := projector.ZipImages(f); err != nil {
			logger.Log.Fatal().Err(err).Msg("Image export failed")
		}
		logger.Log.Info().Str("file", os.Args[2]).Msg("Images exported")

	case "chart":
		requireArgs(4)
		projectID := parseID(os.Args[2])
		data, err := projector.CategoryChart(ctx, projectID)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Chart export failed")
		}
		writeFile(os.Args[3], data)

	case "scan":
		requireArgs(3)
		imageID := parseID(os.Args[2])
		suggestion, err := coordinator.ScanReceiptImage(ctx, imageID)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Scan failed")
		}
		fmt.Printf("name: %s\namount: %s\nissued_at: %s\nconfidence: %.2f\n",
			suggestion.Name, suggestion.Amount.StringFixed(2),
			suggestion.IssuedAt.Format("2006-01-02"), suggestion.Confidence)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func parseID(arg string) int {
	id, err := strconv.Atoi(arg)
	if err != nil {
		logger.Log.Fatal().Str("arg", arg).Msg("Expected a numeric id")
	}
	return id
}

func writeFile(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Log.Fatal().Err(err).Str("file", path).Msg("Failed to write file")
	}
	logger.Log.Info().Str("file", path).Int("bytes", len(data)).Msg("Export written")
}
