package main

import (
	"github.com/spf13/cobra"

	"github.com/rcaap/bibsheet/internal/bib"
	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/mapper"
	"github.com/rcaap/bibsheet/internal/syncer"
)

var (
	syncDryRun bool
	syncStore  string
	syncTables string
	syncEnrich bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute the plan without writing anything")
	syncCmd.Flags().StringVar(&syncStore, "store", "sheets", "Target store: sheets or sqlite:path")
	syncCmd.Flags().StringVar(&syncTables, "tables", "", "Comma-separated table subset to write (default all)")
	syncCmd.Flags().BoolVar(&syncEnrich, "enrich", false, "Fill missing fields from Crossref/OpenAlex before syncing")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <file.bib>",
	Short: "Parse a BibTeX file and sync it into the spreadsheet",
	Long: `Parse a BibTeX file, map its entries onto the five relational tables
and upsert them into the spreadsheet. Rows are matched by derived key, so
running the same sync twice changes nothing.

Usage:
  bibsheet sync refs.bib
  bibsheet sync refs.bib --dry-run
  bibsheet sync refs.bib --store sqlite:refs.db --tables Title,Authors`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	tables, err := parseTables(syncTables)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if tables == nil {
		tables = cfg.Tables
	}

	// Configuration problems are fatal before any parsing starts.
	if err := validateStoreConfig(cfg, syncStore); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	res, err := bib.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", args[0], err)
	}
	printWarnings(res.Warnings)
	for _, perr := range res.Errors {
		log.WithError(perr).Warn("skipping unparseable entry")
	}
	if len(res.Entries) == 0 {
		exitWithError(ExitDataError, "no entries parsed from %s", args[0])
	}

	ctx := cmd.Context()
	entries := res.Entries
	if syncEnrich {
		entries = enrichEntries(ctx, cfg, entries)
	}

	store, err := openStore(ctx, cfg, syncStore)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer store.Close()

	batch := mapper.MapEntries(entries)
	sy := syncer.New(store, log, syncer.Options{DryRun: syncDryRun, Tables: tables})
	report, err := sy.Sync(ctx, batch)
	if err != nil {
		if report != nil && len(report.Applied) > 0 {
			log.WithField("applied", report.Applied).Error("sync aborted after partial write")
		}
		exitWithError(ExitError, "sync: %v", err)
	}

	if jsonOutput {
		return outputJSON(report)
	}
	printReport(report)
	return nil
}
