package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/export"
	"github.com/rcaap/bibsheet/internal/metadata"
	"github.com/rcaap/bibsheet/internal/pdfdoi"
	"github.com/rcaap/bibsheet/internal/record"
)

var (
	lookupSource string
	lookupPDF    bool
	lookupBib    bool
)

func init() {
	lookupCmd.Flags().StringVar(&lookupSource, "source", "crossref", "Metadata source: crossref or openalex")
	lookupCmd.Flags().BoolVar(&lookupPDF, "pdf", false, "Treat the argument as a PDF file and extract its DOI first")
	lookupCmd.Flags().BoolVar(&lookupBib, "bib", false, "Print the result as a BibTeX entry")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <doi|file.pdf>",
	Short: "Fetch metadata for a DOI",
	Long: `Fetch publication metadata for a DOI from Crossref or OpenAlex.
With --pdf the argument is a PDF file; the DOI is extracted from its
first pages before the lookup.

Usage:
  bibsheet lookup 10.1093/molbev/msy096
  bibsheet lookup --pdf paper.pdf --bib
  bibsheet lookup --source openalex 10.1093/molbev/msy096`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	doi := args[0]
	if lookupPDF {
		doi, err = pdfdoi.Extract(args[0])
		if err != nil {
			exitWithError(ExitDataError, "extracting doi from %s: %v", args[0], err)
		}
		if doi == "" {
			exitWithError(ExitDataError, "no doi found in %s", args[0])
		}
	}

	client := newMetadataClient(cfg)
	entry, err := lookupOne(cmd.Context(), client, lookupSource, doi)
	if err != nil {
		if metadata.IsNotFound(err) {
			exitWithError(ExitDataError, "doi %s not found", doi)
		}
		exitWithError(ExitError, "lookup: %v", err)
	}

	switch {
	case lookupBib:
		fmt.Print(export.ToBibTeX(entry))
	case jsonOutput:
		return outputJSON(entry)
	default:
		fmt.Printf("%s\n", entry.Title)
		for _, a := range entry.Authors {
			fmt.Printf("  %s\n", a.Normalized)
		}
		fmt.Printf("%s", entry.YearString())
		if entry.Venue != "" {
			fmt.Printf(", %s", entry.Venue)
		}
		if entry.Publisher != "" {
			fmt.Printf(", %s", entry.Publisher)
		}
		fmt.Printf("\ndoi: %s\n", entry.DOI)
	}
	return nil
}

func newMetadataClient(cfg *config.Config) *metadata.Client {
	var opts []metadata.Option
	if cfg.Mailto != "" {
		opts = append(opts, metadata.WithMailto(cfg.Mailto))
	}
	return metadata.NewClient(opts...)
}

func lookupOne(ctx context.Context, client *metadata.Client, source, doi string) (record.Entry, error) {
	switch source {
	case "crossref":
		return client.LookupCrossref(ctx, doi)
	case "openalex":
		return client.LookupOpenAlex(ctx, doi)
	default:
		return record.Entry{}, fmt.Errorf("unknown source %q (want crossref or openalex)", source)
	}
}

// enrichEntries fills missing fields on entries that carry a DOI. Lookup
// failures are logged and skipped; existing values are never overwritten.
func enrichEntries(ctx context.Context, cfg *config.Config, entries []record.Entry) []record.Entry {
	client := newMetadataClient(cfg)
	out := make([]record.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.DOI == "" {
			continue
		}
		fetched, err := client.LookupCrossref(ctx, e.DOI)
		if metadata.IsNotFound(err) {
			fetched, err = client.LookupOpenAlex(ctx, e.DOI)
		}
		if err != nil {
			log.WithError(err).WithField("doi", e.DOI).Warn("enrichment lookup failed")
			continue
		}
		out[i] = metadata.Enrich(e, fetched)
	}
	return out
}
