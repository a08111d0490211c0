package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcaap/bibsheet/internal/bib"
	"github.com/rcaap/bibsheet/internal/export"
	"github.com/rcaap/bibsheet/internal/mapper"
	"github.com/rcaap/bibsheet/internal/record"
)

var previewValidate bool

func init() {
	previewCmd.Flags().BoolVar(&previewValidate, "validate", false, "Report entries missing required repository fields")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <file.bib>",
	Short: "Parse a BibTeX file and show the derived rows without syncing",
	Long: `Parse a BibTeX file and show what would be synced: the normalized
entries, their derived keys, and any normalization warnings. Nothing is
read from or written to the spreadsheet.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

// PreviewEntry is the per-entry JSON output of the preview command.
type PreviewEntry struct {
	CiteKey  string           `json:"cite_key"`
	Entry    record.Entry     `json:"entry"`
	Keys     mapper.EntryKeys `json:"keys"`
	Missing  []string         `json:"missing,omitempty"`
	Resource string           `json:"resource_type,omitempty"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	res, err := bib.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", args[0], err)
	}
	printWarnings(res.Warnings)
	for _, perr := range res.Errors {
		log.WithError(perr).Warn("skipping unparseable entry")
	}

	batch := mapper.MapEntries(res.Entries)

	if jsonOutput {
		out := make([]PreviewEntry, 0, len(res.Entries))
		for i, e := range res.Entries {
			pe := PreviewEntry{CiteKey: e.CiteKey, Entry: e, Keys: batch.Entries[i]}
			if previewValidate {
				pe.Missing = export.Validate(e)
				pe.Resource = export.ResourceType(e)
			}
			out = append(out, pe)
		}
		return outputJSON(out)
	}

	for i, e := range res.Entries {
		keys := batch.Entries[i]
		fmt.Printf("%s (%s)\n", e.CiteKey, e.Type)
		fmt.Printf("  title:  %s [%s]\n", e.Title, keys.TitleKey)
		for j, a := range e.Authors {
			fmt.Printf("  author: %s [%s]\n", a.Normalized, keys.AuthorKeys[j])
		}
		if e.Venue != "" {
			fmt.Printf("  venue:  %s (%s) [%s]\n", e.Venue, e.VenueType, keys.VenueKey)
		}
		if e.Publisher != "" {
			fmt.Printf("  publisher: %s [%s]\n", e.Publisher, keys.PublisherKey)
		}
		if previewValidate {
			if missing := export.Validate(e); len(missing) > 0 {
				fmt.Printf("  missing: %v\n", missing)
			}
		}
	}
	fmt.Printf("%d entries, %d warnings, %d parse errors\n",
		len(res.Entries), len(res.Warnings), len(res.Errors))
	return nil
}
