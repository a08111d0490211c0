package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcaap/bibsheet/internal/bib"
	"github.com/rcaap/bibsheet/internal/export"
)

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write CSV to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.bib>",
	Short: "Export a BibTeX file as repository-ingest CSV",
	Long: `Parse a BibTeX file and write it as a flat CSV with Dublin Core
column headers (dc.title, dc.contributor.author, ...), suitable for bulk
ingest into an institutional repository.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	res, err := bib.ParseFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", args[0], err)
	}
	printWarnings(res.Warnings)
	for _, perr := range res.Errors {
		log.WithError(perr).Warn("skipping unparseable entry")
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, res.Entries); err != nil {
		exitWithError(ExitError, "writing csv: %v", err)
	}
	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "wrote %d entries to %s\n", len(res.Entries), exportOutput)
	}
	return nil
}
