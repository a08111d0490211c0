// Package main provides the bibsheet CLI entry point.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	jsonOutput bool
	verbose    bool
)

var log = logrus.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibsheet",
	Short: "Sync BibTeX bibliographies into a relational spreadsheet",
	Long: `bibsheet parses BibTeX files and synchronizes them into a five-table
relational spreadsheet (Publisher, Venue, Title, Author, Author-Title),
deriving stable keys so repeated syncs are idempotent.

The spreadsheet lives in Google Sheets by default; a local SQLite file
can be used instead with --store sqlite:path.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}
