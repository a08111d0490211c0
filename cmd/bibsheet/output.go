package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rcaap/bibsheet/internal/normalize"
	"github.com/rcaap/bibsheet/internal/sheet"
	"github.com/rcaap/bibsheet/internal/syncer"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		outputJSON(map[string]string{"error": msg})
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	os.Exit(code)
}

// printWarnings lists normalization warnings on stderr.
func printWarnings(warnings []normalize.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", w.CiteKey, w.Field, w.Reason)
	}
}

// printReport renders a sync report as an aligned per-table summary.
func printReport(report *syncer.Report) {
	if report.DryRun {
		fmt.Println("Dry run, no changes written.")
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tINSERTED\tUPDATED\tUNCHANGED")
	for _, t := range sheet.SyncOrder {
		c, ok := report.Tables[t.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", t.Name, c.Inserted, c.Updated, c.Skipped)
	}
	tw.Flush()

	for _, m := range report.Merges {
		fmt.Printf("merged duplicate %s row %s\n", m.Table, m.Key)
	}
	total := report.Total()
	fmt.Printf("%d entries: %d inserted, %d updated, %d unchanged\n",
		len(report.Entries), total.Inserted, total.Updated, total.Skipped)
}
