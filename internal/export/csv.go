// Package export renders normalized entries in the RCAAP ingestion formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rcaap/bibsheet/internal/record"
)

// Header is the RCAAP Dublin Core CSV header.
var Header = []string{
	"dc.title",
	"dc.contributor.author",
	"dc.date.issued",
	"dc.publisher",
	"dc.identifier.doi",
}

// Row renders one entry as an RCAAP CSV record. The author column is the
// ordered author list joined with ";", each author as "Given Family".
func Row(e record.Entry) []string {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, a.Normalized)
	}
	return []string{e.Title, strings.Join(names, ";"), e.YearString(), e.Publisher, e.DOI}
}

// WriteCSV writes the RCAAP CSV export for a batch of entries.
func WriteCSV(w io.Writer, entries []record.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return fmt.Errorf("writing row for %s: %w", e.CiteKey, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
