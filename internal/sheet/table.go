// Package sheet defines the five-table RCAAP row layout and the stores that
// persist it: the Google Sheets transport, a local SQLite file, and an
// in-memory store for previews and tests.
package sheet

import "strings"

// Row is one table row as a column-name → value mapping.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Column names shared across tables.
const (
	ColPublisherID    = "ID Publisher"
	ColPublisherName  = "Publisher Name"
	ColVenueID        = "ID Venue"
	ColVenueName      = "Venue Name"
	ColVenueType      = "Venue Type"
	ColTitleID        = "ID Title"
	ColTitle          = "Title"
	ColYear           = "Year"
	ColDOI            = "DOI"
	ColURL            = "URL"
	ColAbstract       = "Abstract"
	ColPages          = "Pages"
	ColVolume         = "Volume"
	ColNumber         = "Number"
	ColKeywords       = "Keywords"
	ColLanguage       = "Language"
	ColAuthorID       = "ID Author"
	ColAuthorName     = "Author Name"
	ColNameNormalized = "Name Normalized"
	ColGivenName      = "Given Name"
	ColFamilyName     = "Family Name"
	ColAffiliation    = "Affiliation"
	ColORCID          = "ORCID"
	ColOrder          = "Order"
)

// Table describes one worksheet: its name, header and identifying columns.
type Table struct {
	Name       string
	KeyColumns []string // Columns that together identify a row
	Columns    []string // Full header, in sheet order
}

// KeyOf returns the row's identifying key. For join tables the key spans
// multiple columns joined with "|".
func (t Table) KeyOf(r Row) string {
	if len(t.KeyColumns) == 1 {
		return r[t.KeyColumns[0]]
	}
	parts := make([]string, len(t.KeyColumns))
	for i, c := range t.KeyColumns {
		parts[i] = r[c]
	}
	return strings.Join(parts, "|")
}

// The five RCAAP tables, in sync processing order: Publisher, Venue and
// Author rows must exist before the Title and Author-Title rows that
// reference their keys.
var (
	Publishers = Table{
		Name:       "Publisher",
		KeyColumns: []string{ColPublisherID},
		Columns:    []string{ColPublisherID, ColPublisherName},
	}
	Venues = Table{
		Name:       "Venue",
		KeyColumns: []string{ColVenueID},
		Columns:    []string{ColVenueID, ColVenueName, ColVenueType},
	}
	Authors = Table{
		Name:       "Authors",
		KeyColumns: []string{ColAuthorID},
		Columns: []string{
			ColAuthorID, ColAuthorName, ColNameNormalized,
			ColGivenName, ColFamilyName, ColAffiliation, ColORCID,
		},
	}
	Titles = Table{
		Name:       "Title",
		KeyColumns: []string{ColTitleID},
		Columns: []string{
			ColTitleID, ColTitle, ColYear, ColDOI, ColURL, ColAbstract,
			ColPages, ColVolume, ColNumber, ColKeywords, ColLanguage,
			ColPublisherID, ColVenueID,
		},
	}
	AuthorTitles = Table{
		Name:       "Author-Title",
		KeyColumns: []string{ColAuthorID, ColTitleID},
		Columns:    []string{ColAuthorID, ColTitleID, ColOrder},
	}
)

// SyncOrder lists the tables in the order a sync pass must process them.
var SyncOrder = []Table{Publishers, Venues, Authors, Titles, AuthorTitles}

// TableByName looks up a table definition by sheet name.
func TableByName(name string) (Table, bool) {
	for _, t := range SyncOrder {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}
