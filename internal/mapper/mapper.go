// Package mapper converts normalized entries into candidate rows for the
// five RCAAP tables. The conversion is pure: it proposes rows and the keys
// that link them, and leaves reconciliation against the store to the syncer.
package mapper

import (
	"strconv"

	"github.com/rcaap/bibsheet/internal/key"
	"github.com/rcaap/bibsheet/internal/record"
	"github.com/rcaap/bibsheet/internal/sheet"
)

// EntryKeys records the keys resolved for one entry, in author-list order.
// Callers such as the CSV exporter use it to join rows back together.
type EntryKeys struct {
	CiteKey      string   `json:"cite_key"`
	TitleKey     string   `json:"title_key"`
	PublisherKey string   `json:"publisher_key,omitempty"`
	VenueKey     string   `json:"venue_key,omitempty"`
	AuthorKeys   []string `json:"author_keys,omitempty"`
}

// Batch holds candidate rows per table for one or more entries.
type Batch struct {
	Publishers []sheet.Row
	Venues     []sheet.Row
	Authors    []sheet.Row
	Titles     []sheet.Row
	Links      []sheet.Row

	Entries []EntryKeys
}

// Rows returns the candidate rows for a table, in proposal order.
func (b Batch) Rows(t sheet.Table) []sheet.Row {
	switch t.Name {
	case sheet.Publishers.Name:
		return b.Publishers
	case sheet.Venues.Name:
		return b.Venues
	case sheet.Authors.Name:
		return b.Authors
	case sheet.Titles.Name:
		return b.Titles
	case sheet.AuthorTitles.Name:
		return b.Links
	}
	return nil
}

// MapEntry maps one normalized entry to candidate rows: one Title, zero or
// one Publisher, zero or one Venue, one Author row per author in original
// order, and one Author-Title row per author with a ONE-based Order.
//
// Missing optional fields stay empty; no placeholder strings are invented.
func MapEntry(e record.Entry) Batch {
	var b Batch
	ek := EntryKeys{CiteKey: e.CiteKey, TitleKey: key.TitleFor(e)}

	if e.Publisher != "" {
		ek.PublisherKey = key.Publisher(e.Publisher)
		b.Publishers = append(b.Publishers, sheet.Row{
			sheet.ColPublisherID:   ek.PublisherKey,
			sheet.ColPublisherName: e.Publisher,
		})
	}

	if e.Venue != "" {
		ek.VenueKey = key.Venue(e.Venue, e.VenueType)
		b.Venues = append(b.Venues, sheet.Row{
			sheet.ColVenueID:   ek.VenueKey,
			sheet.ColVenueName: e.Venue,
			sheet.ColVenueType: e.VenueType,
		})
	}

	b.Titles = append(b.Titles, sheet.Row{
		sheet.ColTitleID:     ek.TitleKey,
		sheet.ColTitle:       e.Title,
		sheet.ColYear:        e.YearString(),
		sheet.ColDOI:         e.DOI,
		sheet.ColURL:         e.URL,
		sheet.ColAbstract:    e.Abstract,
		sheet.ColPages:       e.Pages,
		sheet.ColVolume:      e.Volume,
		sheet.ColNumber:      e.Number,
		sheet.ColKeywords:    e.Keywords,
		sheet.ColLanguage:    e.Language,
		sheet.ColPublisherID: ek.PublisherKey,
		sheet.ColVenueID:     ek.VenueKey,
	})

	// Repeated authors keep their first position; Order stays unique per
	// title.
	seen := make(map[string]bool, len(e.Authors))
	order := 0
	for _, a := range e.Authors {
		ak := key.Author(a)
		ek.AuthorKeys = append(ek.AuthorKeys, ak)
		if seen[ak] {
			continue
		}
		seen[ak] = true
		order++

		b.Authors = append(b.Authors, sheet.Row{
			sheet.ColAuthorID:       ak,
			sheet.ColAuthorName:     a.Raw,
			sheet.ColNameNormalized: a.Normalized,
			sheet.ColGivenName:      a.Given,
			sheet.ColFamilyName:     a.Family,
			sheet.ColAffiliation:    a.Affiliation,
			sheet.ColORCID:          a.ORCID,
		})
		b.Links = append(b.Links, sheet.Row{
			sheet.ColAuthorID: ak,
			sheet.ColTitleID:  ek.TitleKey,
			sheet.ColOrder:    strconv.Itoa(order),
		})
	}

	b.Entries = append(b.Entries, ek)
	return b
}

// MapEntries maps a parsed batch of entries, concatenating candidates in
// entry order. Cross-entry deduplication by key happens in the syncer.
func MapEntries(entries []record.Entry) Batch {
	var out Batch
	for _, e := range entries {
		b := MapEntry(e)
		out.Publishers = append(out.Publishers, b.Publishers...)
		out.Venues = append(out.Venues, b.Venues...)
		out.Authors = append(out.Authors, b.Authors...)
		out.Titles = append(out.Titles, b.Titles...)
		out.Links = append(out.Links, b.Links...)
		out.Entries = append(out.Entries, b.Entries...)
	}
	return out
}
