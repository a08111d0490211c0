package metadata

import "github.com/rcaap/bibsheet/internal/record"

// Enrich fills the missing fields of a parsed entry from a looked-up one.
// Existing values always win: enrichment never overwrites what the BibTeX
// source said.
func Enrich(base, fetched record.Entry) record.Entry {
	out := base
	if out.Title == "" {
		out.Title = fetched.Title
	}
	if out.Abstract == "" {
		out.Abstract = fetched.Abstract
	}
	if out.Language == "" {
		out.Language = fetched.Language
	}
	if out.Keywords == "" {
		out.Keywords = fetched.Keywords
	}
	if out.DOI == "" {
		out.DOI = fetched.DOI
	}
	if out.URL == "" {
		out.URL = fetched.URL
	}
	if out.Publisher == "" {
		out.Publisher = fetched.Publisher
	}
	if out.Venue == "" {
		out.Venue = fetched.Venue
		out.VenueType = fetched.VenueType
	}
	if out.Year == 0 && out.RawYear == "" {
		out.Year = fetched.Year
	}
	if out.Pages == "" {
		out.Pages = fetched.Pages
	}
	if out.Volume == "" {
		out.Volume = fetched.Volume
	}
	if out.Number == "" {
		out.Number = fetched.Number
	}
	if len(out.Authors) == 0 {
		out.Authors = fetched.Authors
	}
	return out
}
