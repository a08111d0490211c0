// Package record defines the core domain types for normalized bibliographic records.
package record

import "strconv"

// Entry is one bibliographic record after field normalization.
type Entry struct {
	// Identity
	CiteKey string `json:"cite_key"` // Citation key from the BibTeX source
	Type    string `json:"type"`     // BibTeX entry type (article, inproceedings, ...)

	// Metadata
	Title    string   `json:"title"`
	Authors  []Author `json:"authors"`
	Abstract string   `json:"abstract,omitempty"`
	Keywords string   `json:"keywords,omitempty"`
	Language string   `json:"language,omitempty"`

	// Venue and publisher
	Venue     string `json:"venue,omitempty"`      // From booktitle, journal or event
	VenueType string `json:"venue_type,omitempty"` // conference, journal or event
	Publisher string `json:"publisher,omitempty"`

	// Identifiers and locator fields
	DOI string `json:"doi,omitempty"` // Normalized: lowercase, resolver prefix stripped
	URL string `json:"url,omitempty"`

	// Publication details
	Year    int    `json:"year,omitempty"`     // 0 when absent or unparseable
	RawYear string `json:"raw_year,omitempty"` // Original text kept when Year is 0
	Pages   string `json:"pages,omitempty"`    // "start–end" when a range was detected
	Volume  string `json:"volume,omitempty"`
	Number  string `json:"number,omitempty"`
}

// Author represents one author of an entry.
type Author struct {
	Raw         string `json:"raw"` // Original author string from the entry
	Given       string `json:"given"`
	Family      string `json:"family"`
	Normalized  string `json:"normalized"` // "Given Family"
	ORCID       string `json:"orcid,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// YearString returns the publication year as text, falling back to the raw
// field value when the year could not be parsed as an integer.
func (e Entry) YearString() string {
	if e.Year != 0 {
		return strconv.Itoa(e.Year)
	}
	return e.RawYear
}
