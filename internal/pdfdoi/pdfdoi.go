// Package pdfdoi extracts a DOI from a PDF, feeding the metadata lookup
// pipeline when no BibTeX source is at hand.
package pdfdoi

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Extract returns the first DOI found in the opening pages of a PDF, or ""
// when none is present (not an error: many scans carry no DOI text).
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// The DOI is nearly always on the first page; three is generous.
	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := Find(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

// Find returns the first DOI-looking token in a text block, with trailing
// punctuation trimmed.
func Find(text string) string {
	m := doiPattern.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ".,;)")
}
