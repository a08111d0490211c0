// Package normalize turns raw BibTeX field values into clean, typed values.
//
// Normalization fails soft: a sub-field that cannot be split or typed is
// passed through unmodified, and the problem is reported as a Warning rather
// than an error.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rcaap/bibsheet/internal/record"
)

// Warning describes a sub-field that could not be fully normalized.
// It is informational; the raw value is kept and processing continues.
type Warning struct {
	CiteKey string
	Field   string
	Reason  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: field %q: %s", w.CiteKey, w.Field, w.Reason)
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	orcidRe      = regexp.MustCompile(`(\d{4}-\d{4}-\d{4}-\d{3}[\dXx])`)
	pageRangeRe  = regexp.MustCompile(`^(\w+)\s*[-–—]{1,2}\s*(\w+)$`)
)

// latexReplacer undoes the LaTeX escapes that commonly survive in field text.
var latexReplacer = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
	"``", `"`,
	"''", `"`,
	"~", " ",
)

// CleanText de-braces and de-escapes a BibTeX text value and collapses
// whitespace. Braces that protect capitalization in titles are dropped
// entirely; their content is kept.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = latexReplacer.Replace(s)
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// SplitAuthors splits a BibTeX author field on the " and " separator.
// Separators inside brace groups are protected, so corporate names like
// "{Research and Development Council}" stay in one piece.
func SplitAuthors(field string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i+5 <= len(field); i++ {
		switch field[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && field[i:i+5] == " and " {
			if part := strings.TrimSpace(field[start:i]); part != "" {
				out = append(out, part)
			}
			start = i + 5
			i += 4
		}
	}
	if part := strings.TrimSpace(field[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// ExtractORCID returns the ORCID identifier embedded in a string, or "".
// Both bare identifiers and orcid.org URIs are recognized.
func ExtractORCID(s string) string {
	if m := orcidRe.FindString(s); m != "" {
		return strings.ToUpper(m)
	}
	return ""
}

// ParseAuthor parses one raw author string into its name parts.
//
// The comma form "Family, Given" takes precedence. Otherwise the last
// whitespace-separated token is the family name and the rest is the given
// name. An embedded ORCID is extracted and removed from the display name.
func ParseAuthor(raw string) record.Author {
	a := record.Author{Raw: strings.TrimSpace(raw)}
	name := a.Raw

	if a.ORCID = ExtractORCID(name); a.ORCID != "" {
		name = orcidRe.ReplaceAllString(name, "")
		name = strings.NewReplacer(
			"https://orcid.org/", "",
			"http://orcid.org/", "",
			"orcid.org/", "",
			"()", "",
		).Replace(name)
	}
	name = CleanText(name)

	if i := strings.Index(name, ","); i >= 0 {
		family := strings.TrimSpace(name[:i])
		given := strings.TrimSpace(strings.ReplaceAll(name[i+1:], ",", " "))
		given = strings.TrimSpace(whitespaceRe.ReplaceAllString(given, " "))
		a.Family = family
		a.Given = given
	} else {
		parts := strings.Fields(name)
		switch len(parts) {
		case 0:
		case 1:
			a.Family = parts[0]
		default:
			a.Given = strings.Join(parts[:len(parts)-1], " ")
			a.Family = parts[len(parts)-1]
		}
	}

	a.Normalized = strings.TrimSpace(a.Given + " " + a.Family)
	return a
}

// Year coerces a year field to an integer. The second return value reports
// whether the coercion succeeded.
func Year(s string) (int, bool) {
	s = strings.TrimSpace(CleanText(s))
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// Pages normalizes a page field to the "start–end" form when a range is
// detected. Single pages and unrecognized forms are returned cleaned but
// otherwise unmodified.
func Pages(s string) string {
	s = CleanText(s)
	if m := pageRangeRe.FindStringSubmatch(s); m != nil {
		return m[1] + "–" + m[2]
	}
	return s
}

// DOI normalizes a DOI for comparison and storage: resolver prefixes are
// stripped and the identifier is lowercased.
func DOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// venueFields lists venue sources in precedence order with the venue type
// each one implies.
var venueFields = []struct{ field, vtype string }{
	{"booktitle", "conference"},
	{"journal", "journal"},
	{"event", "event"},
}

// Entry normalizes one raw field mapping into a record.Entry. Field names in
// fields must already be lowercase (the BibTeX parser guarantees this).
func Entry(entryType, citeKey string, fields map[string]string) (record.Entry, []Warning) {
	var warnings []Warning

	e := record.Entry{
		CiteKey:   citeKey,
		Type:      strings.ToLower(strings.TrimSpace(entryType)),
		Title:     CleanText(fields["title"]),
		Abstract:  CleanText(fields["abstract"]),
		Keywords:  CleanText(fields["keywords"]),
		Language:  CleanText(fields["language"]),
		Publisher: CleanText(fields["publisher"]),
		DOI:       DOI(fields["doi"]),
		URL:       strings.TrimSpace(fields["url"]),
		Pages:     Pages(fields["pages"]),
		Volume:    CleanText(fields["volume"]),
		Number:    CleanText(fields["number"]),
	}

	for _, vf := range venueFields {
		if v := CleanText(fields[vf.field]); v != "" {
			e.Venue = v
			e.VenueType = vf.vtype
			break
		}
	}

	if raw, ok := fields["year"]; ok && strings.TrimSpace(raw) != "" {
		if y, ok := Year(raw); ok {
			e.Year = y
		} else {
			e.RawYear = CleanText(raw)
			warnings = append(warnings, Warning{
				CiteKey: citeKey,
				Field:   "year",
				Reason:  fmt.Sprintf("not an integer: %q", e.RawYear),
			})
		}
	}

	affiliation := CleanText(fields["affiliation"])
	if affiliation == "" {
		affiliation = CleanText(fields["institution"])
	}

	for _, raw := range SplitAuthors(fields["author"]) {
		a := ParseAuthor(raw)
		if a.Normalized == "" {
			warnings = append(warnings, Warning{
				CiteKey: citeKey,
				Field:   "author",
				Reason:  fmt.Sprintf("could not parse name from %q", raw),
			})
			continue
		}
		if a.Affiliation == "" {
			a.Affiliation = affiliation
		}
		e.Authors = append(e.Authors, a)
	}

	return e, warnings
}
