package export

import (
	"fmt"
	"strings"

	"github.com/rcaap/bibsheet/internal/record"
)

// ToBibTeX renders an entry as a BibTeX record, round-trippable through
// the parser.
func ToBibTeX(e record.Entry) string {
	entryType := e.Type
	if entryType == "" {
		entryType = "article"
	}
	citeKey := e.CiteKey
	if citeKey == "" {
		citeKey = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, citeKey)

	if len(e.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(e.Authors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(e.Title))

	if e.Venue != "" {
		fieldName := "journal"
		switch e.VenueType {
		case "conference":
			fieldName = "booktitle"
		case "event":
			fieldName = "eventtitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(e.Venue))
	}
	if y := e.YearString(); y != "" {
		fmt.Fprintf(&b, "  year = {%s},\n", y)
	}
	if e.Publisher != "" {
		fmt.Fprintf(&b, "  publisher = {%s},\n", escapeLatex(e.Publisher))
	}
	if e.Volume != "" {
		fmt.Fprintf(&b, "  volume = {%s},\n", e.Volume)
	}
	if e.Number != "" {
		fmt.Fprintf(&b, "  number = {%s},\n", e.Number)
	}
	if e.Pages != "" {
		fmt.Fprintf(&b, "  pages = {%s},\n", e.Pages)
	}
	if e.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", e.DOI)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", e.URL)
	}
	if e.Keywords != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(e.Keywords))
	}
	if e.Language != "" {
		fmt.Fprintf(&b, "  language = {%s},\n", e.Language)
	}
	if e.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(e.Abstract))
	}
	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList renders multiple entries separated by blank lines.
func ToBibTeXList(entries []record.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, ToBibTeX(e))
	}
	return strings.Join(parts, "\n")
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First".
func formatAuthors(authors []record.Author) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		switch {
		case a.Family != "" && a.Given != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", a.Family, a.Given))
		case a.Family != "":
			formatted = append(formatted, a.Family)
		default:
			formatted = append(formatted, a.Raw)
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
