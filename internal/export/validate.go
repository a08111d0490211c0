package export

import "github.com/rcaap/bibsheet/internal/record"

// ResourceTypes is the RCAAP resource-type vocabulary.
var ResourceTypes = []string{
	"article",
	"book",
	"bookPart",
	"conferenceObject",
	"conferenceProceeding",
	"doctoralThesis",
	"masterThesis",
	"report",
	"workingPaper",
	"dataset",
	"other",
}

// entryTypeToResource maps BibTeX entry types onto the RCAAP vocabulary.
var entryTypeToResource = map[string]string{
	"article":       "article",
	"book":          "book",
	"inbook":        "bookPart",
	"incollection":  "bookPart",
	"inproceedings": "conferenceObject",
	"conference":    "conferenceObject",
	"proceedings":   "conferenceProceeding",
	"phdthesis":     "doctoralThesis",
	"mastersthesis": "masterThesis",
	"techreport":    "report",
	"unpublished":   "workingPaper",
}

// ResourceType returns the RCAAP resource type for an entry, "other" when
// the BibTeX type has no mapping.
func ResourceType(e record.Entry) string {
	if rt, ok := entryTypeToResource[e.Type]; ok {
		return rt
	}
	return "other"
}

// Validate checks an entry against the RCAAP required fields and returns
// the names of the missing ones. Missing fields are reported as warnings by
// callers, never treated as fatal.
func Validate(e record.Entry) []string {
	var missing []string
	if e.Title == "" {
		missing = append(missing, "title")
	}
	if len(e.Authors) == 0 {
		missing = append(missing, "authors")
	}
	if e.Year == 0 && e.RawYear == "" {
		missing = append(missing, "year")
	}
	if e.Language == "" {
		missing = append(missing, "language")
	}
	return missing
}

// Recommended checks the RCAAP recommended fields and returns the missing
// ones.
func Recommended(e record.Entry) []string {
	var missing []string
	if e.Abstract == "" {
		missing = append(missing, "abstract")
	}
	if e.DOI == "" {
		missing = append(missing, "doi")
	}
	return missing
}
