package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/rcaap/bibsheet/internal/record"
)

func sampleEntry() record.Entry {
	return record.Entry{
		CiteKey:   "silva2020",
		Type:      "article",
		Title:     "Open Repositories in Portugal",
		Year:      2020,
		DOI:       "10.1234/abc",
		Publisher: "Elsevier",
		Venue:     "Journal of Repositories",
		VenueType: "journal",
		Language:  "pt",
		Authors: []record.Author{
			{Raw: "Silva, Ana", Given: "Ana", Family: "Silva", Normalized: "Ana Silva"},
			{Raw: "Costa, Rui", Given: "Rui", Family: "Costa", Normalized: "Rui Costa"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []record.Entry{sampleEntry()}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header plus one row", len(records))
	}
	if !reflect.DeepEqual(records[0], Header) {
		t.Errorf("header = %v", records[0])
	}
	want := []string{
		"Open Repositories in Portugal",
		"Ana Silva;Rui Costa",
		"2020",
		"Elsevier",
		"10.1234/abc",
	}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("row = %v, want %v", records[1], want)
	}
}

func TestRowEmptyFields(t *testing.T) {
	got := Row(record.Entry{Title: "Only a Title"})
	want := []string{"Only a Title", "", "", "", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row() = %v, want %v", got, want)
	}
}

func TestToBibTeX(t *testing.T) {
	out := ToBibTeX(sampleEntry())
	for _, want := range []string{
		"@article{silva2020,",
		"author = {Silva, Ana and Costa, Rui}",
		"title = {Open Repositories in Portugal}",
		"journal = {Journal of Repositories}",
		"year = {2020}",
		"doi = {10.1234/abc}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToBibTeXConferenceUsesBooktitle(t *testing.T) {
	e := sampleEntry()
	e.Type = "inproceedings"
	e.VenueType = "conference"
	out := ToBibTeX(e)
	if !strings.Contains(out, "booktitle = {Journal of Repositories}") {
		t.Errorf("conference venue must render as booktitle:\n%s", out)
	}
}

func TestToBibTeXEscapes(t *testing.T) {
	e := sampleEntry()
	e.Title = "Profit & Loss: 50% of #1"
	out := ToBibTeX(e)
	if !strings.Contains(out, `Profit \& Loss: 50\% of \#1`) {
		t.Errorf("special characters not escaped:\n%s", out)
	}
}

func TestResourceType(t *testing.T) {
	tests := []struct {
		entryType string
		want      string
	}{
		{"article", "article"},
		{"inproceedings", "conferenceObject"},
		{"phdthesis", "doctoralThesis"},
		{"techreport", "report"},
		{"misc", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := ResourceType(record.Entry{Type: tt.entryType}); got != tt.want {
			t.Errorf("ResourceType(%q) = %q, want %q", tt.entryType, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if missing := Validate(sampleEntry()); len(missing) != 0 {
		t.Errorf("complete entry reported missing = %v", missing)
	}

	missing := Validate(record.Entry{})
	want := []string{"title", "authors", "year", "language"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("Validate() = %v, want %v", missing, want)
	}

	// A raw, unparseable year still counts as present.
	e := record.Entry{Title: "T", RawYear: "in press", Language: "en",
		Authors: []record.Author{{Normalized: "Ana Silva"}}}
	if missing := Validate(e); len(missing) != 0 {
		t.Errorf("raw year entry missing = %v", missing)
	}
}

func TestRecommended(t *testing.T) {
	e := sampleEntry()
	if missing := Recommended(e); !reflect.DeepEqual(missing, []string{"abstract"}) {
		t.Errorf("Recommended() = %v", missing)
	}
	e.Abstract = "Has one."
	if missing := Recommended(e); len(missing) != 0 {
		t.Errorf("Recommended() = %v", missing)
	}
}
