package key

import (
	"strings"
	"testing"

	"github.com/rcaap/bibsheet/internal/record"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello world"},
		{"  Spaced   Out  ", "spaced out"},
		{"Conceição", "conceicao"},
		{"São Paulo", "sao paulo"},
		{"MÜLLER", "muller"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestKeyShape(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		prefix string
	}{
		{"publisher", Publisher("Elsevier"), "P"},
		{"venue", Venue("Nature", "journal"), "V"},
		{"title", Title("10.1234/x", "T", "2020"), "T"},
		{"author", Author(record.Author{Normalized: "Ana Silva"}), "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.key) != 1+hashLen {
				t.Errorf("len(%q) = %d, want %d", tt.key, len(tt.key), 1+hashLen)
			}
			if !strings.HasPrefix(tt.key, tt.prefix) {
				t.Errorf("key %q missing prefix %q", tt.key, tt.prefix)
			}
		})
	}
}

func TestPublisherStable(t *testing.T) {
	if Publisher("Elsevier") != Publisher("  elsevier ") {
		t.Error("case and whitespace must not change the key")
	}
	if Publisher("Elsevier") == Publisher("Springer") {
		t.Error("different names must not collide")
	}
}

func TestVenueTypeDiscriminates(t *testing.T) {
	if Venue("Computing", "journal") == Venue("Computing", "conference") {
		t.Error("same name with different venue types must get distinct keys")
	}
}

func TestTitleDOIWins(t *testing.T) {
	a := Title("10.1234/abc", "Paper title", "2020")
	b := Title("https://doi.org/10.1234/ABC", "Paper Title (reprint)", "2021")
	if a != b {
		t.Error("records with the same DOI must collide to one Title key")
	}

	c := Title("", "Paper title", "2020")
	d := Title("", "Paper title", "2021")
	if c == d {
		t.Error("without a DOI the year must discriminate")
	}
	if a == c {
		t.Error("DOI-derived and title-derived keys must differ")
	}
}

func TestAuthorORCIDWins(t *testing.T) {
	withORCID := record.Author{Normalized: "Ana Silva", ORCID: "0000-0002-1825-0097"}
	renamed := record.Author{Normalized: "Ana Maria Silva", ORCID: "0000-0002-1825-0097", Affiliation: "Elsewhere"}
	if Author(withORCID) != Author(renamed) {
		t.Error("ORCID fully determines the key")
	}

	plain := record.Author{Normalized: "Ana Silva"}
	if Author(withORCID) == Author(plain) {
		t.Error("ORCID-derived and name-derived keys must differ")
	}
}

func TestAuthorAffiliationDisambiguates(t *testing.T) {
	a := record.Author{Normalized: "Ana Silva", Affiliation: "University of Porto"}
	b := record.Author{Normalized: "Ana Silva", Affiliation: "University of Minho"}
	if Author(a) == Author(b) {
		t.Error("same name at different affiliations must get distinct keys")
	}
}

func TestTitleForAccentedDedup(t *testing.T) {
	a := record.Entry{Title: "Avaliação de repositórios", Year: 2020}
	b := record.Entry{Title: "Avaliacao de repositorios", Year: 2020}
	if TitleFor(a) != TitleFor(b) {
		t.Error("diacritics must not change the key")
	}
}
