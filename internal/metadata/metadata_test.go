package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rcaap/bibsheet/internal/record"
)

const crossrefResponse = `{
  "message": {
    "DOI": "10.1093/MOLBEV/msy096",
    "type": "journal-article",
    "title": ["Adaptive Immune Receptor Repertoires"],
    "container-title": ["Molecular Biology and Evolution"],
    "publisher": "Oxford University Press",
    "page": "1253-1265",
    "volume": "35",
    "issue": "5",
    "abstract": "<jats:p>We analyze <jats:italic>repertoires</jats:italic> here.</jats:p>",
    "language": "en",
    "URL": "http://dx.doi.org/10.1093/molbev/msy096",
    "issued": {"date-parts": [[2018, 2, 14]]},
    "author": [
      {"given": "Ana", "family": "Silva", "ORCID": "http://orcid.org/0000-0002-1825-0097",
       "affiliation": [{"name": "University of Porto"}]},
      {"given": "Rui", "family": "Costa", "affiliation": []}
    ]
  }
}`

func newCrossrefClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithHTTPClient(srv.Client()),
		WithCrossrefBaseURL(srv.URL),
	)
}

func TestLookupCrossref(t *testing.T) {
	c := newCrossrefClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/works/10.1093%2Fmolbev%2Fmsy096" && got != "/works/10.1093/molbev/msy096" {
			t.Errorf("path = %q", got)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request must carry a User-Agent")
		}
		w.Write([]byte(crossrefResponse))
	})

	e, err := c.LookupCrossref(context.Background(), "https://doi.org/10.1093/molbev/msy096")
	if err != nil {
		t.Fatalf("LookupCrossref() error = %v", err)
	}
	if e.Title != "Adaptive Immune Receptor Repertoires" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.Type != "article" {
		t.Errorf("Type = %q", e.Type)
	}
	if e.DOI != "10.1093/molbev/msy096" {
		t.Errorf("DOI = %q", e.DOI)
	}
	if e.Year != 2018 {
		t.Errorf("Year = %d", e.Year)
	}
	if e.Pages != "1253–1265" {
		t.Errorf("Pages = %q", e.Pages)
	}
	if e.Venue != "Molecular Biology and Evolution" || e.VenueType != "journal" {
		t.Errorf("Venue = %q (%q)", e.Venue, e.VenueType)
	}
	if e.Abstract != "We analyze repertoires here." {
		t.Errorf("Abstract = %q", e.Abstract)
	}
	if e.CiteKey != "silva2018" {
		t.Errorf("CiteKey = %q", e.CiteKey)
	}
	if len(e.Authors) != 2 {
		t.Fatalf("Authors = %d", len(e.Authors))
	}
	if e.Authors[0].ORCID != "0000-0002-1825-0097" {
		t.Errorf("ORCID = %q", e.Authors[0].ORCID)
	}
	if e.Authors[0].Affiliation != "University of Porto" {
		t.Errorf("Affiliation = %q", e.Authors[0].Affiliation)
	}
}

func TestLookupCrossrefNotFound(t *testing.T) {
	c := newCrossrefClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.LookupCrossref(context.Background(), "10.9999/does-not-exist")
	if !IsNotFound(err) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestLookupCrossrefInvalidDOI(t *testing.T) {
	c := NewClient()
	_, err := c.LookupCrossref(context.Background(), "not a doi")
	if !errors.Is(err, ErrInvalidDOI) {
		t.Errorf("want ErrInvalidDOI, got %v", err)
	}
}

func TestLookupCrossrefServerError(t *testing.T) {
	c := newCrossrefClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.LookupCrossref(context.Background(), "10.1234/abc")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Service != "crossref" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

const openalexResponse = `{
  "results": [{
    "title": "Open Science in Portugal",
    "doi": "https://doi.org/10.5555/oa1",
    "publication_year": 2021,
    "language": "pt",
    "type": "article",
    "primary_location": {
      "source": {
        "display_name": "Cadernos BAD",
        "type": "journal",
        "host_organization_name": "BAD"
      }
    },
    "biblio": {"volume": "2", "issue": "1", "first_page": "33", "last_page": "47"},
    "authorships": [
      {"author": {"display_name": "Ana Silva", "orcid": "https://orcid.org/0000-0002-1825-0097"},
       "institutions": [{"display_name": "University of Minho"}]}
    ],
    "keywords": [{"display_name": "open access"}, {"display_name": "repositories"}],
    "abstract_inverted_index": {"science": [1], "Open": [0], "wins": [2]}
  }]
}`

func newOpenAlexClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithHTTPClient(srv.Client()),
		WithOpenAlexBaseURL(srv.URL),
	)
}

func TestLookupOpenAlex(t *testing.T) {
	c := newOpenAlexClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "doi:10.5555/oa1" {
			t.Errorf("filter = %q", got)
		}
		w.Write([]byte(openalexResponse))
	})

	e, err := c.LookupOpenAlex(context.Background(), "10.5555/OA1")
	if err != nil {
		t.Fatalf("LookupOpenAlex() error = %v", err)
	}
	if e.Title != "Open Science in Portugal" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.DOI != "10.5555/oa1" {
		t.Errorf("DOI = %q", e.DOI)
	}
	if e.Pages != "33–47" {
		t.Errorf("Pages = %q", e.Pages)
	}
	if e.Venue != "Cadernos BAD" || e.VenueType != "journal" {
		t.Errorf("Venue = %q (%q)", e.Venue, e.VenueType)
	}
	if e.Publisher != "BAD" {
		t.Errorf("Publisher = %q", e.Publisher)
	}
	if e.Abstract != "Open science wins" {
		t.Errorf("Abstract = %q", e.Abstract)
	}
	if e.Keywords != "open access; repositories" {
		t.Errorf("Keywords = %q", e.Keywords)
	}
	if e.CiteKey != "silva2021" {
		t.Errorf("CiteKey = %q", e.CiteKey)
	}
	if len(e.Authors) != 1 || e.Authors[0].ORCID != "0000-0002-1825-0097" {
		t.Errorf("Authors = %v", e.Authors)
	}
	if e.Authors[0].Affiliation != "University of Minho" {
		t.Errorf("Affiliation = %q", e.Authors[0].Affiliation)
	}
}

func TestLookupOpenAlexEmptyResults(t *testing.T) {
	c := newOpenAlexClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})
	_, err := c.LookupOpenAlex(context.Background(), "10.5555/none")
	if !IsNotFound(err) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestStripJATS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<jats:p>Hello</jats:p>", "Hello"},
		{"<jats:p>A <jats:italic>big</jats:italic> deal</jats:p>", "A big deal"},
	}
	for _, tt := range tests {
		if got := stripJATS(tt.input); got != tt.want {
			t.Errorf("stripJATS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEnrich(t *testing.T) {
	base := record.Entry{
		CiteKey: "silva2020",
		Title:   "Kept Title",
		Year:    2020,
		Authors: []record.Author{{Normalized: "Ana Silva"}},
	}
	fetched := record.Entry{
		Title:    "Fetched Title",
		Abstract: "Fetched abstract.",
		Venue:    "Fetched Venue",
		Year:     2019,
		DOI:      "10.1/x",
		Authors:  []record.Author{{Normalized: "Someone Else"}},
	}

	got := Enrich(base, fetched)
	if got.Title != "Kept Title" {
		t.Errorf("existing title overwritten: %q", got.Title)
	}
	if got.Year != 2020 {
		t.Errorf("existing year overwritten: %d", got.Year)
	}
	if len(got.Authors) != 1 || got.Authors[0].Normalized != "Ana Silva" {
		t.Errorf("existing authors overwritten: %v", got.Authors)
	}
	if got.Abstract != "Fetched abstract." {
		t.Errorf("missing abstract not filled: %q", got.Abstract)
	}
	if got.Venue != "Fetched Venue" {
		t.Errorf("missing venue not filled: %q", got.Venue)
	}
	if got.DOI != "10.1/x" {
		t.Errorf("missing doi not filled: %q", got.DOI)
	}
	if got.CiteKey != "silva2020" {
		t.Errorf("cite key changed: %q", got.CiteKey)
	}
}
