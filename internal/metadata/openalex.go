package metadata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rcaap/bibsheet/internal/normalize"
	"github.com/rcaap/bibsheet/internal/record"
)

// openalexWork is the subset of an OpenAlex work this tool reads.
type openalexWork struct {
	Title           string `json:"title"`
	DisplayName     string `json:"display_name"`
	DOI             string `json:"doi"`
	PublicationYear int    `json:"publication_year"`
	Language        string `json:"language"`
	Type            string `json:"type"`
	IsOA            bool   `json:"is_oa"`

	PrimaryLocation struct {
		Source struct {
			DisplayName          string `json:"display_name"`
			Type                 string `json:"type"`
			HostOrganizationName string `json:"host_organization_name"`
		} `json:"source"`
	} `json:"primary_location"`

	Biblio struct {
		Volume    string `json:"volume"`
		Issue     string `json:"issue"`
		FirstPage string `json:"first_page"`
		LastPage  string `json:"last_page"`
	} `json:"biblio"`

	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
			ORCID       string `json:"orcid"`
		} `json:"author"`
		Institutions []struct {
			DisplayName string `json:"display_name"`
		} `json:"institutions"`
	} `json:"authorships"`

	Keywords []struct {
		DisplayName string `json:"display_name"`
	} `json:"keywords"`

	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// LookupOpenAlex fetches metadata for a DOI from the OpenAlex works API and
// maps it into a normalized entry.
func (c *Client) LookupOpenAlex(ctx context.Context, doi string) (record.Entry, error) {
	doi = normalize.DOI(doi)
	if !doiPattern.MatchString(doi) {
		return record.Entry{}, fmt.Errorf("%q: %w", doi, ErrInvalidDOI)
	}

	var resp struct {
		Results []openalexWork `json:"results"`
	}
	endpoint := c.openalex + "/works?filter=doi:" + url.QueryEscape(doi)
	if err := c.getJSON(ctx, "openalex", endpoint, doi, &resp); err != nil {
		return record.Entry{}, err
	}
	if len(resp.Results) == 0 {
		return record.Entry{}, fmt.Errorf("%s: %w", doi, ErrNotFound)
	}
	return mapOpenAlex(resp.Results[0]), nil
}

// openalexTypeToBibtex maps OpenAlex work types onto BibTeX entry types.
var openalexTypeToBibtex = map[string]string{
	"article":      "article",
	"book":         "book",
	"book-chapter": "incollection",
	"dissertation": "phdthesis",
	"report":       "techreport",
	"preprint":     "unpublished",
	"proceedings":  "inproceedings",
	"dataset":      "misc",
	"other":        "misc",
}

// mapOpenAlex converts an OpenAlex work into a normalized entry.
func mapOpenAlex(w openalexWork) record.Entry {
	entryType, ok := openalexTypeToBibtex[w.Type]
	if !ok {
		entryType = "misc"
	}

	title := w.Title
	if title == "" {
		title = w.DisplayName
	}

	e := record.Entry{
		Type:     entryType,
		Title:    normalize.CleanText(title),
		DOI:      normalize.DOI(w.DOI),
		Year:     w.PublicationYear,
		Language: w.Language,
		Volume:   w.Biblio.Volume,
		Number:   w.Biblio.Issue,
		Abstract: reconstructAbstract(w.AbstractInvertedIndex),
	}

	if w.Biblio.FirstPage != "" {
		e.Pages = w.Biblio.FirstPage
		if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
			e.Pages = w.Biblio.FirstPage + "–" + w.Biblio.LastPage
		}
	}

	if src := w.PrimaryLocation.Source; src.DisplayName != "" {
		e.Venue = normalize.CleanText(src.DisplayName)
		switch src.Type {
		case "conference":
			e.VenueType = "conference"
		default:
			e.VenueType = "journal"
		}
		e.Publisher = normalize.CleanText(src.HostOrganizationName)
	}

	for _, as := range w.Authorships {
		a := normalize.ParseAuthor(as.Author.DisplayName)
		a.ORCID = normalize.ExtractORCID(as.Author.ORCID)
		if len(as.Institutions) > 0 {
			a.Affiliation = as.Institutions[0].DisplayName
		}
		e.Authors = append(e.Authors, a)
	}

	var kw []string
	for _, k := range w.Keywords {
		if k.DisplayName != "" {
			kw = append(kw, k.DisplayName)
		}
	}
	e.Keywords = strings.Join(kw, "; ")

	if len(e.Authors) > 0 && e.Authors[0].Family != "" {
		key := strings.ToLower(strings.Join(strings.Fields(e.Authors[0].Family), ""))
		if e.Year != 0 {
			key += e.YearString()
		}
		e.CiteKey = key
	}
	return e
}

// reconstructAbstract rebuilds abstract text from OpenAlex's inverted index
// (word → positions).
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type posWord struct {
		pos  int
		word string
	}
	var words []posWord
	for word, positions := range index {
		for _, p := range positions {
			words = append(words, posWord{pos: p, word: word})
		}
	}
	sort.Slice(words, func(i, j int) bool { return words[i].pos < words[j].pos })

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.word
	}
	return strings.Join(out, " ")
}
