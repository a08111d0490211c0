// Package key derives the stable identifying keys used to deduplicate and
// link rows across the Publisher, Venue, Title and Author tables.
//
// All derivations are pure: the same normalized fields always produce the
// same key, across runs and machines. Keys are a single-letter table prefix
// followed by a short hash of the discriminating fields, e.g. "T1a2b3c4d5e6".
package key

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rcaap/bibsheet/internal/normalize"
	"github.com/rcaap/bibsheet/internal/record"
)

// hashLen is the number of hex digits kept from the field hash.
const hashLen = 12

// deaccent removes combining marks after canonical decomposition, so that
// "Conceição" and "Conceicao" slug to the same text.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lowercases a string, strips diacritics and collapses whitespace.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// derive hashes the discriminating fields into a fixed-width key.
// Fields are joined with a unit separator so that ("ab","c") and ("a","bc")
// cannot collide.
func derive(prefix string, fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return prefix + hex.EncodeToString(sum[:])[:hashLen]
}

// Publisher derives the key for a publisher name.
func Publisher(name string) string {
	return derive("P", "publisher", Slug(name))
}

// Venue derives the key for a venue. The venue type participates in the
// derivation so a journal named X and a conference named X get distinct keys.
func Venue(name, venueType string) string {
	return derive("V", "venue", Slug(name), Slug(venueType))
}

// Title derives the key for a title. A DOI, when present, is the sole
// discriminator: two records carrying the same DOI collide to one Title row
// even if their title text differs slightly. Without a DOI the key falls
// back to the normalized title plus year.
func Title(doi, title, year string) string {
	if d := normalize.DOI(doi); d != "" {
		return derive("T", "doi", d)
	}
	return derive("T", "title", Slug(title), strings.TrimSpace(year))
}

// TitleFor derives the Title key for a normalized entry.
func TitleFor(e record.Entry) string {
	return Title(e.DOI, e.Title, e.YearString())
}

// Author derives the key for an author. An ORCID, the strongest identifier,
// fully determines the key, so the same person cited under a different name
// order still resolves to one row. Without an ORCID the normalized name is
// combined with the affiliation as a weak disambiguator.
func Author(a record.Author) string {
	if a.ORCID != "" {
		return derive("A", "orcid", strings.ToUpper(strings.TrimSpace(a.ORCID)))
	}
	return derive("A", "name", Slug(a.Normalized), Slug(a.Affiliation))
}
