// Package bib reads BibTeX sources into normalized entries.
//
// Parsing is delegated to github.com/nickng/bibtex. Malformed entries are
// isolated: one bad entry yields a ParseError and the remaining entries are
// still returned.
package bib

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/rcaap/bibsheet/internal/normalize"
	"github.com/rcaap/bibsheet/internal/record"
)

// ParseError reports one malformed entry that was skipped.
type ParseError struct {
	Index int // Zero-based position of the entry in the source
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index+1, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result is the outcome of parsing one BibTeX source.
type Result struct {
	Entries  []record.Entry
	Warnings []normalize.Warning // Non-fatal normalization problems
	Errors   []*ParseError       // Skipped entries
}

// ParseFile parses a .bib file.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses BibTeX text from r.
//
// The whole source is parsed in one shot first, which keeps @string
// abbreviations working. If that fails, the source is split into entry
// chunks and each chunk is parsed alone, so a single malformed entry cannot
// take down the batch.
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	res := &Result{}

	if db, err := bibtex.Parse(strings.NewReader(string(data))); err == nil {
		for _, e := range db.Entries {
			res.add(e)
		}
		return res, nil
	}

	for i, chunk := range splitEntries(string(data)) {
		db, err := bibtex.Parse(strings.NewReader(chunk))
		if err != nil {
			res.Errors = append(res.Errors, &ParseError{Index: i, Err: err})
			continue
		}
		for _, e := range db.Entries {
			res.add(e)
		}
	}
	return res, nil
}

// add normalizes one parsed entry into the result.
func (res *Result) add(e *bibtex.BibEntry) {
	fields := make(map[string]string, len(e.Fields))
	for name, value := range e.Fields {
		fields[strings.ToLower(name)] = value.String()
	}
	entry, warnings := normalize.Entry(e.Type, e.CiteName, fields)
	res.Entries = append(res.Entries, entry)
	res.Warnings = append(res.Warnings, warnings...)
}

// splitEntries cuts BibTeX text into one chunk per @-entry, tracking brace
// depth so an @ inside a field value does not start a new chunk.
func splitEntries(src string) []string {
	var (
		chunks []string
		start  = -1
		depth  int
	)
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '@':
			if depth == 0 {
				if start >= 0 {
					if c := strings.TrimSpace(src[start:i]); c != "" {
						chunks = append(chunks, c)
					}
				}
				start = i
			}
		case '{':
			if start >= 0 {
				depth++
			}
		case '}':
			if start >= 0 && depth > 0 {
				depth--
				if depth == 0 {
					chunks = append(chunks, strings.TrimSpace(src[start:i+1]))
					start = -1
				}
			}
		}
	}
	if start >= 0 {
		if c := strings.TrimSpace(src[start:]); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
