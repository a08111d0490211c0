package main

import (
	"errors"
	"testing"

	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/sheet"
)

func TestValidateStoreConfig(t *testing.T) {
	empty := &config.Config{}

	// The sheets backend needs credentials and must fail before any
	// BibTeX parsing starts.
	for _, spec := range []string{"", "sheets"} {
		if err := validateStoreConfig(empty, spec); !errors.Is(err, config.ErrMissingSpreadsheetID) {
			t.Errorf("validateStoreConfig(empty, %q) = %v, want ErrMissingSpreadsheetID", spec, err)
		}
	}

	// A local store needs no sheets configuration.
	if err := validateStoreConfig(empty, "sqlite:refs.db"); err != nil {
		t.Errorf("validateStoreConfig(empty, sqlite) = %v, want nil", err)
	}
}

func TestParseTables(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty means all", "", nil, false},
		{"single", "Title", []string{"Title"}, false},
		{"usage example", "Title,Authors", []string{"Title", "Authors"}, false},
		{"case insensitive", "title, author-title", []string{"Title", "Author-Title"}, false},
		{"unknown table", "Titles", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTables(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTables(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("parseTables(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseTables(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for _, name := range tt.want {
				if !got[name] {
					t.Errorf("parseTables(%q) missing %q", tt.input, name)
				}
				if _, ok := sheet.TableByName(name); !ok {
					t.Errorf("expected table %q is not defined", name)
				}
			}
		})
	}
}
