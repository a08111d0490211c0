package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/sheet"
)

// validateStoreConfig checks the configuration a --store flag value needs.
// Called before any parsing so a missing credential fails fast.
func validateStoreConfig(cfg *config.Config, spec string) error {
	if spec == "" || spec == "sheets" {
		return cfg.ValidateForSheets()
	}
	return nil
}

// openStore resolves a --store flag value into a backend. Accepted forms:
// "sheets" (Google Sheets, the default) and "sqlite:path/to/file.db".
func openStore(ctx context.Context, cfg *config.Config, spec string) (sheet.Store, error) {
	switch {
	case spec == "" || spec == "sheets":
		if err := cfg.ValidateForSheets(); err != nil {
			return nil, err
		}
		return sheet.NewSheetsStore(ctx, cfg.SpreadsheetID, cfg.CredentialsPath)
	case strings.HasPrefix(spec, "sqlite:"):
		path := strings.TrimPrefix(spec, "sqlite:")
		if path == "" {
			return nil, fmt.Errorf("sqlite store needs a path, e.g. sqlite:refs.db")
		}
		return sheet.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store %q (want sheets or sqlite:path)", spec)
	}
}

// parseTables turns a comma-separated --tables value into the per-table
// enable map. Empty means all tables.
func parseTables(spec string) (map[string]bool, error) {
	if spec == "" {
		return nil, nil
	}
	enabled := make(map[string]bool)
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		t, ok := sheet.TableByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown table %q", name)
		}
		enabled[t.Name] = true
	}
	return enabled, nil
}
