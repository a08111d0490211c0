package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, configDir, configFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPREADSHEET_ID", "")
	t.Setenv("CREDENTIALS_PATH", "")
	t.Setenv("BIBSHEET_MAILTO", "")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Web.Addr != DefaultWebAddr {
		t.Errorf("Web.Addr = %q", cfg.Web.Addr)
	}
	if cfg.SpreadsheetID != "" {
		t.Errorf("SpreadsheetID = %q, want empty", cfg.SpreadsheetID)
	}
}

func TestLoadConfigFile(t *testing.T) {
	writeConfig(t, `
spreadsheet_id: sheet-from-file
credentials_path: /tmp/creds.json
mailto: someone@example.org
tables:
  Title: true
web:
  addr: localhost:9000
  username: admin
`)
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SpreadsheetID != "sheet-from-file" {
		t.Errorf("SpreadsheetID = %q", cfg.SpreadsheetID)
	}
	if cfg.Mailto != "someone@example.org" {
		t.Errorf("Mailto = %q", cfg.Mailto)
	}
	if !cfg.Tables["Title"] {
		t.Errorf("Tables = %v", cfg.Tables)
	}
	if cfg.Web.Addr != "localhost:9000" || cfg.Web.Username != "admin" {
		t.Errorf("Web = %+v", cfg.Web)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	writeConfig(t, "spreadsheet_id: from-file\n")
	clearEnv(t)
	t.Setenv("SPREADSHEET_ID", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SpreadsheetID != "from-env" {
		t.Errorf("SpreadsheetID = %q, want env to win", cfg.SpreadsheetID)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	writeConfig(t, "spreadsheet_id: [unclosed\n")
	if _, err := Load(); err == nil {
		t.Error("malformed config file must error")
	}
}

func TestValidateForSheets(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateForSheets(); !errors.Is(err, ErrMissingSpreadsheetID) {
		t.Errorf("err = %v, want ErrMissingSpreadsheetID", err)
	}

	cfg.SpreadsheetID = "sheet"
	if err := cfg.ValidateForSheets(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("err = %v, want ErrMissingCredentials", err)
	}

	cfg.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")
	if err := cfg.ValidateForSheets(); err == nil {
		t.Error("missing credentials file must error")
	}

	creds := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(creds, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.CredentialsPath = creds
	if err := cfg.ValidateForSheets(); err != nil {
		t.Errorf("ValidateForSheets() error = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	clearEnv(t)

	cfg := &Config{SpreadsheetID: "saved-sheet", Web: WebConfig{Addr: "localhost:7000"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.SpreadsheetID != "saved-sheet" || loaded.Web.Addr != "localhost:7000" {
		t.Errorf("loaded = %+v", loaded)
	}
}
