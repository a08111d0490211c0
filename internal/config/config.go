// Package config loads bibsheet configuration from the global config file
// and the environment, and validates it before any parsing begins.
//
// Precedence, lowest to highest: defaults, ~/.config/bibsheet/config.yml,
// environment variables (a .env file in the working directory is loaded
// into the environment first). The result is an explicit Config value
// passed into the syncer and transport constructors; nothing reads ambient
// state afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration errors, surfaced at startup before any parsing.
var (
	ErrMissingSpreadsheetID = errors.New("spreadsheet id not configured (set SPREADSHEET_ID or spreadsheet_id in the config file)")
	ErrMissingCredentials   = errors.New("credentials file not configured (set CREDENTIALS_PATH or credentials_path in the config file)")
)

// WebConfig configures the web front-end.
type WebConfig struct {
	Addr         string `yaml:"addr,omitempty"`
	Username     string `yaml:"username,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"` // bcrypt hash; empty disables auth
}

// Config holds everything the CLI and web shell need to run a sync.
type Config struct {
	SpreadsheetID   string          `yaml:"spreadsheet_id,omitempty"`
	CredentialsPath string          `yaml:"credentials_path,omitempty"`
	Mailto          string          `yaml:"mailto,omitempty"` // Contact address for metadata APIs
	Tables          map[string]bool `yaml:"tables,omitempty"` // Per-table write-enable; nil enables all
	Web             WebConfig       `yaml:"web,omitempty"`
}

const (
	configDir  = "bibsheet"
	configFile = "config.yml"

	// DefaultWebAddr is the address the web front-end binds when
	// unconfigured.
	DefaultWebAddr = "localhost:8372"
)

// Path returns the global config file path. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/bibsheet/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDir, configFile)
}

// Load builds the effective configuration. A missing global config file is
// not an error; a malformed one is.
func Load() (*Config, error) {
	// .env in the working directory, if present, feeds the environment.
	_ = godotenv.Load()

	cfg := &Config{Web: WebConfig{Addr: DefaultWebAddr}}

	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("CREDENTIALS_PATH"); v != "" {
		cfg.CredentialsPath = v
	}
	if v := os.Getenv("BIBSHEET_MAILTO"); v != "" {
		cfg.Mailto = v
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = DefaultWebAddr
	}
	return cfg, nil
}

// ValidateForSheets checks the fields the Google Sheets transport needs.
// Called before any parsing so a missing credential fails fast.
func (c *Config) ValidateForSheets() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	if c.CredentialsPath == "" {
		return ErrMissingCredentials
	}
	if _, err := os.Stat(c.CredentialsPath); err != nil {
		return fmt.Errorf("credentials file %s: %w", c.CredentialsPath, err)
	}
	return nil
}

// Save writes the configuration to the global config file, creating the
// directory if needed.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return errors.New("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
