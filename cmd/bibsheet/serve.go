package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rcaap/bibsheet/internal/config"
	"github.com/rcaap/bibsheet/internal/sheet"
	"github.com/rcaap/bibsheet/internal/web"
)

var (
	serveAddr  string
	serveStore string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveStore, "store", "sheets", "Target store: sheets or sqlite:path")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Run a local web interface for uploading .bib files, previewing the
derived rows and pending changes, and applying syncs from the browser.

Basic authentication is enabled when web.username and web.password_hash
are set in the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if serveAddr != "" {
		cfg.Web.Addr = serveAddr
	}
	if err := validateStoreConfig(cfg, serveStore); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	storeFn := func(ctx context.Context) (sheet.Store, error) {
		return openStore(ctx, cfg, serveStore)
	}
	srv := web.NewServer(cfg, storeFn, newMetadataClient(cfg), log)
	if err := srv.Serve(cmd.Context()); err != nil {
		exitWithError(ExitError, "serve: %v", err)
	}
	return nil
}
