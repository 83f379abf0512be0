// Package commands implements the conjugador command line.
package commands

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/conjugador/pkg/config"
	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/ingest"
	"github.com/japaniel/conjugador/pkg/scrape"
)

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "conjugador",
		Short: "Scrape Portuguese verb conjugations and export them as Anki cards",
		Long: `conjugador fetches conjugation tables from conjugacao.com.br, falling back
to cooljugator.com, stores them in SQLite and exports flashcard CSV files.

Settings come from config.yaml (or CONFIG_PATH) and the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to YAML config (overrides CONFIG_PATH)")
	root.PersistentFlags().String("db", "", "Path to SQLite database (overrides database.path)")

	root.AddCommand(
		serveCmd(),
		scrapeCmd(),
		batchCmd(),
		showCmd(),
		exportCmd(),
		jobCmd(),
		coverageCmd(),
	)
	return root
}

// app is the wiring every subcommand shares.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	manager *ingest.Manager
}

func (a *app) Close() error { return a.db.Close() }

func openApp(cmd *cobra.Command) (*app, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("CONFIG_PATH", path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.Database.Path = path
	}
	logger := config.NewLogger(cfg.Log)

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.InitDB(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database %s: %w", cfg.Database.Path, err)
	}

	resolver := scrape.NewDefaultResolver(cfg.Scrape.Primary(), cfg.Scrape.Backup(), logger)
	m := ingest.NewManager(conn, resolver, logger)
	m.Workers = cfg.Batch.Workers
	m.JitterMin = cfg.Batch.JitterMin
	m.JitterMax = cfg.Batch.JitterMax

	return &app{cfg: cfg, logger: logger, db: conn, manager: m}, nil
}
