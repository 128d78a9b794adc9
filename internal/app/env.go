package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackwell-systems/reportwatch/internal/config"
	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
	"github.com/blackwell-systems/reportwatch/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// appEnv holds what every command needs: config, logger, and the store.
type appEnv struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *store.DB
	svc    *engine.Service
}

// loadEnv loads config, applies output settings, and opens the database.
func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color || !output.ColorSupported(os.Stdout) {
		output.SetNoColor(true)
	}
	logger := newLogger(cfg.Log, flagVerbose, cmd.ErrOrStderr())

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug().Str("db", cfg.DBPath).Msg("database opened")

	return &appEnv{cfg: cfg, logger: logger, db: db}, nil
}

// ctx returns the command context carrying the process logger.
func (e *appEnv) ctx(cmd *cobra.Command) context.Context {
	return e.logger.WithContext(cmd.Context())
}

// service builds the engine service. A nil snapshot source reads dashboard
// data from the database.
func (e *appEnv) service(snapshots engine.SnapshotSource) *engine.Service {
	if snapshots == nil {
		snapshots = e.db
	}
	aggregator := insight.NewAggregator(insight.NewBuiltinRegistry(e.cfg.InsightThresholds()))
	recommender := recommend.NewEngine(e.cfg.RecommendOptions())
	e.svc = engine.NewService(engine.Dependencies{
		Snapshots: snapshots,
		History:   e.db,
		Catalog:   e.db,
		Findings:  e.db,
	}, aggregator, recommender, e.cfg.EngineOptions())
	return e.svc
}

// Close drains pending findings writes and closes the database.
func (e *appEnv) Close() {
	if e.svc != nil {
		e.logger.Info().Msg("waiting for pending findings writes")
		e.svc.Wait()
	}
	if err := e.db.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("closing database")
	}
}

// table creates an output table capped at the configured width.
func (e *appEnv) table(headers ...string) *output.Table {
	tbl := output.NewTable(headers...)
	tbl.SetMaxWidth(e.cfg.Output.Width)
	return tbl
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
