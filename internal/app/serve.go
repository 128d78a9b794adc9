package app

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/reportwatch/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveEnvFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the insight API over HTTP",
	Long: `Start an HTTP server exposing:

  GET /api/v1/insights/anomalies?user_id=&company_id=&start=&end=
  GET /api/v1/insights/recommendations?user_id=&company_id=&role=
  GET /api/v1/insights/findings?user_id=&company_id=&kind=&limit=

Variables from a .env file are loaded into the environment first, so
REPORTWATCH_* overrides can live next to the binary.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "Environment file to load before reading config")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(serveEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := server.Config{
		Addr:            env.cfg.Server.Addr,
		ShutdownTimeout: env.cfg.Server.ShutdownTimeout,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(env.ctx(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := env.service(nil)
	api := server.NewWebAPI(env.logger, cfg, server.NewHandler(svc, env.db))
	return api.Start(ctx)
}
