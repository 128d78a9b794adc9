package app

import (
	"github.com/blackwell-systems/reportwatch/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the insight tools over MCP stdio",
	Long: `Start a Model Context Protocol stdio server exposing three tools:

  run_anomaly_detection  Findings and severity summary for a user and period
  run_recommendations    Ranked report recommendations for a user
  list_findings          Persisted findings, newest first

Add to an MCP client configuration:
  {"mcpServers":{"reportwatch":{"command":"reportwatch","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	srv := mcp.NewServer(env.service(nil), env.db)
	return srv.Run(env.ctx(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
}
