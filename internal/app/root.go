// Package app contains the Cobra command tree for reportwatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "reportwatch",
	Short: "Anomaly detection and report recommendations for dashboard data",
	Long: `reportwatch inspects a company's dashboard data for anomalies and
recommends reports to users based on what they open.

Data lives in a local SQLite database. Load it with 'catalog add', 'access',
and 'import', then run 'detect' or 'recommend', or expose both over HTTP
with 'serve' and over MCP with 'mcp'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "reportwatch", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  detect     Run anomaly detection for a user and period")
		fmt.Fprintln(out, "  recommend  Recommend reports for a user")
		fmt.Fprintln(out, "  findings   List persisted findings")
		fmt.Fprintln(out, "  catalog    Add or list catalog reports")
		fmt.Fprintln(out, "  access     Record that a user opened a report")
		fmt.Fprintln(out, "  import     Load a dashboard payload for a company and day")
		fmt.Fprintln(out, "  watch      Re-run detection periodically and alert on changes")
		fmt.Fprintln(out, "  serve      Serve the insight API over HTTP")
		fmt.Fprintln(out, "  mcp        Serve the insight tools over MCP stdio")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/reportwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}
