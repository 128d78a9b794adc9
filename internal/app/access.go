package app

import (
	"fmt"

	"github.com/blackwell-systems/reportwatch/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	accessUser     string
	accessReport   string
	accessCategory string
	accessAt       string
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Record that a user opened a report",
	Long: `Append one event to the access log. The category is taken from the
catalog when --category is omitted.`,
	RunE: runAccess,
}

func init() {
	accessCmd.Flags().StringVar(&accessUser, "user", "", "User ID (required)")
	accessCmd.Flags().StringVar(&accessReport, "report", "", "Report ID (required)")
	accessCmd.Flags().StringVar(&accessCategory, "category", "", "Category ID (default: from the catalog)")
	accessCmd.Flags().StringVar(&accessAt, "at", "", "Access time, YYYY-MM-DD or RFC 3339 (default: now)")
	_ = accessCmd.MarkFlagRequired("user")
	_ = accessCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(accessCmd)
}

func runAccess(cmd *cobra.Command, args []string) error {
	at, err := parseInstant(accessAt)
	if err != nil {
		return fmt.Errorf("--at: %w", err)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ev := recommend.AccessEvent{
		UserID:     accessUser,
		ReportID:   accessReport,
		CategoryID: accessCategory,
		OccurredAt: at,
	}
	if err := env.db.RecordAccess(env.ctx(cmd), ev); err != nil {
		return fmt.Errorf("recording access: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded access to %s by %s\n", accessReport, accessUser)
	return nil
}
