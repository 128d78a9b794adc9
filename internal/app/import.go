package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/spf13/cobra"
)

var (
	importCompany string
	importDay     string
)

var importCmd = &cobra.Command{
	Use:   "import <payload.json>",
	Short: "Load a dashboard payload for a company and day",
	Long: `Read a raw dashboard payload (KPIs and grid rows) from a JSON file and
store it as the company's dashboard data for one day. 'detect' reads these
rows back for any period covering that day.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCompany, "company", "", "Company ID (required)")
	importCmd.Flags().StringVar(&importDay, "day", "", "Day the data belongs to, YYYY-MM-DD (default: today)")
	_ = importCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	day := time.Now().UTC()
	if importDay != "" {
		t, err := time.Parse(time.DateOnly, importDay)
		if err != nil {
			return fmt.Errorf("--day: %w", err)
		}
		day = t
	}

	raw, err := payloadFile(args[0]).FetchPayload(context.Background(), "", importCompany, day, day)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	snap := insight.Normalize(raw, day, day)

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := env.ctx(cmd)

	names := make([]string, 0, len(snap.KPIValues))
	for name := range snap.KPIValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := env.db.InsertKPIValue(ctx, importCompany, name, snap.KPIValues[name], day); err != nil {
			return fmt.Errorf("storing kpi %s: %w", name, err)
		}
	}
	for i, row := range snap.GridRows {
		if err := env.db.InsertGridRow(ctx, importCompany, day, row); err != nil {
			return fmt.Errorf("storing grid row %d: %w", i, err)
		}
	}

	env.logger.Info().
		Str("company_id", importCompany).
		Str("day", day.Format(time.DateOnly)).
		Int("kpis", len(names)).
		Int("rows", len(snap.GridRows)).
		Msg("dashboard payload imported")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d KPIs and %d rows for %s on %s\n",
		len(names), len(snap.GridRows), importCompany, day.Format(time.DateOnly))
	return nil
}
