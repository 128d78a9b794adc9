package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/blackwell-systems/reportwatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	findingsUser    string
	findingsCompany string
	findingsKind    string
	findingsLimit   int
)

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "List persisted findings",
	Long:  `Show findings appended by previous detection runs, newest first.`,
	RunE:  runFindings,
}

func init() {
	findingsCmd.Flags().StringVar(&findingsUser, "user", "", "Filter by user ID")
	findingsCmd.Flags().StringVar(&findingsCompany, "company", "", "Filter by company ID")
	findingsCmd.Flags().StringVar(&findingsKind, "kind", "", "Filter by kind (sales_drop, data_inconsistency, performance_issue, low_data_volume, large_date_range)")
	findingsCmd.Flags().IntVar(&findingsLimit, "limit", 20, "Maximum number of findings to show")
	rootCmd.AddCommand(findingsCmd)
}

func runFindings(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	rows, err := env.db.ListFindings(env.ctx(cmd), store.FindingFilter{
		UserID:    findingsUser,
		CompanyID: findingsCompany,
		Kind:      findingsKind,
		Limit:     findingsLimit,
	})
	if err != nil {
		return fmt.Errorf("listing findings: %w", err)
	}

	if flagJSON {
		if rows == nil {
			rows = []store.FindingRow{}
		}
		return writeJSON(cmd, rows)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Findings"))
	fmt.Fprintln(out)
	if len(rows) == 0 {
		fmt.Fprintln(out, " No findings recorded.")
		return nil
	}
	tbl := env.table("Detected", "Severity", "Kind", "Company", "User", "Title")
	for _, r := range rows {
		tbl.AddRow(
			r.DetectedAt.Local().Format(time.DateTime),
			output.SeverityBadge(insight.Severity(r.Severity)),
			r.Kind,
			r.CompanyID,
			r.UserID,
			r.Title,
		)
	}
	tbl.Fprint(out)
	return nil
}
