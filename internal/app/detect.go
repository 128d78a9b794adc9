package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	detectUser    string
	detectCompany string
	detectStart   string
	detectEnd     string
	detectPayload string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run anomaly detection for a user and period",
	Long: `Evaluate every anomaly detector against a company's dashboard data for
a period and print the findings with a severity summary. Findings are also
appended to the findings log.

Dashboard data is read from the database unless --payload names a JSON file
holding a raw dashboard payload.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectUser, "user", "", "User ID (required)")
	detectCmd.Flags().StringVar(&detectCompany, "company", "", "Company ID (required)")
	detectCmd.Flags().StringVar(&detectStart, "start", "", "Period start, YYYY-MM-DD or RFC 3339 (default: 7 days before end)")
	detectCmd.Flags().StringVar(&detectEnd, "end", "", "Period end, YYYY-MM-DD or RFC 3339 (default: now)")
	detectCmd.Flags().StringVar(&detectPayload, "payload", "", "Read the dashboard payload from a JSON file instead of the database")
	_ = detectCmd.MarkFlagRequired("user")
	_ = detectCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	start, end, err := engine.ParsePeriod(detectStart, detectEnd, time.Now())
	if err != nil {
		return err
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var src engine.SnapshotSource
	if detectPayload != "" {
		src = payloadFile(detectPayload)
	}
	res, err := env.service(src).RunAnomalyDetection(env.ctx(cmd), detectUser, detectCompany, start, end)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd, res)
	}
	renderFindings(cmd, res, start, end)
	return nil
}

// payloadFile is a snapshot source backed by a JSON file.
type payloadFile string

func (p payloadFile) FetchPayload(_ context.Context, _, _ string, _, _ time.Time) (insight.Payload, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var raw insight.Payload
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", string(p), err)
	}
	return raw, nil
}

func renderFindings(cmd *cobra.Command, res *engine.DetectionResult, start, end time.Time) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Anomalies"))
	fmt.Fprintln(out, output.KeyValue("Period", fmt.Sprintf("%s to %s (%d days)",
		start.Format(time.DateOnly), end.Format(time.DateOnly),
		insight.RangeDays(&insight.Snapshot{PeriodStart: start, PeriodEnd: end}))))
	fmt.Fprintln(out, output.KeyValue("Run", output.StyleMuted.Render(res.RunID)))
	fmt.Fprintln(out, " "+output.SummaryLine(res.Summary))
	fmt.Fprintln(out)

	for i, f := range res.Findings {
		fmt.Fprintf(out, " #%d %s %s\n", i+1, output.SeverityBadge(f.Severity), output.StyleBold.Render(f.Title))
		fmt.Fprintf(out, "    %s  |  %s\n", f.Kind, f.ImpactLabel)
		fmt.Fprintf(out, "    %s\n", f.Description)
		fmt.Fprintf(out, "    %s %s\n", output.StyleMuted.Render("Next:"), f.Recommendation)
		fmt.Fprintln(out)
	}
}
