package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	recommendUser    string
	recommendCompany string
	recommendRole    string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend reports for a user",
	Long: `Combine the user's recent access history with the reports they can see
and print recommendation groups ranked high, medium, then low priority.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendUser, "user", "", "User ID (required)")
	recommendCmd.Flags().StringVar(&recommendCompany, "company", "", "Company ID (required)")
	recommendCmd.Flags().StringVar(&recommendRole, "role", "", "User role; admin sees every report")
	_ = recommendCmd.MarkFlagRequired("user")
	_ = recommendCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.service(nil).RunRecommendations(env.ctx(cmd), recommendUser, recommendCompany, recommendRole)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd, res)
	}
	renderRecommendations(cmd, res, env.cfg.Output.Width)
	return nil
}

func renderRecommendations(cmd *cobra.Command, res *engine.RecommendationResult, width int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Recommended Reports"))
	fmt.Fprintln(out, output.KeyValue("Accesses", strconv.Itoa(res.Stats.TotalAccess)))
	top := res.Stats.TopCategory
	if top == "" {
		top = output.StyleMuted.Render("none")
	}
	fmt.Fprintln(out, output.KeyValue("Top category", top))
	fmt.Fprintln(out, output.KeyValue("Active this week", strconv.FormatBool(res.Stats.RecentActivity)))
	fmt.Fprintln(out)

	if len(res.Groups) == 0 {
		fmt.Fprintln(out, " No recommendations yet. Open a few reports first.")
		return
	}

	for _, g := range res.Groups {
		fmt.Fprintf(out, " %s %s\n", output.PriorityBadge(g.Priority), output.StyleBold.Render(g.Title))
		fmt.Fprintf(out, "    %s\n\n", g.Description)
		tbl := output.NewTable("ID", "Created", "Category", "Name")
		tbl.SetMaxWidth(width)
		for _, item := range g.Items {
			tbl.AddRow(item.ID, item.CreatedAt.Format(time.DateOnly), item.CategoryID, item.Name)
		}
		tbl.Fprint(out)
		fmt.Fprintln(out)
	}
}
