package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/blackwell-systems/reportwatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	catalogID       string
	catalogName     string
	catalogCategory string
	catalogCompany  string
	catalogOwner    string
	catalogCreated  string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Add or list catalog reports",
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a report in the catalog",
	RunE:  runCatalogAdd,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every report in the catalog",
	RunE:  runCatalogList,
}

func init() {
	catalogAddCmd.Flags().StringVar(&catalogID, "id", "", "Report ID (required)")
	catalogAddCmd.Flags().StringVar(&catalogName, "name", "", "Report name (required)")
	catalogAddCmd.Flags().StringVar(&catalogCategory, "category", "", "Category ID")
	catalogAddCmd.Flags().StringVar(&catalogCompany, "company", "", "Owning company ID")
	catalogAddCmd.Flags().StringVar(&catalogOwner, "owner", "", "Owning user ID")
	catalogAddCmd.Flags().StringVar(&catalogCreated, "created", "", "Creation time, YYYY-MM-DD or RFC 3339 (default: now)")
	_ = catalogAddCmd.MarkFlagRequired("id")
	_ = catalogAddCmd.MarkFlagRequired("name")

	catalogCmd.AddCommand(catalogAddCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	if catalogCompany == "" && catalogOwner == "" {
		return errors.New("a report needs --company or --owner to be visible to anyone but admins")
	}
	created, err := parseInstant(catalogCreated)
	if err != nil {
		return fmt.Errorf("--created: %w", err)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	r := &store.Report{
		ID:         catalogID,
		Name:       catalogName,
		CategoryID: catalogCategory,
		CompanyID:  catalogCompany,
		OwnerID:    catalogOwner,
		CreatedAt:  created,
	}
	if err := env.db.InsertReport(env.ctx(cmd), r); err != nil {
		return fmt.Errorf("adding report: %w", err)
	}
	env.logger.Debug().Str("report_id", r.ID).Msg("report saved")
	fmt.Fprintf(cmd.OutOrStdout(), "Saved report %s\n", r.ID)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	reports, err := env.db.ListReports(env.ctx(cmd))
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if flagJSON {
		if reports == nil {
			reports = []store.Report{}
		}
		return writeJSON(cmd, reports)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Catalog"))
	fmt.Fprintln(out)
	tbl := env.table("ID", "Category", "Company", "Owner", "Created", "Name")
	for _, r := range reports {
		tbl.AddRow(r.ID, r.CategoryID, r.CompanyID, r.OwnerID, r.CreatedAt.Format(time.DateOnly), r.Name)
	}
	tbl.Fprint(out)
	return nil
}

// parseInstant parses an optional timestamp. Empty yields the zero time,
// which the store replaces with the current time.
func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want YYYY-MM-DD or RFC 3339)", s)
}
