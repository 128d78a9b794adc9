package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/output"
	"github.com/blackwell-systems/reportwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchUser     string
	watchCompany  string
	watchWindow   int
	watchInterval time.Duration
	watchNotify   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run detection periodically and alert on changes",
	Long: `Run anomaly detection for a user and company over a rolling window,
then again at every interval. Alerts are printed when a finding appears,
rises in severity, or clears. With --notify, alerts are also sent as
desktop notifications.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchUser, "user", "", "User ID (required)")
	watchCmd.Flags().StringVar(&watchCompany, "company", "", "Company ID (required)")
	watchCmd.Flags().IntVar(&watchWindow, "window", 7, "Days of data each check covers")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute, "Time between checks")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Send desktop notifications")
	_ = watchCmd.MarkFlagRequired("user")
	_ = watchCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchWindow <= 0 {
		return fmt.Errorf("--window must be positive, got %d", watchWindow)
	}
	if watchInterval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", watchInterval)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(env.ctx(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	target := watcher.Target{
		UserID:    watchUser,
		CompanyID: watchCompany,
		Window:    time.Duration(watchWindow) * 24 * time.Hour,
	}
	w := watcher.New(env.service(nil), target, watchInterval, func(a watcher.Alert) {
		fmt.Fprintf(out, "%s %s %s\n    %s\n",
			output.StyleMuted.Render(a.Time.Local().Format(time.TimeOnly)),
			alertBadge(a.Level), output.StyleBold.Render(a.Title), a.Message)
		if watchNotify {
			if err := watcher.Notify(a); err != nil {
				env.logger.Warn().Err(err).Msg("desktop notification failed")
			}
		}
	})

	fmt.Fprintf(out, "Watching %s/%s every %s (Ctrl+C to stop)\n", watchCompany, watchUser, watchInterval)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func alertBadge(level string) string {
	label := "[" + level + "]"
	switch level {
	case "critical":
		return output.StyleError.Render(label)
	case "warning":
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
