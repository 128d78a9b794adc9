package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const appName = "reportwatch"

// Notify sends a desktop notification for the given alert. The alert level
// decides the urgency on Linux and the subtitle tag on macOS. When no
// notifier is available, or it fails, the alert is printed to stderr.
func Notify(alert Alert) error {
	name, args, ok := notifyCommand(runtime.GOOS, alert)
	if !ok {
		return notifyFallback(os.Stderr, alert)
	}
	if _, err := exec.LookPath(name); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	if err := exec.Command(name, args...).Run(); err != nil {
		return notifyFallback(os.Stderr, alert)
	}
	return nil
}

// notifyCommand builds the notifier invocation for goos. It reports false
// when the platform has no supported notifier.
func notifyCommand(goos string, alert Alert) (string, []string, bool) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(
			`display notification %q with title %q subtitle %q`,
			alert.Message, appName, levelTag(alert.Level)+" "+alert.Title,
		)
		if alert.Level == "critical" {
			script += ` sound name "Basso"`
		}
		return "osascript", []string{"-e", script}, true
	case "linux":
		return "notify-send", []string{
			"-u", urgency(alert.Level),
			"-a", appName,
			"-c", "reportwatch.anomaly",
			appName + ": " + alert.Title,
			alert.Message,
		}, true
	default:
		return "", nil, false
	}
}

// urgency maps an alert level onto a notify-send urgency.
func urgency(level string) string {
	switch level {
	case "critical":
		return "critical"
	case "warning":
		return "normal"
	default:
		return "low"
	}
}

// levelTag renders the level as a bracketed tag, defaulting to INFO.
func levelTag(level string) string {
	if level == "" {
		level = "info"
	}
	return "[" + strings.ToUpper(level) + "]"
}

func notifyFallback(w io.Writer, alert Alert) error {
	_, err := fmt.Fprintf(w, "%s %s: %s\n", levelTag(alert.Level), alert.Title, alert.Message)
	return err
}
