package output

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
)

// SeverityBadge renders a severity with its impact color.
func SeverityBadge(s insight.Severity) string {
	label := strings.ToUpper(string(s))
	switch s {
	case insight.SeverityHigh:
		return StyleError.Render(label)
	case insight.SeverityMedium:
		return StyleWarning.Render(label)
	default:
		return StyleMuted.Render(label)
	}
}

// PriorityBadge renders a recommendation group priority.
func PriorityBadge(p recommend.Priority) string {
	label := "[" + string(p) + "]"
	switch p {
	case recommend.PriorityHigh:
		return StyleHeader.Render(label)
	case recommend.PriorityMedium:
		return StyleBold.Render(label)
	default:
		return StyleMuted.Render(label)
	}
}

// SummaryLine renders severity counts, e.g. "3 findings: 1 high, 2 medium, 0 low".
func SummaryLine(s insight.Summary) string {
	if s.Total == 0 {
		return StyleSuccess.Render("No anomalies detected")
	}
	noun := "findings"
	if s.Total == 1 {
		noun = "finding"
	}
	return fmt.Sprintf("%s: %s, %s, %s",
		StyleBold.Render(fmt.Sprintf("%d %s", s.Total, noun)),
		StyleError.Render(fmt.Sprintf("%d high", s.High)),
		StyleWarning.Render(fmt.Sprintf("%d medium", s.Medium)),
		StyleMuted.Render(fmt.Sprintf("%d low", s.Low)),
	)
}

// KeyValue renders an aligned label and value.
func KeyValue(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
