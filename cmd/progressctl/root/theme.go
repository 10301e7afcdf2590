package root

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cPrimary = lipgloss.Color("63")
	cGood    = lipgloss.Color("42")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	h2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	muted = lipgloss.NewStyle().Foreground(cMuted)
)

func labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", key.Render(label+":"), value)
}

// bar draws a ten-cell percentage bar.
func bar(percent int) string {
	filled := min(max(percent, 0), 100) / 10
	return good.Render(strings.Repeat("█", filled)) + muted.Render(strings.Repeat("░", 10-filled)) + fmt.Sprintf(" %3d%%", percent)
}
