package display

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// BannerStyle is the muted red used for the simulator banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#fca5a5")).
	Bold(true)

const bannerText = "valplayer · simulator"

// Banner returns the banner horizontally centred for the current terminal
// width.
func Banner() string {
	return strings.Repeat(" ", bannerPad(termWidth())) + BannerStyle.Render(bannerText)
}

// bannerPad is the left padding that centres the banner in width cells.
func bannerPad(width int) int {
	text := lipgloss.Width(bannerText)
	if width <= text {
		return 0
	}
	return (width - text) / 2
}

// IsTerminal reports whether stdout is an interactive terminal. The
// simulator needs one.
func IsTerminal() bool {
	return term.IsTerminal(os.Stdout.Fd())
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
