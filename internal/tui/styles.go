// Package tui implements the Bubble Tea TUI for jsob.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/jsob/internal/styles"
)

// Styles used for rendering the TUI.
var (
	bannerStyle = styles.BannerStyle.
			PaddingLeft(1)

	// Pane title, brighter when the pane has focus.
	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	paneTitleFocusedStyle = paneTitleStyle.
				Foreground(styles.ColorBlue)

	// Bordered box around the output.
	outputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorGray).
			Foreground(styles.ColorWhite).
			Padding(0, 1)

	// Method badges.
	minifyBadgeStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(styles.ColorBackground).
				Background(styles.ColorGreen).
				Bold(true)

	obfuscateBadgeStyle = minifyBadgeStyle.
				Background(styles.ColorPurple)

	// History rows.
	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	normalStyle = lipgloss.NewStyle()

	dimStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	protectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	// Success notice shown while the alert is visible.
	alertStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBackground).
			Background(styles.ColorGreen).
			Bold(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("#3b4261")).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(styles.ColorBackground).
					Bold(true)
)

// Icons and symbols.
const (
	iconProtected = "●"
	iconCursor    = "▌"
	iconDot       = "•"
)

func methodBadge(method string) string {
	if method == "minify" {
		return minifyBadgeStyle.Render(method)
	}
	return obfuscateBadgeStyle.Render(method)
}
