package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/styles"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == stateConfirming {
		return m.modal.Render(m.width, m.height)
	}

	sections := []string{
		m.headerView(),
		m.paneTitle("Input", m.focus == focusEditor),
		m.editor.View(),
		m.paneTitle("Output", false),
		outputStyle.Render(m.output.View()),
		m.paneTitle(fmt.Sprintf("History (%d/%d)", m.ctrl.History().Len(), m.ctrl.History().Capacity()), m.focus == focusHistory),
		m.historyView(),
		m.statusView(),
		m.helpView(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	banner := bannerStyle.Render(strings.TrimPrefix(styles.Banner, "\n"))
	method := lipgloss.JoinHorizontal(lipgloss.Center,
		dimStyle.Render("  method "),
		methodBadge(m.ctrl.Method().String()),
	)
	return lipgloss.JoinHorizontal(lipgloss.Bottom, banner, method) + "\n"
}

func (m Model) paneTitle(title string, focused bool) string {
	if focused {
		return paneTitleFocusedStyle.Render(title)
	}
	return paneTitleStyle.Render(title)
}

func (m Model) historyView() string {
	entries := m.ctrl.History().Entries()
	if len(entries) == 0 {
		return dimStyle.Render("  No conversions yet")
	}

	width := max(m.width-24, 20)
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, m.historyRow(i, e, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) historyRow(i int, e history.Entry, width int) string {
	cursor := " "
	style := normalStyle
	if m.focus == focusHistory && i == m.cursor {
		cursor = selectedStyle.Render(iconCursor)
		style = selectedStyle
	}

	mark := " "
	if e.Protected {
		mark = protectedStyle.Render(iconProtected)
	}

	half := width / 2
	summary := fmt.Sprintf("%s %s %s",
		truncate(e.Input, half),
		dimStyle.Render("→"),
		truncate(e.Output, half),
	)

	return fmt.Sprintf("%s%2d %s %-9s %s", cursor, i+1, mark, e.Method, style.Render(summary))
}

func (m Model) statusView() string {
	var parts []string
	if m.alerts != nil && m.alerts.Visible() {
		parts = append(parts, alertStyle.Render("Conversion Successful!"))
	}

	switch {
	case m.state == stateConverting:
		parts = append(parts, infoStyle.Render("Converting..."))
	case m.err != nil:
		parts = append(parts, errorStyle.Render(errorText(m.err)))
	case m.status != "":
		parts = append(parts, infoStyle.Render(m.status))
	}

	return " " + strings.Join(parts, "  ")
}

func (m Model) helpView() string {
	if m.focus == focusHistory {
		return helpStyle.Render(m.help.View(historyHelp(m.keys)))
	}
	return helpStyle.Render(m.help.View(editorHelp(m.keys)))
}

// truncate flattens s onto one line and cuts it to n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
