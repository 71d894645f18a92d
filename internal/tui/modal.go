package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Modal asks the user to confirm a destructive history action.
type Modal struct {
	title   string
	lines   []string
	confirm bool // cancel is preselected
}

// NewClearModal describes what clearing the history would remove.
func NewClearModal(removable, protected int) Modal {
	lines := []string{fmt.Sprintf("Remove %s?", plural(removable, "unprotected entry", "unprotected entries"))}
	if protected > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%s %s will be kept.", iconProtected, plural(protected, "protected entry", "protected entries"))))
	}
	return Modal{
		title: "Clear history",
		lines: lines,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// ToggleSelection switches the selected button.
func (m *Modal) ToggleSelection() {
	m.confirm = !m.confirm
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirm
}

// Render draws the modal centered in a width x height area.
func (m Modal) Render(width, height int) string {
	button := func(label string, selected bool) string {
		if selected {
			return modalButtonSelectedStyle.Render(label)
		}
		return modalButtonStyle.Render(label)
	}

	buttons := lipgloss.NewStyle().MarginTop(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, button("Clear", m.confirm), "  ", button("Cancel", !m.confirm)),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		modalTitleStyle.Render(m.title),
		"",
		strings.Join(m.lines, "\n"),
		buttons,
		modalHelpStyle.Render("←/→ select  enter apply  y clear  esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(body))
}
