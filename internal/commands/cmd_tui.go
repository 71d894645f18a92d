package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/jsob/internal/core/alert"
	"github.com/hay-kot/jsob/internal/tui"
)

// TuiCmd runs the interactive editor. It is the root command's default action
// rather than a named subcommand.
type TuiCmd struct {
	flags *Flags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Run starts the program and blocks until the user quits.
func (cmd *TuiCmd) Run(_ context.Context, _ *cli.Command) error {
	p := tea.NewProgram(
		tui.New(cmd.flags.Controller, cmd.flags.Alerts),
		tea.WithAltScreen(),
	)

	// The notice hides itself on a timer, outside any key press, so the
	// program has to be told to redraw.
	cmd.flags.Alerts.OnChange(func(s alert.State) {
		p.Send(tui.AlertChangedMsg{State: s})
	})
	defer cmd.flags.Alerts.OnChange(nil)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
