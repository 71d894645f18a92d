package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/jsob/internal/core/alert"
	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/transform"
	"github.com/hay-kot/jsob/internal/jsob"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateConverting
	stateMutating
	stateConfirming
)

// Focus identifies the pane receiving keys.
type Focus int

const (
	focusEditor Focus = iota
	focusHistory
)

// Layout constants.
const (
	bannerHeight  = 4 // banner plus padding
	editorMinRows = 3
	outputRows    = 4
	chromeRows    = 6 // pane titles, status line, help
)

// Notifier is the success notice the TUI renders.
type Notifier interface {
	Visible() bool
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctrl   *jsob.Controller
	alerts Notifier
	keys   KeyMap

	editor textarea.Model
	output viewport.Model
	help   help.Model

	state  UIState
	focus  Focus
	cursor int
	modal  Modal

	status string // informational notice, cleared on the next key
	err    error  // last failure, cleared on the next key

	width    int
	height   int
	quitting bool
}

// convertDoneMsg is sent when a conversion finishes.
type convertDoneMsg struct {
	err error
}

// historyUpdatedMsg is sent when a history mutation finishes.
type historyUpdatedMsg struct {
	status string
	err    error
}

// AlertChangedMsg is sent when the success notice appears or hides.
type AlertChangedMsg struct {
	State alert.State
}

// New creates a new TUI model.
func New(ctrl *jsob.Controller, alerts Notifier) Model {
	editor := textarea.New()
	editor.Placeholder = "Paste JavaScript here..."
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.SetValue(ctrl.Input())
	editor.Focus()

	h := help.New()
	h.Styles.ShortKey = dimStyle
	h.Styles.ShortDesc = dimStyle
	h.Styles.ShortSeparator = dimStyle
	h.ShortSeparator = " " + iconDot + " "

	m := Model{
		ctrl:   ctrl,
		alerts: alerts,
		keys:   DefaultKeyMap(),
		editor: editor,
		output: viewport.New(0, outputRows),
		help:   h,
		state:  stateNormal,
		focus:  focusEditor,
	}
	m.refreshOutput()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// convert returns a command that runs the current input through the controller.
func (m Model) convert() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return convertDoneMsg{err: ctrl.Run(context.Background())}
	}
}

// busy reports whether a conversion or history mutation is in flight. History
// indexes are captured when a key is pressed, so no second change may start
// until the first one reports back.
func (m Model) busy() bool {
	return m.state == stateConverting || m.state == stateMutating
}

// mutateHistory returns a command that applies fn to the history.
func (m Model) mutateHistory(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn(context.Background())
		return historyUpdatedMsg{status: status, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case convertDoneMsg:
		if m.state == stateConverting {
			m.state = stateNormal
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cursor = 0
		m.refreshOutput()
		return m, nil

	case historyUpdatedMsg:
		if m.state == stateMutating {
			m.state = stateNormal
		}
		m.err = msg.err
		m.status = msg.status
		m.clampCursor()
		return m, nil

	case AlertChangedMsg:
		// Visibility is read from the scheduler at render time.
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusEditor {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state == stateConfirming {
		return m.handleConfirmModalKey(msg)
	}

	if m.busy() {
		return m.handleBusyKey(msg)
	}

	m.status = ""
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Convert):
		m.ctrl.SetInput(m.editor.Value())
		m.state = stateConverting
		return m, m.convert()

	case key.Matches(msg, m.keys.SwitchMethod):
		_ = m.ctrl.SelectMethod(m.ctrl.Method().Next())
		return m, nil

	case key.Matches(msg, m.keys.ClearEditor):
		m.ctrl.ClearInputOutput()
		m.editor.Reset()
		m.refreshOutput()
		return m, nil

	case key.Matches(msg, m.keys.SwitchFocus):
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.ctrl.SetInput(m.editor.Value())
	return m, cmd
}

// handleBusyKey allows only navigation while work is in flight.
func (m Model) handleBusyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.SwitchFocus) {
		m.toggleFocus()
		return m, nil
	}
	if m.focus != focusHistory {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.QuitPane):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.BackToEdit):
		m.toggleFocus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.ctrl.History().Len()-1 {
			m.cursor++
		}
	}
	return m, nil
}

// handleHistoryKey handles keys while the history pane has focus.
func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.ctrl.History().Len()

	switch {
	case key.Matches(msg, m.keys.QuitPane):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.BackToEdit):
		m.toggleFocus()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < n-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Protect):
		if n == 0 {
			return m, nil
		}
		i := m.cursor
		m.state = stateMutating
		return m, m.mutateHistory(func(ctx context.Context) (string, error) {
			protected, err := m.ctrl.ToggleProtect(ctx, i)
			if err != nil {
				return "", err
			}
			if protected {
				return fmt.Sprintf("Entry %d protected", i+1), nil
			}
			return fmt.Sprintf("Entry %d unprotected", i+1), nil
		})

	case key.Matches(msg, m.keys.Remove):
		if n == 0 {
			return m, nil
		}
		i := m.cursor
		m.state = stateMutating
		return m, m.mutateHistory(func(ctx context.Context) (string, error) {
			res, err := m.ctrl.ClearHistoryEntry(ctx, i)
			if err != nil {
				return "", err
			}
			if res == history.Rejected {
				return fmt.Sprintf("Entry %d is protected", i+1), nil
			}
			return fmt.Sprintf("Entry %d removed", i+1), nil
		})

	case key.Matches(msg, m.keys.ClearAll):
		if n == 0 {
			return m, nil
		}
		protected := 0
		for _, e := range m.ctrl.History().Entries() {
			if e.Protected {
				protected++
			}
		}
		if protected == n {
			m.status = "Every entry is protected; nothing to clear"
			return m, nil
		}
		m.modal = NewClearModal(n-protected, protected)
		m.state = stateConfirming

	case key.Matches(msg, m.keys.Restore):
		e, err := m.ctrl.History().Entry(m.cursor)
		if err != nil {
			return m, nil
		}
		m.editor.SetValue(e.Input)
		m.ctrl.SetInput(e.Input)
		_ = m.ctrl.SelectMethod(e.Method)
		m.toggleFocus()
	}

	return m, nil
}

// handleConfirmModalKey handles keys while the confirmation modal is shown.
func (m Model) handleConfirmModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
		return m, nil
	case "esc", "n":
		m.state = stateNormal
		return m, nil
	case "y":
		m.state = stateMutating
		return m, m.clearAll()
	case "enter":
		if !m.modal.ConfirmSelected() {
			m.state = stateNormal
			return m, nil
		}
		m.state = stateMutating
		return m, m.clearAll()
	}
	return m, nil
}

func (m Model) clearAll() tea.Cmd {
	return m.mutateHistory(func(ctx context.Context) (string, error) {
		removed, err := m.ctrl.ClearAllHistory(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed %d entries", removed), nil
	})
}

func (m *Model) toggleFocus() {
	if m.focus == focusEditor {
		m.focus = focusHistory
		m.editor.Blur()
		m.clampCursor()
		return
	}
	m.focus = focusEditor
	m.editor.Focus()
}

func (m *Model) clampCursor() {
	n := m.ctrl.History().Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) resize() {
	w := max(m.width-2, 10)

	historyRows := m.ctrl.History().Capacity() + 1
	editorRows := m.height - bannerHeight - chromeRows - outputRows - 2 - historyRows
	editorRows = max(editorRows, editorMinRows)

	m.editor.SetWidth(w)
	m.editor.SetHeight(editorRows)
	m.output.Width = w - 4
	m.output.Height = outputRows
	m.refreshOutput()
}

func (m *Model) refreshOutput() {
	out := m.ctrl.Output()
	if m.output.Width > 0 {
		out = lipgloss.NewStyle().Width(m.output.Width).Render(out)
	}
	m.output.SetContent(out)
}

// errorText renders err for the status line.
func errorText(err error) string {
	var syntaxErr *transform.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return "Obfuscation failed, " + syntaxErr.Error()
	case errors.Is(err, history.ErrHistoryFull):
		return "History is full of protected entries; unprotect or remove one first"
	default:
		return err.Error()
	}
}
