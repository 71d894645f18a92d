package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/validate"
	"github.com/hay-kot/jsob/internal/printer"
	"github.com/hay-kot/jsob/internal/styles"
)

// previewWidth is how many characters of input and output the listing shows.
const previewWidth = 40

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	yes bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or manage conversion history",
		UsageText: "jsob history [command]",
		Description: `View or manage the history of conversions.

By default, lists entries newest first with a 1-based index. Use the index with
'show', 'rm' and 'protect'. Protected entries survive 'rm' and 'clear'.`,
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show the full input and output of an entry",
				UsageText: "jsob history show <n>",
				Action:    cmd.runShow,
			},
			{
				Name:      "rm",
				Usage:     "Remove an entry unless it is protected",
				UsageText: "jsob history rm <n>",
				Action:    cmd.runRemove,
			},
			{
				Name:      "protect",
				Usage:     "Toggle protection on an entry",
				UsageText: "jsob history protect <n>",
				Action:    cmd.runProtect,
			},
			{
				Name:      "clear",
				Usage:     "Remove every unprotected entry",
				UsageText: "jsob history clear [--yes]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	entries := cmd.flags.Controller.History().Entries()

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No conversion history")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tMETHOD\tPROTECTED\tINPUT\tOUTPUT\tTIME")

	for i, e := range entries {
		protected := ""
		if e.Protected {
			protected = printer.Check
		}

		created := "-"
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Local().Format("2006-01-02 15:04:05")
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			e.Method,
			protected,
			preview(e.Input),
			preview(e.Output),
			created,
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runShow(_ context.Context, c *cli.Command) error {
	i, err := cmd.index(c)
	if err != nil {
		return err
	}

	e, err := cmd.flags.Controller.History().Entry(i)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := fmt.Fprintf(out, "%s\n\n%s\n", e.Input, e.Output)
		return err
	}

	rendered, err := renderEntry(e, i+1)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

func (cmd *HistoryCmd) runRemove(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	i, err := cmd.index(c)
	if err != nil {
		return err
	}

	res, err := cmd.flags.Controller.ClearHistoryEntry(ctx, i)
	if err != nil {
		return err
	}

	if res == history.Rejected {
		p.Warnf("Entry %d is protected; unprotect it first", i+1)
		return nil
	}

	p.Successf("Removed entry %d", i+1)
	return nil
}

func (cmd *HistoryCmd) runProtect(ctx context.Context, c *cli.Command) error {
	i, err := cmd.index(c)
	if err != nil {
		return err
	}

	protected, err := cmd.flags.Controller.ToggleProtect(ctx, i)
	if err != nil {
		return err
	}

	if protected {
		printer.Ctx(ctx).Successf("Entry %d is now protected", i+1)
	} else {
		printer.Ctx(ctx).Successf("Entry %d is no longer protected", i+1)
	}
	return nil
}

func (cmd *HistoryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to clear history without a terminal; pass --yes")
		}

		confirmed := false
		err := huh.NewConfirm().
			Title("Clear all unprotected history entries?").
			Affirmative("Clear").
			Negative("Cancel").
			Value(&confirmed).
			WithTheme(styles.FormTheme()).
			Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Cancelled")
			return nil
		}
	}

	removed, err := cmd.flags.Controller.ClearAllHistory(ctx)
	if err != nil {
		return err
	}

	kept := cmd.flags.Controller.History().Len()
	if kept > 0 {
		p.Successf("Removed %d entries, kept %d protected", removed, kept)
	} else {
		p.Successf("Removed %d entries", removed)
	}
	return nil
}

// index parses the first argument as a 1-based history index.
func (cmd *HistoryCmd) index(c *cli.Command) (int, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one history index")
	}
	return validate.HistoryIndex(c.Args().First(), cmd.flags.Controller.History().Len())
}

// preview flattens s onto one line and truncates it for table display.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > previewWidth {
		return string(r[:previewWidth-3]) + "..."
	}
	return s
}

// renderEntry formats an entry as markdown with fenced js blocks.
func renderEntry(e history.Entry, n int) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Entry %d (%s)\n\n", n, e.Method)
	if e.Protected {
		b.WriteString("_protected_\n\n")
	}
	b.WriteString("## Input\n\n```js\n" + e.Input + "\n```\n\n")
	b.WriteString("## Output\n\n```js\n" + e.Output + "\n```\n")

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	return renderer.Render(b.String())
}
