package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/jsob/internal/commands/doctor"
	"github.com/hay-kot/jsob/internal/printer"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your jsob setup",
		UsageText:   "jsob doctor [options]",
		Description: "Runs diagnostic checks on configuration, stored history, and the transform engine.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "rewrite stored history without records that cannot be loaded",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	checks := []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewStorageCheck(cmd.flags.KV, cfg.History.StorageKey, cfg.History.Capacity, cmd.fix),
		doctor.NewEngineCheck(cmd.flags.Transformer),
	}

	results := doctor.RunAll(ctx, checks)

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	tally := doctor.Summarize(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  results,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// outputText prints one block per check, headed by the check's overall
// status, with failing items listed before passing ones.
func (cmd *DoctorCmd) outputText(ctx context.Context, results []doctor.Result) error {
	p := printer.Ctx(ctx)

	for _, result := range results {
		p.Section(fmt.Sprintf("%s %s (%s)", statusSymbol(result.Worst()), result.Name, doctor.Summarize([]doctor.Result{result})))

		for _, item := range result.Ordered() {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	tally := doctor.Summarize(results)
	switch {
	case tally.Failed > 0:
		p.Errorf("jsob needs attention: %s", tally)
	case tally.Warned > 0:
		p.Warnf("jsob works with warnings: %s", tally)
	default:
		p.Successf("jsob is ready: %s", tally)
	}

	if tally.Fixable > 0 {
		p.Infof("Run 'jsob doctor --fix' to rewrite stored history (%d issue(s) repairable)", tally.Fixable)
	}

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}

func statusSymbol(s doctor.Status) string {
	switch s {
	case doctor.StatusFail:
		return printer.Cross
	case doctor.StatusWarn:
		return printer.Dot
	default:
		return printer.Check
	}
}
