package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/jsob/internal/commands"
	"github.com/hay-kot/jsob/internal/core/config"
	"github.com/hay-kot/jsob/internal/printer"
	"github.com/hay-kot/jsob/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger(logOptions{Level: "info"}); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
		logs  = &utils.DeferredWriter{}
	)

	exitCode := 0
	if err := newApp(flags, logs).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr)
		p.FatalError(err)
		exitCode = 1
	}

	if err := flags.Close(); err != nil {
		log.Error().Err(err).Msg("close storage")
	}

	// Replay whatever was logged while the TUI owned the screen
	if logs.Len() > 0 {
		if err := logs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

// newApp builds the root command. logs receives log output instead of stderr
// when the TUI runs.
func newApp(flags *commands.Flags, logs *utils.DeferredWriter) *cli.Command {
	app := &cli.Command{
		Name:      "jsob",
		Usage:     "Minify and obfuscate JavaScript",
		UsageText: "jsob [global options] command [command options]",
		Description: `jsob shrinks JavaScript by stripping whitespace or runs it through a
renaming obfuscator, and keeps a short history of recent conversions.

Run 'jsob' with no arguments to open the interactive editor.
Run 'jsob convert < app.js' to convert from the shell.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("JSOB_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("JSOB_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log output format on stderr (console, json)",
				Sources:     cli.EnvVars("JSOB_LOG_FORMAT"),
				Value:       "console",
				Destination: &flags.LogFormat,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("JSOB_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("JSOB_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			opts := logOptions{
				Level:  flags.LogLevel,
				File:   flags.LogFile,
				Format: flags.LogFormat,
			}
			// No subcommand means the TUI will own the terminal
			if c.Args().Len() == 0 {
				opts.Deferred = logs
			}
			if err := setupLogger(opts); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if err := flags.Open(ctx, log.Logger); err != nil {
				return ctx, fmt.Errorf("open storage: %w", err)
			}

			return ctx, nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = commands.NewConvertCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'jsob --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return app
}
