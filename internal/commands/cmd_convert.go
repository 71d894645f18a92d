package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/briandowns/spinner"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/jsob/internal/core/emit"
	"github.com/hay-kot/jsob/internal/core/transform"
	"github.com/hay-kot/jsob/internal/core/validate"
	"github.com/hay-kot/jsob/internal/jsob"
	"github.com/hay-kot/jsob/internal/printer"
)

type ConvertCmd struct {
	flags *Flags

	// Command-specific flags
	method string
	files  []string
	outDir string
	base   string
	suffix string
}

// NewConvertCmd creates a new convert command
func NewConvertCmd(flags *Flags) *ConvertCmd {
	return &ConvertCmd{flags: flags}
}

// Register adds the convert command to the application
func (cmd *ConvertCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "convert",
		Usage:     "Minify or obfuscate JavaScript",
		UsageText: "jsob convert [options] [< source.js]",
		Description: `Converts JavaScript read from stdin or from files matched by --file.

Each conversion is recorded in history exactly as if it had been run from the
interactive editor. Results are written to stdout.

Patterns support ** to match across directories:
  jsob convert -m minify -f 'src/**/*.js'

With --out-dir each file is written to a mirrored path instead of stdout:
  jsob convert -f 'src/**/*.js' -o dist --suffix .min.js`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "method",
				Aliases:     []string{"m"},
				Usage:       "conversion method (minify, obfuscate); defaults to default_method from config",
				Destination: &cmd.method,
			},
			&cli.StringSliceFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "glob pattern of files to convert (repeatable)",
				Destination: &cmd.files,
			},
			&cli.StringFlag{
				Name:        "out-dir",
				Aliases:     []string{"o"},
				Usage:       "write converted files under this directory instead of stdout",
				Destination: &cmd.outDir,
			},
			&cli.StringFlag{
				Name:        "base",
				Usage:       "directory file paths are made relative to under --out-dir",
				Value:       ".",
				Destination: &cmd.base,
			},
			&cli.StringFlag{
				Name:        "suffix",
				Usage:       "replace each file's extension under --out-dir, e.g. .min.js",
				Destination: &cmd.suffix,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConvertCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	method := cmd.flags.Controller.Method()
	if cmd.method != "" {
		m, err := transform.ParseMethod(cmd.method)
		if err != nil {
			return err
		}
		method = m
	}

	out := c.Root().Writer

	if len(cmd.files) == 0 {
		if cmd.outDir != "" {
			return fmt.Errorf("--out-dir requires --file")
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no input provided (stdin is a terminal); use --file or pipe JavaScript")
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		converted, err := cmd.convert(ctx, string(data), method)
		if err != nil {
			return err
		}
		if !converted {
			p.Warnf("Input is empty, nothing converted")
			return nil
		}
		if _, err := fmt.Fprintln(out, cmd.flags.Controller.Output()); err != nil {
			return err
		}
		p.Sizes("stdin", len(data), len(cmd.flags.Controller.Output()))
		return nil
	}

	paths, err := expandPatterns(cmd.files)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched %v", cmd.files)
	}

	var writer *emit.Writer
	if cmd.outDir != "" {
		writer = emit.New(cmd.outDir, cmd.base, cmd.suffix, log.With().Str("component", "emit").Logger())
	}

	var done, skipped, failed int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		converted, err := cmd.convert(ctx, string(data), method)
		if err != nil {
			if !errors.Is(err, jsob.ErrTransformFailed) {
				return err
			}
			p.Errorf("%s: %v", path, err)
			failed++
			continue
		}
		if !converted {
			p.Warnf("%s is empty, skipped", path)
			skipped++
			continue
		}

		result := cmd.flags.Controller.Output()
		label := path

		switch {
		case writer != nil:
			dst, err := writer.Write(path, result+"\n")
			if err != nil {
				return err
			}
			label = path + " " + printer.Arrow + " " + dst
		case len(paths) > 1:
			_, _ = fmt.Fprintf(out, "// %s\n%s\n", path, result)
		default:
			_, _ = fmt.Fprintln(out, result)
		}

		p.Sizes(label, len(data), len(result))
		done++
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to convert", failed, len(paths))
	}

	if skipped > 0 {
		p.Successf("Converted %d file(s) with %s, %d empty skipped", done, method, skipped)
		return nil
	}
	p.Successf("Converted %d file(s) with %s", done, method)
	return nil
}

// convert runs one conversion, showing a spinner for obfuscation when stderr
// is a terminal. It reports false when the input was blank.
func (cmd *ConvertCmd) convert(ctx context.Context, source string, method transform.Method) (bool, error) {
	if validate.Source(source) != nil {
		return false, nil
	}

	if method == transform.MethodObfuscate && term.IsTerminal(int(os.Stderr.Fd())) {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Obfuscating..."
		s.Start()
		defer s.Stop()
	}

	if err := cmd.flags.Controller.Convert(ctx, source, method); err != nil {
		return false, err
	}
	return true, nil
}

// expandPatterns resolves glob patterns into a de-duplicated list of files,
// preserving the order patterns were given in.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithNoFollow(), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	return paths, nil
}
