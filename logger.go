package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type logOptions struct {
	Level  string
	File   string
	Format string // console (default) or json

	// Deferred replaces stderr while the TUI runs. The log file, if any, is
	// still written directly.
	Deferred io.Writer
}

func setupLogger(opts logOptions) error {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var console io.Writer
	switch opts.Format {
	case "", "console":
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	case "json":
		console = os.Stderr
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", opts.Format)
	}
	if opts.Deferred != nil {
		console = opts.Deferred
	}

	output := console
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = io.MultiWriter(console, file)
	}

	log.Logger = log.Output(output).Level(level)
	return nil
}
