package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hay-kot/criterio"
	"golang.org/x/term"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;247;118;142m" // #f7768e
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Arrow = "→"
)

type ctxKey struct{}

// Printer writes human facing status lines. Colors are dropped when the
// writer is not a terminal or NO_COLOR is set.
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a new Printer that writes to the given writer
func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
		color:  colorEnabled(w),
	}
}

// NewPlain creates a Printer that never emits color codes.
func NewPlain(w io.Writer) *Printer {
	return &Printer{writer: w}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit
// Caller should handle exit code
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.box("Error", []string{p.colorize(ColorGray, err.Error())})
}

// printValidationErrors lists each field error under the wrapping context,
// e.g. "load config: invalid config".
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	var (
		errStr      = wrappedErr.Error()
		fieldErrStr = fieldErrs.Error()
		lines       []string
	)

	if idx := strings.Index(errStr, fieldErrStr); idx > 0 {
		lines = append(lines, p.colorize(ColorGray, strings.TrimSuffix(errStr[:idx], ": ")), "")
	}

	for _, fe := range fieldErrs {
		line := p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += p.colorize(ColorGray, fe.Field+": ")
		}
		line += fe.Err.Error()
		lines = append(lines, line)
	}

	p.box("Validation Error", lines)
}

func (p *Printer) box(title string, lines []string) {
	var b strings.Builder
	b.WriteString(p.colorize(ColorRed, "╭ "+title) + "\n")
	for _, l := range lines {
		b.WriteString(p.colorize(ColorRed, "│"))
		if l != "" {
			b.WriteString(" " + l)
		}
		b.WriteString("\n")
	}
	b.WriteString(p.colorize(ColorRed, "╵") + "\n")
	p.write(b.String())
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.write(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)) + "\n")
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.write(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)) + "\n")
}

// Infof prints an info message in gray
func (p *Printer) Infof(format string, args ...any) {
	p.write(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)) + "\n")
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.write(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)) + "\n")
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...) + "\n")
}

// Sizes reports how a conversion changed the size of its input, e.g.
// "app.js  1.2 kB → 806 B (33% smaller)".
func (p *Printer) Sizes(label string, before, after int) {
	line := fmt.Sprintf("%s  %s %s %s",
		label,
		humanize.Bytes(uint64(before)),
		Arrow,
		humanize.Bytes(uint64(after)),
	)
	if delta := SizeDelta(before, after); delta != "" {
		line += " " + p.colorize(ColorGray, "("+delta+")")
	}
	p.write(p.colorize(ColorGray, Dot) + " " + line + "\n")
}

// SizeDelta describes the relative change from before to after. It returns
// "" when before is zero.
func SizeDelta(before, after int) string {
	if before <= 0 {
		return ""
	}
	pct := (before - after) * 100 / before
	switch {
	case after < before:
		return fmt.Sprintf("%d%% smaller", pct)
	case after > before:
		return fmt.Sprintf("%d%% larger", -pct)
	default:
		return "unchanged"
	}
}

func (p *Printer) colorize(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

// Section prints a section header (bold + underlined)
func (p *Printer) Section(title string) {
	if !p.color {
		p.write(title + "\n")
		return
	}
	p.write(ColorBold + ColorUnderline + title + ColorReset + "\n")
}

// CheckItem prints a success item with green checkmark
func (p *Printer) CheckItem(label, detail string) {
	p.printItem(ColorGreen, Check, label, detail)
}

// WarnItem prints a warning item with yellow dot
func (p *Printer) WarnItem(label, detail string) {
	p.printItem(ColorYellow, Dot, label, detail)
}

// FailItem prints a failure item with red cross
func (p *Printer) FailItem(label, detail string) {
	p.printItem(ColorRed, Cross, label, detail)
}

func (p *Printer) printItem(color, symbol, label, detail string) {
	line := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.write(line + "\n")
}

func (p *Printer) write(s string) {
	_, _ = io.WriteString(p.writer, s)
}
