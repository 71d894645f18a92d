// Package jsob orchestrates conversions: it owns the editor state and ties
// the transformer, the history store and the success notice together.
package jsob

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/transform"
	"github.com/hay-kot/jsob/internal/core/validate"
)

// ErrTransformFailed matches every *ConversionError.
var ErrTransformFailed = errors.New("transform failed")

// ConversionError reports a transformation that failed. Output and history
// are left untouched when it is returned.
type ConversionError struct {
	Method transform.Method
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	return []error{ErrTransformFailed, e.Err}
}

// Transformer applies a method to source text.
type Transformer interface {
	Transform(source string, method transform.Method) (string, error)
}

// Notifier is told about every successful conversion.
type Notifier interface {
	Show()
}

// Controller holds the current input, method and output and exposes the
// commands a presentation layer can issue.
type Controller struct {
	mu     sync.Mutex
	input  string
	output string
	method transform.Method

	transformer Transformer
	history     *history.Store
	notifier    Notifier
	log         zerolog.Logger
}

// New creates a Controller. method is the initially selected method.
func New(t Transformer, h *history.Store, n Notifier, method transform.Method, log zerolog.Logger) *Controller {
	if !method.Valid() {
		method = transform.MethodObfuscate
	}

	return &Controller{
		method:      method,
		transformer: t,
		history:     h,
		notifier:    n,
		log:         log,
	}
}

// History exposes the store for read access by presentation layers.
func (c *Controller) History() *history.Store {
	return c.history
}

// SetInput replaces the current source text.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Input returns the current source text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Output returns the result of the last successful conversion.
func (c *Controller) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Method returns the selected method.
func (c *Controller) Method() transform.Method {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method
}

// SelectMethod changes the selected method.
func (c *Controller) SelectMethod(m transform.Method) error {
	if !m.Valid() {
		return fmt.Errorf("%w %q", transform.ErrUnknownMethod, m)
	}

	c.mu.Lock()
	c.method = m
	c.mu.Unlock()
	return nil
}

// Run converts the current input with the selected method.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	input, method := c.input, c.method
	c.mu.Unlock()

	return c.Convert(ctx, input, method)
}

// Convert transforms input with method, records the result in history and
// shows the success notice. Blank input is ignored and returns nil. A failed
// transformation returns a *ConversionError and changes nothing.
func (c *Controller) Convert(ctx context.Context, input string, method transform.Method) error {
	if err := validate.Source(input); err != nil {
		c.log.Debug().Str("method", method.String()).Msg("conversion skipped: empty input")
		return nil
	}

	out, err := c.transformer.Transform(input, method)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method.String()).Int("input_len", len(input)).Msg("conversion failed")
		return &ConversionError{Method: method, Err: err}
	}

	if err := c.history.Append(ctx, history.NewEntry(input, out, method)); err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}

	c.mu.Lock()
	c.output = out
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.Show()
	}

	c.log.Info().
		Str("method", method.String()).
		Int("input_len", len(input)).
		Int("output_len", len(out)).
		Msg("conversion complete")
	return nil
}

// ClearInputOutput resets the editor. History is untouched.
func (c *Controller) ClearInputOutput() {
	c.mu.Lock()
	c.input = ""
	c.output = ""
	c.mu.Unlock()
}

// ClearAllHistory removes every unprotected history entry.
func (c *Controller) ClearAllHistory(ctx context.Context) (int, error) {
	n, err := c.history.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	c.log.Info().Int("removed", n).Msg("history cleared")
	return n, nil
}

// ClearHistoryEntry removes the entry at index i unless it is protected.
func (c *Controller) ClearHistoryEntry(ctx context.Context, i int) (history.RemoveResult, error) {
	res, err := c.history.RemoveAt(ctx, i)
	if err != nil {
		return res, fmt.Errorf("remove history entry: %w", err)
	}
	if res == history.Rejected {
		c.log.Info().Int("index", i).Msg("protected entry not removed")
	}
	return res, nil
}

// ToggleProtect flips protection on the entry at index i.
func (c *Controller) ToggleProtect(ctx context.Context, i int) (bool, error) {
	protected, err := c.history.ToggleProtect(ctx, i)
	if err != nil {
		return false, fmt.Errorf("toggle protection: %w", err)
	}
	return protected, nil
}
