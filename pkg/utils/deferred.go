// Package utils holds small helpers shared by the CLI entrypoint.
package utils

import (
	"io"
	"sync"
)

// DeferredWriter buffers log events while the TUI owns the terminal and
// replays them once it exits. Each Write is kept as a separate event so a
// line oriented writer such as zerolog.ConsoleWriter can reformat them.
type DeferredWriter struct {
	mu     sync.Mutex
	events [][]byte
}

// Write implements io.Writer.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events = append(d.events, append([]byte(nil), p...))
	return len(p), nil
}

// Len reports the number of buffered events.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// Flush writes every buffered event to w in order and empties the buffer.
// Events that fail to write are dropped along with the rest.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	events := d.events
	d.events = nil
	d.mu.Unlock()

	for _, e := range events {
		if _, err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
