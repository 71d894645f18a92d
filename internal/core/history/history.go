// Package history defines conversion history domain types and the bounded
// store that owns them.
package history

import (
	"errors"
	"time"

	"github.com/hay-kot/jsob/internal/core/transform"
)

var (
	// ErrIndexOutOfRange is returned when an operation addresses a missing entry.
	ErrIndexOutOfRange = errors.New("history index out of range")
	// ErrHistoryFull is returned by Append under OverflowReject when every
	// existing entry is protected.
	ErrHistoryFull = errors.New("history is full of protected entries")
)

// Entry represents one completed conversion.
type Entry struct {
	Input     string           `json:"input"`
	Output    string           `json:"output"`
	Method    transform.Method `json:"method"`
	Protected bool             `json:"protected"`
	CreatedAt time.Time        `json:"created_at,omitzero"`
}

// NewEntry creates an unprotected entry stamped with the current time.
func NewEntry(input, output string, method transform.Method) Entry {
	return Entry{
		Input:     input,
		Output:    output,
		Method:    method,
		CreatedAt: time.Now(),
	}
}

// RemoveResult reports the outcome of a single-entry removal.
type RemoveResult int

const (
	Removed RemoveResult = iota
	Rejected
)

func (r RemoveResult) String() string {
	if r == Rejected {
		return "rejected"
	}
	return "removed"
}

// OverflowPolicy decides what Append does when the collection is over
// capacity and no unprotected entry is left to evict.
type OverflowPolicy string

const (
	// OverflowGrow keeps the new entry and lets the collection exceed capacity.
	OverflowGrow OverflowPolicy = "grow"
	// OverflowReject refuses the new entry with ErrHistoryFull.
	OverflowReject OverflowPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p OverflowPolicy) Valid() bool {
	return p == OverflowGrow || p == OverflowReject
}
