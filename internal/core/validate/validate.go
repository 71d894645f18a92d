// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/jsob/internal/core/transform"
)

// ErrEmptySource is returned when source text is blank.
var ErrEmptySource = errors.New("source is empty")

// Source validates source text is non-empty after trimming JavaScript
// whitespace as defined by transform.IsSpace.
func Source(text string) error {
	if strings.TrimFunc(text, transform.IsSpace) == "" {
		return ErrEmptySource
	}
	return nil
}

// HistoryIndex converts a 1-based index typed by a user into a 0-based one,
// checking it against n entries.
func HistoryIndex(arg string, n int) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", arg)
	}
	if idx < 1 || idx > n {
		if n == 0 {
			return 0, fmt.Errorf("index %d out of range: history is empty", idx)
		}
		return 0, fmt.Errorf("index %d out of range: expected 1-%d", idx, n)
	}
	return idx - 1, nil
}
