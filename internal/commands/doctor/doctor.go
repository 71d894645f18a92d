// Package doctor runs diagnostic checks against a jsob installation.
package doctor

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
)

// Status is the outcome of one check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckItem is a single line of a check result.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

func (r *Result) add(status Status, label, format string, args ...any) {
	r.Items = append(r.Items, CheckItem{
		Label:  label,
		Status: status,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (r *Result) pass(label, format string, args ...any) { r.add(StatusPass, label, format, args...) }
func (r *Result) warn(label, format string, args ...any) { r.add(StatusWarn, label, format, args...) }
func (r *Result) fail(label, format string, args ...any) { r.add(StatusFail, label, format, args...) }

// Worst returns the most severe status among the items.
func (r Result) Worst() Status {
	worst := StatusPass
	for _, item := range r.Items {
		worst = max(worst, item.Status)
	}
	return worst
}

// Ordered returns the items with failures first, then warnings, then passes.
// Items of equal status keep their reported order.
func (r Result) Ordered() []CheckItem {
	items := slices.Clone(r.Items)
	slices.SortStableFunc(items, func(a, b CheckItem) int {
		return cmp.Compare(b.Status, a.Status)
	})
	return items
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs checks in order. A cancelled context stops before the next check.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if ctx.Err() != nil {
			break
		}
		results = append(results, check.Run(ctx))
	}
	return results
}

// Tally counts item outcomes across a set of results.
type Tally struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// String describes the non-zero counts, e.g. "3 passed, 1 warning".
func (t Tally) String() string {
	var parts []string
	if t.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", t.Passed))
	}
	if t.Warned > 0 {
		parts = append(parts, plural(t.Warned, "warning"))
	}
	if t.Failed > 0 {
		parts = append(parts, plural(t.Failed, "failure"))
	}
	if len(parts) == 0 {
		return "nothing checked"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Healthy reports whether no item failed.
func (t Tally) Healthy() bool {
	return t.Failed == 0
}

// Summarize tallies the items of all results. An item counts as fixable only
// while it is still warning or failing.
func Summarize(results []Result) Tally {
	var t Tally
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
			if item.Fixable && item.Status != StatusPass {
				t.Fixable++
			}
		}
	}
	return t
}
