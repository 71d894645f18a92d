package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/jsob/internal/core/config"
	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/kv"
	"github.com/hay-kot/jsob/internal/core/transform"
)

type mockKV struct {
	values map[string]string
	getErr error
}

func (m *mockKV) Get(_ context.Context, key string) (kv.Entry, error) {
	if m.getErr != nil {
		return kv.Entry{}, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return kv.Entry{Key: key, Value: v}, nil
}

func (m *mockKV) Set(_ context.Context, key, value string) error {
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

type stubObfuscator struct {
	out string
	err error
}

func (s stubObfuscator) Obfuscate(string) (string, error) {
	return s.out, s.err
}

func TestStorageCheck_Empty(t *testing.T) {
	check := NewStorageCheck(&mockKV{}, "", 10, false)
	result := check.Run(context.Background())

	assert.Equal(t, "History Storage", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "no history saved yet", result.Items[0].Detail)
}

func TestStorageCheck_ReadError(t *testing.T) {
	check := NewStorageCheck(&mockKV{getErr: errors.New("permission denied")}, "", 10, false)
	result := check.Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}

func TestStorageCheck_Healthy(t *testing.T) {
	store := &mockKV{values: map[string]string{
		history.DefaultKey: `[{"input":"a","output":"a","method":"minify","protected":true},{"input":"b","output":"b","method":"obfuscate"}]`,
	}}

	result := NewStorageCheck(store, "", 10, false).Run(context.Background())

	tally := Summarize([]Result{result})
	assert.Equal(t, 0, tally.Warned)
	assert.Equal(t, 0, tally.Failed)
	assert.Equal(t, "2 entries", result.Items[0].Detail)
	assert.Equal(t, "1 protected entries", result.Items[1].Detail)
}

func TestStorageCheck_DroppedRecords(t *testing.T) {
	doc := `[{"input":"a","output":"a","method":"minify"},{"input":"b","output":"b","method":"uglify"}]`

	t.Run("report", func(t *testing.T) {
		store := &mockKV{values: map[string]string{history.DefaultKey: doc}}
		result := NewStorageCheck(store, "", 10, false).Run(context.Background())

		require.NotEmpty(t, result.Items)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.True(t, result.Items[0].Fixable)
		assert.Equal(t, doc, store.values[history.DefaultKey], "nothing rewritten without fix")
	})

	t.Run("fix", func(t *testing.T) {
		store := &mockKV{values: map[string]string{history.DefaultKey: doc}}
		result := NewStorageCheck(store, "", 10, true).Run(context.Background())

		require.NotEmpty(t, result.Items)
		assert.Equal(t, StatusPass, result.Items[0].Status)

		got, err := history.Decode([]byte(store.values[history.DefaultKey]), zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].Input)
	})
}

func TestStorageCheck_NotAnArray(t *testing.T) {
	store := &mockKV{values: map[string]string{history.DefaultKey: "{oops"}}

	result := NewStorageCheck(store, "", 10, true).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "[]", store.values[history.DefaultKey])
}

func TestStorageCheck_OverCapacity(t *testing.T) {
	store := &mockKV{values: map[string]string{
		"custom": `[{"input":"a","method":"minify"},{"input":"b","method":"minify"},{"input":"c","method":"minify"}]`,
	}}

	result := NewStorageCheck(store, "custom", 2, false).Run(context.Background())

	tally := Summarize([]Result{result})
	assert.Equal(t, 1, tally.Warned)
	assert.True(t, tally.Healthy())
}

func TestEngineCheck(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		check := NewEngineCheck(transform.New(stubObfuscator{out: "function a(b){return b}"}))
		result := check.Run(context.Background())

		require.Len(t, result.Items, 2)
		for _, item := range result.Items {
			assert.Equal(t, StatusPass, item.Status, item.Label)
		}
	})

	t.Run("fail", func(t *testing.T) {
		check := NewEngineCheck(transform.New(stubObfuscator{err: errors.New("boom")}))
		tally := Summarize(RunAll(context.Background(), []Check{check}))

		assert.Equal(t, 1, tally.Passed, "minify still works")
		assert.Equal(t, 1, tally.Failed)
	})

	t.Run("not mangled", func(t *testing.T) {
		check := NewEngineCheck(transform.New(stubObfuscator{out: probeSource}))
		tally := Summarize([]Result{check.Run(context.Background())})

		assert.Equal(t, 1, tally.Warned)
	})
}

func TestConfigCheck(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		result := NewConfigCheck(nil, "").Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.History.Capacity = 0

		results := RunAll(context.Background(), []Check{NewConfigCheck(&cfg, "")})
		tally := Summarize(results)

		assert.Equal(t, 1, tally.Failed)
		assert.False(t, tally.Healthy())

		var labels []string
		for _, item := range results[0].Items {
			labels = append(labels, item.Label)
		}
		assert.Contains(t, labels, "history.capacity")
	})
}

func TestCheckItem_JSONStatus(t *testing.T) {
	data, err := json.Marshal(CheckItem{Label: "Records", Status: StatusWarn, Fixable: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Records","status":"warn","fixable":true}`, string(data))
}

type countingCheck struct{ runs *int }

func (countingCheck) Name() string { return "counting" }

func (c countingCheck) Run(context.Context) Result {
	*c.runs++
	return Result{Name: "counting"}
}

func TestRunAll_StopsWhenCancelled(t *testing.T) {
	runs := 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := RunAll(ctx, []Check{countingCheck{&runs}, countingCheck{&runs}})
	assert.Empty(t, results)
	assert.Zero(t, runs)
}

func TestSummarize_Fixable(t *testing.T) {
	results := []Result{{Items: []CheckItem{
		{Status: StatusWarn, Fixable: true},
		{Status: StatusPass, Fixable: true},
		{Status: StatusFail},
	}}}

	tally := Summarize(results)
	assert.Equal(t, Tally{Passed: 1, Warned: 1, Failed: 1, Fixable: 1}, tally)
}

func TestResult_WorstAndOrdered(t *testing.T) {
	r := Result{Items: []CheckItem{
		{Label: "a", Status: StatusPass},
		{Label: "b", Status: StatusWarn},
		{Label: "c", Status: StatusPass},
		{Label: "d", Status: StatusFail},
	}}

	assert.Equal(t, StatusFail, r.Worst())
	assert.Equal(t, StatusPass, Result{}.Worst())

	var labels []string
	for _, item := range r.Ordered() {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, labels)
	assert.Equal(t, "a", r.Items[0].Label, "original order untouched")
}

func TestTally_String(t *testing.T) {
	tests := []struct {
		tally Tally
		want  string
	}{
		{Tally{}, "nothing checked"},
		{Tally{Passed: 3}, "3 passed"},
		{Tally{Passed: 2, Warned: 1}, "2 passed, 1 warning"},
		{Tally{Warned: 2, Failed: 1}, "2 warnings, 1 failure"},
		{Tally{Passed: 1, Failed: 2}, "1 passed, 2 failures"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tally.String())
		})
	}
}
