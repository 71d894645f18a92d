package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/kv"
)

// StorageCheck inspects the persisted history collection.
type StorageCheck struct {
	store    kv.Store
	key      string
	capacity int
	fix      bool
}

// NewStorageCheck creates a new storage check for the collection under key.
// If fix is true, records that cannot be loaded are removed from the stored
// collection.
func NewStorageCheck(store kv.Store, key string, capacity int, fix bool) *StorageCheck {
	if key == "" {
		key = history.DefaultKey
	}
	return &StorageCheck{
		store:    store,
		key:      key,
		capacity: capacity,
		fix:      fix,
	}
}

func (c *StorageCheck) Name() string {
	return "History Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	entry, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			result.pass("Collection", "no history saved yet")
			return result
		}
		result.fail("Read store", "%v", err)
		return result
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(entry.Value), &raw); err != nil {
		result.Items = append(result.Items, c.repair(ctx, "Parse collection",
			fmt.Sprintf("not a JSON array: %v", err), nil))
		return result
	}

	entries, err := history.Decode([]byte(entry.Value), zerolog.Nop())
	if err != nil {
		result.fail("Parse collection", "%v", err)
		return result
	}

	if dropped := len(raw) - len(entries); dropped > 0 {
		result.Items = append(result.Items, c.repair(ctx, "Records",
			fmt.Sprintf("%d record(s) have an unknown method or empty input", dropped), entries))
	} else {
		result.pass("Records", "%d entries", len(entries))
	}

	if c.capacity > 0 && len(entries) > c.capacity {
		result.warn("Capacity", "%d entries exceed capacity %d (all protected entries are kept)", len(entries), c.capacity)
	}

	protected := 0
	for _, e := range entries {
		if e.Protected {
			protected++
		}
	}
	if protected > 0 {
		result.pass("Protected", "%d protected entries", protected)
	}

	return result
}

// repair reports an unloadable collection, or rewrites it with keep when fix
// is enabled.
func (c *StorageCheck) repair(ctx context.Context, label, detail string, keep []history.Entry) CheckItem {
	if !c.fix {
		return CheckItem{
			Label:   label,
			Status:  StatusWarn,
			Detail:  detail,
			Fixable: true,
		}
	}

	data, err := history.Encode(keep)
	if err == nil {
		err = c.store.Set(ctx, c.key, string(data))
	}
	if err != nil {
		return CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: fmt.Sprintf("failed to repair: %v", err),
		}
	}

	return CheckItem{
		Label:  label,
		Status: StatusPass,
		Detail: fmt.Sprintf("repaired, %d entries kept", len(keep)),
	}
}
