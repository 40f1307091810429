package repository

import (
	"encoding/json"
	"fmt"

	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/google/uuid"
)

// collection is one kind of reference record. It is not locked on its own;
// the owning Repository guards every collection with a single RWMutex.
type collection[T any] struct {
	kind     storage.Kind
	prefix   string
	items    []T
	id       func(*T) *string
	clone    func(T) T
	validate func(T) error
	// onDelete runs after the record with id has been removed.
	onDelete func(items []T, id string)

	// revision counts in-process changes since the repository was created.
	revision uint64
	// degraded is set while the last load of this kind failed; the stored
	// document may still hold data the collection does not.
	degraded bool
}

func identity[T any](v T) T { return v }

func (c *collection[T]) newID() string {
	return c.prefix + uuid.NewString()
}

func (c *collection[T]) index(id string) int {
	for i := range c.items {
		if *c.id(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) get(id string) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

func (c *collection[T]) list() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

func (c *collection[T]) encode() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []T{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", c.kind, err)
	}
	return body, nil
}

func (c *collection[T]) decode(data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.kind, err)
	}
	return items, nil
}

// assignMissingIDs gives every record without an id a generated one and
// reports how many were assigned.
func (c *collection[T]) assignMissingIDs() int {
	n := 0
	for i := range c.items {
		if id := c.id(&c.items[i]); *id == "" {
			*id = c.newID()
			n++
		}
	}
	return n
}

func (c *collection[T]) writable() error {
	if c.degraded {
		return fmt.Errorf("%w: %s failed to load", ErrUnavailable, c.kind)
	}
	return nil
}

func (c *collection[T]) count() int {
	return len(c.items)
}
