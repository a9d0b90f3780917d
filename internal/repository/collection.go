package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type Entity interface {
	GetID() string
}

// Collection is a typed view of one named collection.
type Collection[T Entity] struct {
	adapter *Adapter
	name    Name
}

func NewCollection[T Entity](a *Adapter, name Name) *Collection[T] {
	return &Collection[T]{adapter: a, name: name}
}

func (c *Collection[T]) Name() Name { return c.name }

// Load returns the collection, remote first. Read failures degrade to an
// empty collection and are only logged.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if body := c.adapter.fetchRemote(ctx, c.name); body != nil {
		var items []T
		err := json.Unmarshal(body, &items)
		if err == nil {
			return items, nil
		}
		slog.WarnContext(ctx, "remote returned malformed collection, using local store", "collection", c.name, "err", err)
	}

	raw, err := c.adapter.readLocal(ctx, c.name)
	if err != nil {
		slog.ErrorContext(ctx, "local store read failed", "collection", c.name, "err", err)
		return []T{}, nil
	}
	items, err := decode[T](raw)
	if err != nil {
		slog.ErrorContext(ctx, "malformed local collection", "collection", c.name, "err", err)
		return []T{}, nil
	}
	return items, nil
}

// LoadLocal reads only the local store. Unlike Load, a local failure is
// returned to the caller.
func (c *Collection[T]) LoadLocal(ctx context.Context) ([]T, error) {
	raw, err := c.adapter.readLocal(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	items, err := decode[T](raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	return items, nil
}

// Find loads the collection and returns the entity with id.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.Load(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.GetID() == id {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Save replaces the whole local collection.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.adapter.local.Set(ctx, string(c.name), b); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}

// Update runs a read-modify-write cycle on the local collection. Updates to
// the same collection are serialized within this process. If fn returns an
// error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	l := c.adapter.lock(c.name)
	l.Lock()
	defer l.Unlock()

	raw, err := c.adapter.readLocal(ctx, c.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}
	items, err := decode[T](raw)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}
	out, err := fn(items)
	if err != nil {
		return err
	}
	return c.Save(ctx, out)
}

// Mirror forwards a write for this collection; suffix is appended to
// "/<collection>".
func (c *Collection[T]) Mirror(ctx context.Context, method, suffix string, body any) {
	c.adapter.Mirror(ctx, method, "/"+string(c.name)+suffix, body)
}

func decode[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Replace swaps the entity with the same id; ok is false when absent.
func Replace[T Entity](items []T, v T) ([]T, bool) {
	out := make([]T, len(items))
	copy(out, items)
	for i, it := range out {
		if it.GetID() == v.GetID() {
			out[i] = v
			return out, true
		}
	}
	return out, false
}

// Remove filters out the entity with id; ok is false when nothing matched.
func Remove[T Entity](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	removed := false
	for _, it := range items {
		if it.GetID() == id {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return out, removed
}
