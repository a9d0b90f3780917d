// Package notice carries non-fatal, user-facing messages from deep in a
// request (a failed remote mirror, for instance) back to the response.
package notice

import (
	"context"
	"sync"
)

type Collector struct {
	mu   sync.Mutex
	msgs []string
}

type ctxKey struct{}

// With returns a context carrying a fresh collector.
func With(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, ctxKey{}, c), c
}

// Add records msg on the collector in ctx. Without one it is dropped.
func Add(ctx context.Context, msg string) {
	c, ok := ctx.Value(ctxKey{}).(*Collector)
	if !ok {
		return
	}
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.msgs))
	copy(out, c.msgs)
	return out
}
