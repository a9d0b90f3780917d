package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"sales-order-service/internal/infra/kv"
	"sales-order-service/internal/infra/remote"
	"sales-order-service/internal/notice"
)

type Name string

const (
	Products     Name = "products"
	Orders       Name = "orders"
	Customers    Name = "customers"
	Salespersons Name = "salespersons"
	Auth         Name = "auth"
)

// Adapter reads collections from the remote service when one is configured
// and from the local store otherwise. The local store is always written.
// The two are never reconciled.
type Adapter struct {
	local  kv.Store
	remote remote.ClientInterface

	mu    sync.Mutex
	locks map[Name]*sync.Mutex
}

// NewAdapter builds an adapter; rc may be nil to run local-only.
func NewAdapter(local kv.Store, rc remote.ClientInterface) *Adapter {
	return &Adapter{
		local:  local,
		remote: rc,
		locks:  make(map[Name]*sync.Mutex),
	}
}

func (a *Adapter) lock(n Name) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[n]
	if !ok {
		l = &sync.Mutex{}
		a.locks[n] = l
	}
	return l
}

func (a *Adapter) fetchRemote(ctx context.Context, n Name) []byte {
	if a.remote == nil {
		return nil
	}
	body, err := a.remote.Fetch(ctx, "/"+string(n))
	if err != nil {
		slog.WarnContext(ctx, "remote load failed, using local store", "collection", n, "err", err)
		return nil
	}
	return body
}

func (a *Adapter) readLocal(ctx context.Context, n Name) ([]byte, error) {
	b, err := a.local.Get(ctx, string(n))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// Mirror sends a write to the remote service. Failures become notices.
func (a *Adapter) Mirror(ctx context.Context, method, path string, body any) {
	if a.remote == nil {
		return
	}
	if err := a.remote.Send(ctx, method, path, body); err != nil {
		slog.WarnContext(ctx, "remote mirror failed", "method", method, "path", path, "err", err)
		notice.Add(ctx, "remote sync failed, change saved locally")
	}
}
