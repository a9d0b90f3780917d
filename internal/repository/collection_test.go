package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"sales-order-service/internal/infra/kv"
	"sales-order-service/internal/mocks"
	"sales-order-service/internal/notice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (i item) GetID() string { return i.ID }

func TestCollection_LocalOnly(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](NewAdapter(kv.NewMemory(), nil), Products)

	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, c.Save(ctx, []item{{ID: "1", Name: "Widget"}}))
	items, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Name: "Widget"}}, items)

	got, ok, err := c.Find(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Widget", got.Name)

	_, ok, err = c.Find(ctx, "2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollection_LoadRemoteFirst(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mocks.MockRemoteClient)
		want       []item
	}{
		{
			name: "remote data wins",
			setupMocks: func(rc *mocks.MockRemoteClient) {
				rc.On("Fetch", mock.Anything, "/products").Return([]byte(`[{"id":"r1","name":"Remote"}]`), nil)
			},
			want: []item{{ID: "r1", Name: "Remote"}},
		},
		{
			name: "remote error falls back to local",
			setupMocks: func(rc *mocks.MockRemoteClient) {
				rc.On("Fetch", mock.Anything, "/products").Return(nil, errors.New("connection refused"))
			},
			want: []item{{ID: "l1", Name: "Local"}},
		},
		{
			name: "empty signal falls back to local",
			setupMocks: func(rc *mocks.MockRemoteClient) {
				rc.On("Fetch", mock.Anything, "/products").Return(nil, nil)
			},
			want: []item{{ID: "l1", Name: "Local"}},
		},
		{
			name: "malformed remote falls back to local",
			setupMocks: func(rc *mocks.MockRemoteClient) {
				rc.On("Fetch", mock.Anything, "/products").Return([]byte(`{"oops":`), nil)
			},
			want: []item{{ID: "l1", Name: "Local"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rc := new(mocks.MockRemoteClient)
			tt.setupMocks(rc)

			local := kv.NewMemory()
			require.NoError(t, local.Set(ctx, "products", []byte(`[{"id":"l1","name":"Local"}]`)))

			c := NewCollection[item](NewAdapter(local, rc), Products)
			items, err := c.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, items)
			rc.AssertExpectations(t)
		})
	}
}

func TestCollection_MalformedLocal(t *testing.T) {
	ctx := context.Background()
	local := kv.NewMemory()
	require.NoError(t, local.Set(ctx, "orders", []byte(`not json`)))
	c := NewCollection[item](NewAdapter(local, nil), Orders)

	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = c.Update(ctx, func(in []item) ([]item, error) {
		return append(in, item{ID: "1"}), nil
	})
	assert.Error(t, err)

	raw, _ := local.Get(ctx, "orders")
	assert.Equal(t, "not json", string(raw))
}

func TestCollection_UpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](NewAdapter(kv.NewMemory(), nil), Customers)
	require.NoError(t, c.Save(ctx, []item{{ID: "1"}}))

	boom := errors.New("boom")
	err := c.Update(ctx, func(in []item) ([]item, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	items, _ := c.Load(ctx)
	assert.Len(t, items, 1)
}

// Applying the same operations to a plain slice and to the collection must
// yield the same sequence.
func TestCollection_OperationsMatchModel(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](NewAdapter(kv.NewMemory(), nil), Customers)

	type op struct {
		kind string
		v    item
	}
	ops := []op{
		{"create", item{ID: "1", Name: "a"}},
		{"create", item{ID: "2", Name: "b"}},
		{"update", item{ID: "1", Name: "a2"}},
		{"create", item{ID: "3", Name: "c"}},
		{"delete", item{ID: "2"}},
		{"delete", item{ID: "2"}},
		{"update", item{ID: "9", Name: "ghost"}},
		{"create", item{ID: "4", Name: "d"}},
	}

	var model []item
	for _, o := range ops {
		switch o.kind {
		case "create":
			model = append(model, o.v)
			require.NoError(t, c.Update(ctx, func(in []item) ([]item, error) { return append(in, o.v), nil }))
		case "update":
			model, _ = Replace(model, o.v)
			require.NoError(t, c.Update(ctx, func(in []item) ([]item, error) {
				out, _ := Replace(in, o.v)
				return out, nil
			}))
		case "delete":
			model, _ = Remove(model, o.v.ID)
			require.NoError(t, c.Update(ctx, func(in []item) ([]item, error) {
				out, _ := Remove(in, o.v.ID)
				return out, nil
			}))
		}
	}

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model, got)
	assert.Equal(t, []item{{ID: "1", Name: "a2"}, {ID: "3", Name: "c"}, {ID: "4", Name: "d"}}, got)
}

func TestCollection_ConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](NewAdapter(kv.NewMemory(), nil), Orders)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			_ = c.Update(ctx, func(in []item) ([]item, error) {
				return append(in, item{ID: fmt.Sprint(n)}), nil
			})
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	items, _ := c.Load(ctx)
	assert.Len(t, items, 20)
}

func TestRemove_Idempotent(t *testing.T) {
	items := []item{{ID: "1"}, {ID: "2"}}
	out, ok := Remove(items, "1")
	assert.True(t, ok)
	assert.Equal(t, []item{{ID: "2"}}, out)

	again, ok := Remove(out, "1")
	assert.False(t, ok)
	assert.Equal(t, out, again)
}

func TestCollection_Mirror(t *testing.T) {
	t.Run("failure becomes a notice", func(t *testing.T) {
		rc := new(mocks.MockRemoteClient)
		rc.On("Send", mock.Anything, http.MethodPost, "/orders", mock.Anything).Return(errors.New("502"))
		c := NewCollection[item](NewAdapter(kv.NewMemory(), rc), Orders)

		ctx, col := notice.With(context.Background())
		c.Mirror(ctx, http.MethodPost, "", item{ID: "1"})
		assert.Len(t, col.Messages(), 1)
		rc.AssertExpectations(t)
	})

	t.Run("success is silent", func(t *testing.T) {
		rc := new(mocks.MockRemoteClient)
		rc.On("Send", mock.Anything, http.MethodDelete, "/orders/1", nil).Return(nil)
		c := NewCollection[item](NewAdapter(kv.NewMemory(), rc), Orders)

		ctx, col := notice.With(context.Background())
		c.Mirror(ctx, http.MethodDelete, "/1", nil)
		assert.Empty(t, col.Messages())
		rc.AssertExpectations(t)
	})

	t.Run("no remote configured", func(t *testing.T) {
		c := NewCollection[item](NewAdapter(kv.NewMemory(), nil), Orders)
		ctx, col := notice.With(context.Background())
		c.Mirror(ctx, http.MethodDelete, "/1", nil)
		assert.Empty(t, col.Messages())
	})
}

func TestCollection_LoadLocalIgnoresRemote(t *testing.T) {
	ctx := context.Background()
	local := kv.NewMemory()
	rc := new(mocks.MockRemoteClient)
	c := NewCollection[item](NewAdapter(local, rc), Salespersons)

	require.NoError(t, c.Save(ctx, []item{{ID: "1", Name: "Local"}}))
	items, err := c.LoadLocal(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Name: "Local"}}, items)
	rc.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)

	require.NoError(t, local.Set(ctx, string(Salespersons), []byte(`{broken`)))
	_, err = c.LoadLocal(ctx)
	assert.Error(t, err)
}
