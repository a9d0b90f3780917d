package services

import (
	"context"
	"testing"

	"sales-order-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestProductService_SalespersonSubmissionIsPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "Widget", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, p.IsPendingApproval)
	assert.Equal(t, TestSalesperson, p.CreatedBy)
	assert.Equal(t, domain.PlaceholderImage, p.Image)

	admin, err := f.products.List(ctx, AdminActor())
	require.NoError(t, err)
	assert.NotContains(t, ids(admin.Approved), p.ID)
	assert.Contains(t, ids(admin.Pending), p.ID)

	own, err := f.products.List(ctx, SalespersonActor(TestSalesperson))
	require.NoError(t, err)
	assert.Contains(t, ids(own.Pending), p.ID)
	assert.NotContains(t, ids(own.Approved), p.ID)

	other, err := f.products.List(ctx, SalespersonActor(TestOther))
	require.NoError(t, err)
	assert.Empty(t, other.Pending)
	assert.Empty(t, other.Approved)

	_, err = f.products.Get(ctx, SalespersonActor(TestOther), p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	got, err := f.products.Get(ctx, SalespersonActor(TestSalesperson), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, domain.EventProductCreated, mock.Anything)
}

func TestProductService_AdminCreateIsApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.products.Create(ctx, AdminActor(), ProductInput{Name: " Gadget ", Price: decimal.NewFromInt(5), Image: "http://img/g.png"})
	require.NoError(t, err)
	assert.False(t, p.IsPendingApproval)
	assert.Equal(t, "Gadget", p.Name)
	assert.Equal(t, "http://img/g.png", p.Image)

	cat, err := f.products.List(ctx, SalespersonActor(TestOther))
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids(cat.Approved))
}

func TestProductService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ProductInput
	}{
		{"blank name", ProductInput{Name: "  ", Price: decimal.NewFromInt(1)}},
		{"zero price", ProductInput{Name: "Widget"}},
		{"negative price", ProductInput{Name: "Widget", Price: decimal.NewFromInt(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			_, err := f.products.Create(ctx, AdminActor(), tt.input)
			assert.ErrorIs(t, err, ErrValidation)

			all, _ := f.productsC.Load(ctx)
			assert.Empty(t, all)
		})
	}
}

func TestProductService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "Widget", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = f.products.Approve(ctx, SalespersonActor(TestSalesperson), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := f.products.Approve(ctx, AdminActor(), p.ID)
	require.NoError(t, err)
	assert.False(t, approved.IsPendingApproval)

	cat, err := f.products.List(ctx, SalespersonActor(TestOther))
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids(cat.Approved))

	_, err = f.products.Approve(ctx, AdminActor(), p.ID)
	assert.ErrorIs(t, err, ErrNotEditable)
	_, err = f.products.Approve(ctx, AdminActor(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, domain.EventProductApproved, mock.Anything)
}

func TestProductService_RejectDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "Widget", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	approved := f.seedProduct(t, "Gadget", 5)

	require.NoError(t, f.products.Reject(ctx, AdminActor(), p.ID))
	all, _ := f.productsC.Load(ctx)
	assert.Equal(t, []string{approved.ID}, ids(all))

	assert.ErrorIs(t, f.products.Reject(ctx, AdminActor(), approved.ID), ErrNotEditable)
	assert.ErrorIs(t, f.products.Reject(ctx, AdminActor(), p.ID), ErrProductNotFound)
	assert.ErrorIs(t, f.products.Reject(ctx, SalespersonActor(TestSalesperson), approved.ID), ErrForbidden)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	approved := f.seedProduct(t, "Gadget", 5)
	pending, err := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "Widget", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = f.products.Update(ctx, AdminActor(), pending.ID, ProductInput{Name: "Widget 2", Price: decimal.NewFromInt(11)})
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = f.products.Update(ctx, SalespersonActor(TestSalesperson), approved.ID, ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.products.Update(ctx, AdminActor(), approved.ID, ProductInput{Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.products.Update(ctx, AdminActor(), approved.ID, ProductInput{Name: "Gadget Pro", Price: decimal.NewFromInt(7)})
	require.NoError(t, err)
	assert.Equal(t, "Gadget Pro", updated.Name)
	assert.True(t, decimal.NewFromInt(7).Equal(updated.Price))
	assert.False(t, updated.IsPendingApproval)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.True(t, approved.CreatedAt.Equal(updated.CreatedAt))

	_, err = f.products.Update(ctx, AdminActor(), "missing", ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	approved := f.seedProduct(t, "Gadget", 5)
	pending, err := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "Widget", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.products.Delete(ctx, SalespersonActor(TestSalesperson), approved.ID), ErrForbidden)
	assert.ErrorIs(t, f.products.Delete(ctx, SalespersonActor(TestOther), pending.ID), ErrForbidden)

	require.NoError(t, f.products.Delete(ctx, SalespersonActor(TestSalesperson), pending.ID))
	require.NoError(t, f.products.Delete(ctx, AdminActor(), approved.ID))
	before, _ := f.productsC.Load(ctx)
	require.NoError(t, f.products.Delete(ctx, AdminActor(), approved.ID))
	after, _ := f.productsC.Load(ctx)
	assert.Equal(t, before, after)
	assert.Empty(t, after)
}

// A product is in the approved catalog exactly when it is not pending.
func TestProductService_ApprovalInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProduct(t, "A", 1)
	b, _ := f.products.Create(ctx, SalespersonActor(TestSalesperson), ProductInput{Name: "B", Price: decimal.NewFromInt(2)})
	f.products.Create(ctx, SalespersonActor(TestOther), ProductInput{Name: "C", Price: decimal.NewFromInt(3)})
	_, err := f.products.Approve(ctx, AdminActor(), b.ID)
	require.NoError(t, err)

	all, _ := f.productsC.Load(ctx)
	for _, actor := range []domain.Actor{AdminActor(), SalespersonActor(TestSalesperson), SalespersonActor(TestOther)} {
		cat, err := f.products.List(ctx, actor)
		require.NoError(t, err)
		approved := ids(cat.Approved)
		for _, p := range all {
			assert.Equal(t, !p.IsPendingApproval, contains(approved, p.ID), "product %s for %s", p.Name, actor.Username)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
