package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/core/database/dbtest"
	"sweet-shop/internal/domain"
	"sweet-shop/internal/events"
	"sweet-shop/internal/repo"
)

func ptr[T any](v T) *T { return &v }

func newSweetService(t *testing.T) (*SweetService, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return NewSweetService(repo.NewSweetRepo(dbtest.NewDB(t)), rec, nil), rec
}

func cake() domain.SweetDraft {
	return domain.SweetDraft{Name: ptr("Chocolate Cake"), Category: ptr("Cake"), Price: ptr(20.0), Quantity: ptr(10)}
}

func TestCreateRequiresAllFields(t *testing.T) {
	svc, rec := newSweetService(t)
	ctx := context.Background()

	for name, mutate := range map[string]func(*domain.SweetDraft){
		"name":     func(d *domain.SweetDraft) { d.Name = nil },
		"blank":    func(d *domain.SweetDraft) { d.Name = ptr("  ") },
		"category": func(d *domain.SweetDraft) { d.Category = nil },
		"price":    func(d *domain.SweetDraft) { d.Price = nil },
		"quantity": func(d *domain.SweetDraft) { d.Quantity = nil },
	} {
		t.Run(name, func(t *testing.T) {
			in := cake()
			mutate(&in)
			_, err := svc.Create(ctx, in)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, MsgMissingFields, domain.Message(err))
		})
	}

	in := cake()
	in.Price = ptr(-1.0)
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, rec.Events())
}

func TestCreateAllowsZeroQuantity(t *testing.T) {
	svc, rec := newSweetService(t)
	in := cake()
	in.Quantity = ptr(0)
	in.Description = ptr("rich")

	sw, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, sw.ID)
	assert.Equal(t, 0, sw.Quantity)
	assert.Equal(t, "rich", sw.Description)
	assert.False(t, sw.CreatedAt.IsZero())
	assert.Equal(t, []events.Type{events.SweetCreated}, rec.Types())
}

func TestUpdate(t *testing.T) {
	svc, rec := newSweetService(t)
	ctx := context.Background()
	sw, err := svc.Create(ctx, cake())
	require.NoError(t, err)

	got, err := svc.Update(ctx, sw.ID, domain.SweetPatch{Name: ptr("  Fudge Cake "), Price: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, "Fudge Cake", got.Name)
	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, "Cake", got.Category)
	assert.Equal(t, 10, got.Quantity)

	_, err = svc.Update(ctx, sw.ID, domain.SweetPatch{Category: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(ctx, sw.ID, domain.SweetPatch{Quantity: ptr(-3)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, "missing", domain.SweetPatch{Price: ptr(1.0)})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Sweet not found", domain.Message(err))

	assert.Equal(t, []events.Type{events.SweetCreated, events.SweetUpdated}, rec.Types())
}

func TestPurchaseAndRestock(t *testing.T) {
	svc, rec := newSweetService(t)
	ctx := domain.WithUser(context.Background(), &domain.User{ID: "buyer-1"})
	in := cake()
	in.Quantity = ptr(1)
	sw, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := svc.Purchase(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = svc.Purchase(ctx, sw.ID)
	require.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, "Sweet out of stock", domain.Message(err))

	got, err = svc.Restock(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	_, err = svc.Purchase(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Restock(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	evs := rec.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, events.SweetPurchased, evs[1].Type)
	assert.Equal(t, 0, evs[1].Quantity)
	assert.Equal(t, "buyer-1", evs[1].ActorID)
	assert.Equal(t, events.SweetRestocked, evs[2].Type)
}

func TestDelete(t *testing.T) {
	svc, rec := newSweetService(t)
	ctx := context.Background()
	sw, err := svc.Create(ctx, cake())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sw.ID))
	assert.ErrorIs(t, svc.Delete(ctx, sw.ID), domain.ErrNotFound)
	assert.Equal(t, []events.Type{events.SweetCreated, events.SweetDeleted}, rec.Types())
}

func TestPublishFailureDoesNotFailTheRequest(t *testing.T) {
	svc, rec := newSweetService(t)
	rec.Err = errors.New("broker down")

	sw, err := svc.Create(context.Background(), cake())
	require.NoError(t, err)
	assert.NotEmpty(t, sw.ID)
}

func TestSearchInvertedRangeIsEmpty(t *testing.T) {
	svc, _ := newSweetService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, cake())
	require.NoError(t, err)

	got, err := svc.Search(ctx, domain.SweetFilter{MinPrice: ptr(50.0), MaxPrice: ptr(10.0)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Search(ctx, domain.SweetFilter{Category: domain.CategoryAll, MinPrice: ptr(20.0), MaxPrice: ptr(20.0)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
