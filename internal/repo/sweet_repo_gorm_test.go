package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/core/database/dbtest"
	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

func seed(t *testing.T, r *SweetRepo, name, category string, price float64, qty int) *domain.Sweet {
	t.Helper()
	s := &domain.Sweet{ID: utils.NewID(), Name: name, Category: category, Price: price, Quantity: qty}
	require.NoError(t, r.Create(context.Background(), s))
	return s
}

func names(sweets []domain.Sweet) []string {
	out := make([]string, len(sweets))
	for i, s := range sweets {
		out[i] = s.Name
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestSweetSearch(t *testing.T) {
	r := NewSweetRepo(dbtest.NewDB(t))
	ctx := context.Background()
	seed(t, r, "Chocolate Cake", "Cake", 20, 10)
	seed(t, r, "Gummy Bears", "Candy", 5, 100)
	seed(t, r, "Dark Chocolate Bar", "Chocolate", 60, 3)
	seed(t, r, "Cheesecake", "Cake", 75, 1)
	seed(t, r, "100% Cocoa", "Chocolate", 10, 2)

	cases := []struct {
		name string
		f    domain.SweetFilter
		want []string
	}{
		{"no filter", domain.SweetFilter{}, []string{"Chocolate Cake", "Gummy Bears", "Dark Chocolate Bar", "Cheesecake", "100% Cocoa"}},
		{"query matches name or category", domain.SweetFilter{Query: "CHOCO"}, []string{"Chocolate Cake", "Dark Chocolate Bar", "100% Cocoa"}},
		{"category exact", domain.SweetFilter{Category: "Cake"}, []string{"Chocolate Cake", "Cheesecake"}},
		{"category All", domain.SweetFilter{Category: domain.CategoryAll}, []string{"Chocolate Cake", "Gummy Bears", "Dark Chocolate Bar", "Cheesecake", "100% Cocoa"}},
		{"price range inclusive", domain.SweetFilter{MinPrice: ptr(10.0), MaxPrice: ptr(60.0)}, []string{"Chocolate Cake", "Dark Chocolate Bar", "100% Cocoa"}},
		{"facets AND", domain.SweetFilter{Query: "cake", MaxPrice: ptr(50.0)}, []string{"Chocolate Cake"}},
		{"wildcards are literal", domain.SweetFilter{Query: "%"}, []string{"100% Cocoa"}},
		{"no match", domain.SweetFilter{Category: "Pie"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Search(ctx, tc.f)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, names(got))
		})
	}
}

func TestSweetUpdateWritesProvidedColumnsOnly(t *testing.T) {
	r := NewSweetRepo(dbtest.NewDB(t))
	ctx := context.Background()
	s := seed(t, r, "Toffee", "Candy", 3.5, 7)

	got, err := r.Update(ctx, s.ID, domain.SweetPatch{Price: ptr(0.0), Description: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Price)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, "Toffee", got.Name)

	got, err = r.Update(ctx, s.ID, domain.SweetPatch{Quantity: ptr(0), ImageURL: ptr("http://img/t.png")})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, "http://img/t.png", got.ImageURL)

	got, err = r.Update(ctx, s.ID, domain.SweetPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Toffee", got.Name)

	_, err = r.Update(ctx, "missing", domain.SweetPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweetDelete(t *testing.T) {
	r := NewSweetRepo(dbtest.NewDB(t))
	ctx := context.Background()
	s := seed(t, r, "Fudge", "Candy", 4, 1)

	got, err := r.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fudge", got.Name)

	found, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = r.Delete(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustQuantity(t *testing.T) {
	r := NewSweetRepo(dbtest.NewDB(t))
	ctx := context.Background()
	s := seed(t, r, "Lollipop", "Candy", 1, 1)

	got, err := r.AdjustQuantity(ctx, s.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = r.AdjustQuantity(ctx, s.ID, -1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	got, err = r.AdjustQuantity(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	_, err = r.AdjustQuantity(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.AdjustQuantity(ctx, "missing", -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	cases := []struct {
		name   string
		open   func(t *testing.T) *SweetRepo
		stock  int
		buyers int
	}{
		{"single connection", func(t *testing.T) *SweetRepo { return NewSweetRepo(dbtest.NewDB(t)) }, 3, 12},
		{"connection pool", func(t *testing.T) *SweetRepo { return NewSweetRepo(dbtest.NewFileDB(t, 8)) }, 5, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.open(t)
			ctx := context.Background()
			s := seed(t, r, "Macaron", "Pastry", 2, tc.stock)

			var (
				wg               sync.WaitGroup
				mu               sync.Mutex
				sold, outOfStock int
				failures         []error
			)
			start := make(chan struct{})
			for i := 0; i < tc.buyers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := r.AdjustQuantity(ctx, s.ID, -1)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						sold++
					case errors.Is(err, domain.ErrOutOfStock):
						outOfStock++
					default:
						failures = append(failures, err)
					}
				}()
			}
			close(start)
			wg.Wait()

			require.Empty(t, failures)
			assert.Equal(t, tc.stock, sold)
			assert.Equal(t, tc.buyers-tc.stock, outOfStock)
			got, err := r.FindByID(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Quantity)
		})
	}
}
