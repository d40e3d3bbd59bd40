package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
)

type fakeRepo struct {
	products map[string]domain.Product
}

func (f fakeRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	return p, nil
}

func (f fakeRepo) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (f fakeRepo) List(_ context.Context, _ string, _ int) ([]domain.Product, error) {
	return nil, nil
}

func (f fakeRepo) Lookup(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(fakeRepo{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "store-1", "   ", "x", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative price -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "store-1", "Keyboard", "x", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing store -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), "", "Keyboard", "x", decimal.NewFromInt(10))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("valid -> active product", func(t *testing.T) {
		p, err := svc.CreateProduct(context.Background(), "store-1", "Keyboard", "x", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, p.Active)
		assert.Equal(t, "Keyboard", p.Name)
	})
}

func TestGetProductHidesInactive(t *testing.T) {
	svc := NewService(fakeRepo{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Keyboard", Active: true},
		"p2": {ID: "p2", Name: "Retired", Active: false},
	}})

	_, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	_, err = svc.GetProduct(context.Background(), "p2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupEmptyIDs(t *testing.T) {
	svc := NewService(fakeRepo{})

	got, err := svc.Lookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
