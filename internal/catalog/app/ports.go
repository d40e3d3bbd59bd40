package app

import (
	"context"

	"github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, storeID string, limit int) ([]domain.Product, error)

	// Lookup returns the active products among ids. Missing and inactive
	// ids are omitted, never an error.
	Lookup(ctx context.Context, ids []string) ([]domain.Product, error)
}
