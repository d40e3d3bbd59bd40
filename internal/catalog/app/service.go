package app

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, storeID, name, desc string, price decimal.Decimal) (domain.Product, error) {
	name = strings.TrimSpace(name)

	if storeID == "" || name == "" || price.IsNegative() {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		StoreID:     storeID,
		Name:        name,
		Description: desc,
		Price:       price,
		Active:      true,
	}

	return s.repo.Create(ctx, p)
}

// GetProduct returns an active product for the public browse surface.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Active {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, storeID string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, storeID, limit)
}

// Lookup resolves cart product ids against the live catalog. The result
// contains only active products; the caller decides what a smaller result
// means.
func (s *Service) Lookup(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.Lookup(ctx, ids)
}
