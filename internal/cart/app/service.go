package app

import (
	"context"

	"github.com/SergioZanela/ecommerce-project/internal/cart/domain"
)

type Service struct {
	store SessionStore
}

func NewService(store SessionStore) *Service {
	return &Service{store: store}
}

func (s *Service) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *Service) AddItem(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.store.Mutate(ctx, sessionID, func(c domain.Cart) {
		c.Add(productID)
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.store.Mutate(ctx, sessionID, func(c domain.Cart) {
		c.Remove(productID)
	})
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	_, err := s.store.Mutate(ctx, sessionID, func(c domain.Cart) {
		c.Clear()
	})
	return err
}
