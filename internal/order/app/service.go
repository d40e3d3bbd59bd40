package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingContact = errors.New("buyer has no email address")
	ErrNotFound       = errors.New("order not found")
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// Commit turns priced cart lines into a persisted order. Both rejections
// happen before any write, so a failed checkout leaves no partial order
// behind.
func (s *Service) Commit(ctx context.Context, buyer domain.Buyer, lines []domain.Line) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	if strings.TrimSpace(buyer.Email) == "" {
		return domain.Order{}, ErrMissingContact
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("line %d: quantity must be positive, got %d", i, line.Quantity)
		}
		if line.UnitPrice.IsNegative() {
			return domain.Order{}, fmt.Errorf("line %d: unit price cannot be negative, got %s", i, line.UnitPrice)
		}

		items = append(items, domain.OrderItem{
			ProductID:           line.ProductID,
			Quantity:            line.Quantity,
			ProductNameSnapshot: line.Name,
			PriceSnapshot:       line.UnitPrice,
		})
	}

	return s.repo.CreateOrderTx(ctx, domain.Order{
		BuyerID: buyer.ID,
		Items:   items,
	})
}

// Order returns one order, but only to its buyer.
func (s *Service) Order(ctx context.Context, orderID int64, buyerID string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.BuyerID != buyerID {
		return domain.Order{}, ErrNotFound
	}
	return order, nil
}

func (s *Service) History(ctx context.Context, buyerID string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByBuyer(ctx, buyerID, limit)
}

func (s *Service) MarkEmailSent(ctx context.Context, orderID int64) error {
	return s.repo.MarkEmailSent(ctx, orderID)
}

// HasPurchased reports whether the buyer has ever bought the product. The
// review surface uses it to mark reviews as verified.
func (s *Service) HasPurchased(ctx context.Context, buyerID, productID string) (bool, error) {
	return s.repo.HasPurchased(ctx, buyerID, productID)
}
