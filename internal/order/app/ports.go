package app

import (
	"context"

	"github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

type OrderRepo interface {
	// CreateOrderTx persists the order and all its items as a single
	// transaction. Either the whole order becomes visible or none of it.
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)

	Get(ctx context.Context, orderID int64) (domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Order, error)

	// MarkEmailSent flips email_sent to true. Calling it again once the
	// flag is set is a no-op.
	MarkEmailSent(ctx context.Context, orderID int64) error

	HasPurchased(ctx context.Context, buyerID, productID string) (bool, error)
}
