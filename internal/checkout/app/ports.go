package app

import (
	"context"

	cartdomain "github.com/SergioZanela/ecommerce-project/internal/cart/domain"
	catalogdomain "github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	orderdomain "github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

type CartStore interface {
	Get(ctx context.Context, sessionID string) (cartdomain.Cart, error)
	Claim(ctx context.Context, sessionID string) (cartdomain.Cart, error)
	Save(ctx context.Context, sessionID string, cart cartdomain.Cart) error
}

type CatalogReader interface {
	Lookup(ctx context.Context, ids []string) ([]catalogdomain.Product, error)
}

type Committer interface {
	Commit(ctx context.Context, buyer orderdomain.Buyer, lines []orderdomain.Line) (orderdomain.Order, error)
	Order(ctx context.Context, orderID int64, buyerID string) (orderdomain.Order, error)
}

type InvoiceNotifier interface {
	Notify(ctx context.Context, inv notify.Invoice) error
}
