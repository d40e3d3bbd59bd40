package app

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	cartdomain "github.com/SergioZanela/ecommerce-project/internal/cart/domain"
	"github.com/SergioZanela/ecommerce-project/internal/checkout/domain"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	orderdomain "github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

type Service struct {
	carts    CartStore
	catalog  CatalogReader
	orders   Committer
	notifier InvoiceNotifier
}

func NewService(carts CartStore, catalog CatalogReader, orders Committer, notifier InvoiceNotifier) *Service {
	return &Service{
		carts:    carts,
		catalog:  catalog,
		orders:   orders,
		notifier: notifier,
	}
}

// Receipt is what a successful (or partially successful) checkout returns.
// EmailSent is false when the order committed but the invoice dispatch
// failed.
type Receipt struct {
	Order     orderdomain.Order
	Priced    domain.PricedCart
	EmailSent bool
}

// ViewCart prices the session cart without touching it.
func (s *Service) ViewCart(ctx context.Context, sessionID string) (domain.PricedCart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return domain.PricedCart{}, err
	}
	return s.price(ctx, cart)
}

// Checkout claims the session cart, prices it, commits the order and
// dispatches the invoice. Pre-commit rejections put the cart back exactly
// as it was, so the buyer can fix the problem and retry. Once the order is
// committed the cart stays cleared no matter what the notifier does.
func (s *Service) Checkout(ctx context.Context, sessionID string, buyer orderdomain.Buyer) (Receipt, error) {
	claimed, err := s.carts.Claim(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}

	priced, err := s.price(ctx, claimed)
	if err != nil {
		return Receipt{}, s.restore(ctx, sessionID, claimed, err)
	}

	lines := make([]orderdomain.Line, 0, len(priced.Lines))
	for _, l := range priced.Lines {
		lines = append(lines, orderdomain.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	order, err := s.orders.Commit(ctx, buyer, lines)
	if err != nil {
		return Receipt{}, s.restore(ctx, sessionID, claimed, err)
	}

	receipt := Receipt{Order: order, Priced: priced}

	if err := s.notifier.Notify(ctx, invoiceFromPriced(order, buyer, priced)); err != nil {
		return receipt, err
	}

	receipt.EmailSent = true
	receipt.Order.EmailSent = true
	return receipt, nil
}

// ResendInvoice re-renders the invoice from the order's stored snapshots
// and dispatches it again. This is the only retry path after a
// notification failure; checkout itself is never re-entered for a
// committed order.
func (s *Service) ResendInvoice(ctx context.Context, orderID int64, buyer orderdomain.Buyer) error {
	order, err := s.orders.Order(ctx, orderID, buyer.ID)
	if err != nil {
		return err
	}
	return s.notifier.Notify(ctx, invoiceFromOrder(order, buyer))
}

func (s *Service) restore(ctx context.Context, sessionID string, cart cartdomain.Cart, cause error) error {
	if cart.IsEmpty() {
		return cause
	}
	if err := s.carts.Save(ctx, sessionID, cart); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Service) price(ctx context.Context, cart cartdomain.Cart) (domain.PricedCart, error) {
	priced := domain.PricedCart{Total: decimal.Zero}
	if cart.IsEmpty() {
		return priced, nil
	}

	products, err := s.catalog.Lookup(ctx, cart.ProductIDs())
	if err != nil {
		return domain.PricedCart{}, err
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	for productID, qty := range cart {
		i, ok := byID[productID]
		if !ok {
			// Missing or inactive: the line is silently dropped and
			// only surfaces through the Dropped count.
			priced.Dropped++
			continue
		}

		p := products[i]
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))

		priced.Lines = append(priced.Lines, domain.PricedLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
			LineTotal: lineTotal,
		})
		priced.Total = priced.Total.Add(lineTotal)
	}

	// Map iteration order is random; invoices must not be.
	sort.Slice(priced.Lines, func(i, j int) bool {
		if priced.Lines[i].Name != priced.Lines[j].Name {
			return priced.Lines[i].Name < priced.Lines[j].Name
		}
		return priced.Lines[i].ProductID < priced.Lines[j].ProductID
	})

	return priced, nil
}

func invoiceFromPriced(order orderdomain.Order, buyer orderdomain.Buyer, priced domain.PricedCart) notify.Invoice {
	lines := make([]notify.InvoiceLine, 0, len(priced.Lines))
	for _, l := range priced.Lines {
		lines = append(lines, notify.InvoiceLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return notify.Invoice{
		OrderID:    order.ID,
		BuyerName:  buyer.Username,
		BuyerEmail: buyer.Email,
		Lines:      lines,
		Total:      priced.Total,
	}
}

func invoiceFromOrder(order orderdomain.Order, buyer orderdomain.Buyer) notify.Invoice {
	lines := make([]notify.InvoiceLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, notify.InvoiceLine{
			Name:      it.ProductNameSnapshot,
			Quantity:  it.Quantity,
			UnitPrice: it.PriceSnapshot,
			LineTotal: it.LineTotal(),
		})
	}
	return notify.Invoice{
		OrderID:    order.ID,
		BuyerName:  buyer.Username,
		BuyerEmail: buyer.Email,
		Lines:      lines,
		Total:      order.Total(),
	}
}
