package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Buyer struct {
	ID       string
	Username string
	Email    string
}

// Order is a completed checkout. It is immutable once items are attached,
// except for EmailSent which flips false -> true once after the invoice
// goes out.
type Order struct {
	ID        int64
	BuyerID   string
	EmailSent bool
	CreatedAt time.Time
	Items     []OrderItem
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// OrderItem carries the product name and price as they were at commit
// time. The snapshots never change afterwards, which is what keeps old
// invoices accurate when a vendor renames or reprices the product.
type OrderItem struct {
	ID                  int64
	OrderID             int64
	ProductID           string
	Quantity            int
	ProductNameSnapshot string
	PriceSnapshot       decimal.Decimal
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.PriceSnapshot.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Line is one priced cart line handed to the committer. Name and UnitPrice
// are copied verbatim into the item snapshots, not re-read from the
// catalog.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}
