package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice is everything needed to render and dispatch one order invoice.
// It is built from commit-time snapshots, never from the live catalog, so
// re-rendering it later yields the same bytes.
type Invoice struct {
	OrderID    int64
	BuyerName  string
	BuyerEmail string
	Lines      []InvoiceLine
	Total      decimal.Decimal
}

type InvoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

func (inv Invoice) Filename() string {
	return fmt.Sprintf("invoice_order_%d.txt", inv.OrderID)
}

func (inv Invoice) Subject() string {
	return fmt.Sprintf("Your Invoice - Order #%d", inv.OrderID)
}

func (inv Invoice) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "INVOICE for Order #%d\n", inv.OrderID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", inv.BuyerName, inv.BuyerEmail)
	b.WriteString("\nItems:\n")

	for _, line := range inv.Lines {
		fmt.Fprintf(&b, "- %s (x%d) @ $%s = $%s\n",
			line.Name, line.Quantity,
			line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTOTAL: $%s\n", inv.Total.StringFixed(2))
	b.WriteString("\nThank you for your purchase!")

	return b.String()
}
