package domain

import "github.com/shopspring/decimal"

type PricedLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// PricedCart is a cart resolved against the live catalog. Dropped counts
// the entries omitted because their product disappeared or went inactive;
// the UI can tell the buyer instead of failing the request.
type PricedCart struct {
	Lines   []PricedLine
	Total   decimal.Decimal
	Dropped int
}
