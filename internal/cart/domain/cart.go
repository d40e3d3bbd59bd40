package domain

import "encoding/json"

// Cart maps a product id to the quantity the buyer selected. It lives only
// in session storage and is serialized as a flat JSON object.
type Cart map[string]int

func New() Cart {
	return Cart{}
}

// Add increments the quantity for productID by 1, creating the entry at 1
// if absent. No catalog check happens here; pricing resolves stale entries
// later.
func (c Cart) Add(productID string) {
	c[productID] = c[productID] + 1
}

// Remove deletes the entry for productID. Removing an absent entry is a
// no-op.
func (c Cart) Remove(productID string) {
	delete(c, productID)
}

func (c Cart) Clear() {
	for k := range c {
		delete(c, k)
	}
}

func (c Cart) Quantity(productID string) int {
	return c[productID]
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func (c Cart) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses a stored session payload. Anything that is not a JSON
// object of positive quantities is treated as an empty cart, never as an
// error: a corrupt session must not lock the buyer out.
func Decode(raw []byte) Cart {
	if len(raw) == 0 {
		return New()
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil || c == nil {
		return New()
	}

	for id, qty := range c {
		if qty <= 0 {
			delete(c, id)
		}
	}
	return c
}
