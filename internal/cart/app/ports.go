package app

import (
	"context"

	"github.com/SergioZanela/ecommerce-project/internal/cart/domain"
)

// SessionStore persists one cart per visitor session.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)

	// Mutate applies fn to the stored cart as one read-modify-write with
	// no lost updates and returns the cart that was written.
	Mutate(ctx context.Context, sessionID string, fn func(domain.Cart)) (domain.Cart, error)

	// Claim atomically takes the cart out of the session, leaving it
	// empty. Checkout uses this so two concurrent checkouts cannot both
	// commit the same cart.
	Claim(ctx context.Context, sessionID string) (domain.Cart, error)

	// Save writes the cart back verbatim. Used to restore a claimed cart
	// after a rejected checkout.
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
}
