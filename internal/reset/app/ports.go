package app

import (
	"context"
	"time"

	identitydomain "github.com/SergioZanela/ecommerce-project/internal/identity/domain"
	"github.com/SergioZanela/ecommerce-project/internal/reset/domain"
)

type TokenRepo interface {
	Create(ctx context.Context, t domain.Token) (domain.Token, error)
	Find(ctx context.Context, value string) (domain.Token, error)

	// Consume marks the token used and applies the new credential to its
	// user as one transaction. The update is conditional on the token
	// still being unused and unexpired, so of two concurrent requests
	// carrying the same token at most one succeeds.
	Consume(ctx context.Context, value string, now time.Time, credential string) (domain.Token, error)
}

type Users interface {
	ByID(ctx context.Context, id string) (identitydomain.User, error)
	ByEmail(ctx context.Context, email string) (identitydomain.User, error)
}
