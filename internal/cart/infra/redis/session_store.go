package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SergioZanela/ecommerce-project/internal/cart/domain"
)

const (
	keyPrefix = "cart:"

	// Carts ride along with the visitor session; anything older than this
	// is an abandoned session.
	sessionTTL = 7 * 24 * time.Hour

	// Optimistic retries when a concurrent request for the same session
	// touches the cart between our read and write.
	maxMutateRetries = 5
)

type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart session: %w", err)
	}
	return domain.Decode(raw), nil
}

func (s *SessionStore) Mutate(ctx context.Context, sessionID string, fn func(domain.Cart)) (domain.Cart, error) {
	k := key(sessionID)
	var result domain.Cart

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		cart := domain.Decode(raw)
		fn(cart)

		payload, err := cart.Encode()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, sessionTTL)
			return nil
		})
		if err != nil {
			return err
		}

		result = cart
		return nil
	}

	for i := 0; i < maxMutateRetries; i++ {
		err := s.client.Watch(ctx, txn, k)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("failed to update cart session: %w", err)
	}

	return nil, fmt.Errorf("failed to update cart session: too many concurrent writes")
}

// Claim removes the cart from the session and returns what was stored, as
// a single Redis operation. A concurrent Claim for the same session sees an
// empty cart.
func (s *SessionStore) Claim(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := s.client.GetDel(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim cart session: %w", err)
	}
	return domain.Decode(raw), nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	payload, err := cart.Encode()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(sessionID), payload, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to write cart session: %w", err)
	}
	return nil
}
