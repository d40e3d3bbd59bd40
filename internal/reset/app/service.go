package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	identitydomain "github.com/SergioZanela/ecommerce-project/internal/identity/domain"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	"github.com/SergioZanela/ecommerce-project/internal/reset/domain"
)

// ErrInvalidToken covers absent, already-used and expired tokens alike.
// Collapsing the three keeps the reset surface from leaking which one
// applied.
var ErrInvalidToken = errors.New("reset token is invalid or has expired")

var ErrMissingCredential = errors.New("credential must not be empty")

const DefaultValidity = 30 * time.Minute

// ResetURLBuilder turns a raw token value into the link the email carries.
// The routing layer owns the URL shape; this service only owns the token.
type ResetURLBuilder func(token string) string

type Service struct {
	tokens   TokenRepo
	users    Users
	mailer   notify.Mailer
	resetURL ResetURLBuilder
	validity time.Duration

	now func() time.Time
}

func NewService(tokens TokenRepo, users Users, mailer notify.Mailer, resetURL ResetURLBuilder, validity time.Duration) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Service{
		tokens:   tokens,
		users:    users,
		mailer:   mailer,
		resetURL: resetURL,
		validity: validity,
		now:      time.Now,
	}
}

// Issue creates and persists a fresh single-use token for the user.
func (s *Service) Issue(ctx context.Context, userID string) (domain.Token, error) {
	value, err := domain.NewValue()
	if err != nil {
		return domain.Token{}, err
	}

	return s.tokens.Create(ctx, domain.Token{
		UserID:    userID,
		Value:     value,
		ExpiresAt: s.now().Add(s.validity),
	})
}

// RequestReset looks the email up and, when an account exists, issues a
// token and emails the reset link. An unknown email is a silent success;
// the caller shows the same message either way so nothing about account
// existence leaks.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}

	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, identitydomain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Reset your password using this link (expires in %d minutes):\n\n%s\n",
		int(s.validity.Minutes()), s.resetURL(token.Value),
	)

	return s.mailer.Send(ctx, notify.Message{
		To:      user.Email,
		ToName:  user.Username,
		Subject: "Password reset",
		Body:    body,
	})
}

// Validate returns the token's user when the token is still usable. Every
// failure mode comes back as the same ErrInvalidToken.
func (s *Service) Validate(ctx context.Context, value string) (identitydomain.User, error) {
	token, err := s.tokens.Find(ctx, value)
	if err != nil {
		return identitydomain.User{}, err
	}
	if !token.Valid(s.now()) {
		return identitydomain.User{}, ErrInvalidToken
	}

	user, err := s.users.ByID(ctx, token.UserID)
	if errors.Is(err, identitydomain.ErrNotFound) {
		return identitydomain.User{}, ErrInvalidToken
	}
	return user, err
}

// Consume re-validates inside the store's conditional update and applies
// the new credential, closing the window between a Validate call and the
// actual reset. The credential arrives pre-hashed; hashing belongs to the
// auth surface.
func (s *Service) Consume(ctx context.Context, value, credential string) error {
	if credential == "" {
		return ErrMissingCredential
	}

	_, err := s.tokens.Consume(ctx, value, s.now(), credential)
	return err
}
