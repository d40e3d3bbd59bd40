package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/SergioZanela/ecommerce-project/internal/cart/app"
	cartdomain "github.com/SergioZanela/ecommerce-project/internal/cart/domain"
	catalogapp "github.com/SergioZanela/ecommerce-project/internal/catalog/app"
	catalogdomain "github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
	checkoutapp "github.com/SergioZanela/ecommerce-project/internal/checkout/app"
	identitydomain "github.com/SergioZanela/ecommerce-project/internal/identity/domain"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	orderapp "github.com/SergioZanela/ecommerce-project/internal/order/app"
	orderdomain "github.com/SergioZanela/ecommerce-project/internal/order/domain"
	resetapp "github.com/SergioZanela/ecommerce-project/internal/reset/app"
	resetdomain "github.com/SergioZanela/ecommerce-project/internal/reset/domain"
)

// memStore backs both the cart service and the checkout claim path.
type memStore struct {
	mu    sync.Mutex
	carts map[string]cartdomain.Cart
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]cartdomain.Cart)}
}

func (s *memStore) Get(_ context.Context, sessionID string) (cartdomain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c.Clone(), nil
	}
	return cartdomain.New(), nil
}

func (s *memStore) Mutate(_ context.Context, sessionID string, fn func(cartdomain.Cart)) (cartdomain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	if !ok {
		c = cartdomain.New()
	}
	fn(c)
	s.carts[sessionID] = c
	return c.Clone(), nil
}

func (s *memStore) Claim(_ context.Context, sessionID string) (cartdomain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return cartdomain.New(), nil
	}
	delete(s.carts, sessionID)
	return c, nil
}

func (s *memStore) Save(_ context.Context, sessionID string, cart cartdomain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = cart.Clone()
	return nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]catalogdomain.Product
}

func (r *memProductRepo) Create(_ context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Get(_ context.Context, id string) (catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(_ context.Context, _ string, _ int) ([]catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalogdomain.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Lookup(_ context.Context, ids []string) ([]catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalogdomain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]orderdomain.Order
}

func (r *memOrderRepo) CreateOrderTx(_ context.Context, order orderdomain.Order) (orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *memOrderRepo) Get(_ context.Context, orderID int64) (orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) ListByBuyer(_ context.Context, buyerID string, _ int) ([]orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdomain.Order
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) MarkEmailSent(_ context.Context, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[orderID]; ok && !o.EmailSent {
		o.EmailSent = true
		r.orders[orderID] = o
	}
	return nil
}

func (r *memOrderRepo) HasPurchased(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	nextID int64
	tokens map[string]resetdomain.Token
}

func (r *memTokenRepo) Create(_ context.Context, t resetdomain.Token) (resetdomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.tokens[t.Value] = t
	return t, nil
}

func (r *memTokenRepo) Find(_ context.Context, value string) (resetdomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok {
		return resetdomain.Token{}, resetapp.ErrInvalidToken
	}
	return t, nil
}

func (r *memTokenRepo) Consume(_ context.Context, value string, now time.Time, _ string) (resetdomain.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[value]
	if !ok || !t.Valid(now) {
		return resetdomain.Token{}, resetapp.ErrInvalidToken
	}
	used := now
	t.UsedAt = &used
	r.tokens[value] = t
	return t, nil
}

type memUsers struct {
	byID map[string]identitydomain.User
}

func (u memUsers) ByID(_ context.Context, id string) (identitydomain.User, error) {
	user, ok := u.byID[id]
	if !ok {
		return identitydomain.User{}, identitydomain.ErrNotFound
	}
	return user, nil
}

func (u memUsers) ByEmail(_ context.Context, email string) (identitydomain.User, error) {
	for _, user := range u.byID {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return identitydomain.User{}, identitydomain.ErrNotFound
}

type captureMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *captureMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) last(t *testing.T) notify.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	mailer   *captureMailer
	keyboard catalogdomain.Product
	retired  catalogdomain.Product
}

var alice = identitydomain.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	keyboard := catalogdomain.Product{
		ID: uuid.NewString(), StoreID: "store-1", Name: "Keyboard",
		Price: decimal.RequireFromString("10.00"), Active: true, CreatedAt: time.Now(),
	}
	retired := catalogdomain.Product{
		ID: uuid.NewString(), StoreID: "store-1", Name: "Retired",
		Price: decimal.RequireFromString("3.00"), Active: false, CreatedAt: time.Now(),
	}

	store := newMemStore()
	products := &memProductRepo{products: map[string]catalogdomain.Product{
		keyboard.ID: keyboard,
		retired.ID:  retired,
	}}
	orders := &memOrderRepo{orders: make(map[int64]orderdomain.Order)}
	tokens := &memTokenRepo{tokens: make(map[string]resetdomain.Token)}
	users := memUsers{byID: map[string]identitydomain.User{alice.ID: alice}}
	mailer := &captureMailer{}

	catalogSvc := catalogapp.NewService(products)
	cartSvc := cartapp.NewService(store)
	orderSvc := orderapp.NewService(orders)
	notifier := notify.NewInvoiceNotifier(mailer, orderSvc)
	checkoutSvc := checkoutapp.NewService(store, catalogSvc, orderSvc, notifier)
	resetSvc := resetapp.NewService(tokens, users, mailer,
		func(token string) string { return "https://shop.example.com/password/reset/" + token },
		resetapp.DefaultValidity,
	)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(log, catalogSvc, cartSvc, checkoutSvc, orderSvc, resetSvc, users)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:      srv,
		client:   &http.Client{Jar: jar},
		mailer:   mailer,
		keyboard: keyboard,
		retired:  retired,
	}
}

// do issues a request through the env's cookie-carrying client and decodes
// the JSON response into out (when out is non-nil).
func (e *testEnv) do(t *testing.T, method, path, userID string, body, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestProductBrowse(t *testing.T) {
	env := newTestEnv(t)

	var list []productResponse
	status := env.do(t, http.MethodGet, "/api/products", "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Keyboard", list[0].Name)
	assert.Equal(t, "10.00", list[0].Price)

	// an inactive product is indistinguishable from a missing one
	status = env.do(t, http.MethodGet, "/api/products/"+env.retired.ID, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartAddViewRemove(t *testing.T) {
	env := newTestEnv(t)

	var cart cartResponse
	status := env.do(t, http.MethodPost, "/api/cart/items/"+env.keyboard.ID, "", nil, &cart)
	require.Equal(t, http.StatusOK, status)
	status = env.do(t, http.MethodPost, "/api/cart/items/"+env.keyboard.ID, "", nil, &cart)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "20.00", cart.Total)

	// the session cookie keeps the cart across requests
	status = env.do(t, http.MethodGet, "/api/cart", "", nil, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "20.00", cart.Total)

	status = env.do(t, http.MethodDelete, "/api/cart/items/"+env.keyboard.ID, "", nil, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.Total)
}

func TestAddInactiveProductToCart(t *testing.T) {
	env := newTestEnv(t)

	status := env.do(t, http.MethodPost, "/api/cart/items/"+env.retired.ID, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckoutRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	status := env.do(t, http.MethodPost, "/api/checkout", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	var resp errorResponse
	status := env.do(t, http.MethodPost, "/api/checkout", alice.ID, nil, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Your cart is empty.", resp.Error)
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)

	status := env.do(t, http.MethodPost, "/api/cart/items/"+env.keyboard.ID, "", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var out checkoutResponse
	status = env.do(t, http.MethodPost, "/api/checkout", alice.ID, nil, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Checkout complete! Invoice sent to your email.", out.Message)
	assert.True(t, out.Order.EmailSent)
	assert.Equal(t, "10.00", out.Order.Total)

	// the invoice email went to the buyer
	msg := env.mailer.last(t)
	assert.Equal(t, alice.Email, msg.To)
	assert.Contains(t, msg.Body, "INVOICE for Order #")

	// the cart is empty afterwards
	var cart cartResponse
	status = env.do(t, http.MethodGet, "/api/cart", "", nil, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart.Items)

	// and the order shows up in the buyer's history
	var history []orderResponse
	status = env.do(t, http.MethodGet, "/api/orders", alice.ID, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 1)
	assert.Equal(t, out.Order.ID, history[0].ID)
}

func TestForgotPasswordUniformResponse(t *testing.T) {
	env := newTestEnv(t)

	var known, unknown map[string]string
	status := env.do(t, http.MethodPost, "/api/password/forgot", "", forgotPasswordRequest{Email: alice.Email}, &known)
	require.Equal(t, http.StatusOK, status)
	status = env.do(t, http.MethodPost, "/api/password/forgot", "", forgotPasswordRequest{Email: "nobody@example.com"}, &unknown)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, known, unknown, "the response must not reveal whether an account exists")
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)

	status := env.do(t, http.MethodPost, "/api/password/forgot", "", forgotPasswordRequest{Email: alice.Email}, nil)
	require.Equal(t, http.StatusOK, status)

	body := env.mailer.last(t).Body
	i := strings.LastIndex(body, "/")
	require.Greater(t, i, 0)
	token := strings.TrimSpace(body[i+1:])

	var who map[string]string
	status = env.do(t, http.MethodGet, "/api/password/reset/"+token, "", nil, &who)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, alice.Username, who["username"])

	var done map[string]string
	status = env.do(t, http.MethodPost, "/api/password/reset/"+token, "", resetPasswordRequest{Credential: "new-hash"}, &done)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password reset successful. You can now log in.", done["message"])

	// the link is single use
	var resp errorResponse
	status = env.do(t, http.MethodPost, "/api/password/reset/"+token, "", resetPasswordRequest{Credential: "other"}, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "This reset link is invalid or has expired.", resp.Error)
}
