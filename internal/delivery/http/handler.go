package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	cartapp "github.com/SergioZanela/ecommerce-project/internal/cart/app"
	catalogapp "github.com/SergioZanela/ecommerce-project/internal/catalog/app"
	checkoutapp "github.com/SergioZanela/ecommerce-project/internal/checkout/app"
	identitydomain "github.com/SergioZanela/ecommerce-project/internal/identity/domain"
	"github.com/SergioZanela/ecommerce-project/internal/notify"
	orderapp "github.com/SergioZanela/ecommerce-project/internal/order/app"
	orderdomain "github.com/SergioZanela/ecommerce-project/internal/order/domain"
	resetapp "github.com/SergioZanela/ecommerce-project/internal/reset/app"
)

const sessionCookie = "session_id"

// UserDirectory resolves the authenticated user id set by the external
// auth layer into a buyer identity.
type UserDirectory interface {
	ByID(ctx context.Context, id string) (identitydomain.User, error)
}

// Handler wires all request-scoped operations of the core into one HTTP
// surface.
type Handler struct {
	log      *slog.Logger
	catalog  *catalogapp.Service
	cart     *cartapp.Service
	checkout *checkoutapp.Service
	orders   *orderapp.Service
	reset    *resetapp.Service
	users    UserDirectory
}

func NewHandler(
	log *slog.Logger,
	catalog *catalogapp.Service,
	cart *cartapp.Service,
	checkout *checkoutapp.Service,
	orders *orderapp.Service,
	reset *resetapp.Service,
	users UserDirectory,
) *Handler {
	return &Handler{
		log:      log,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		orders:   orders,
		reset:    reset,
		users:    users,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items/{productID}", h.handleAddToCart)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.handleRemoveFromCart)

	mux.HandleFunc("POST /api/checkout", h.handleCheckout)
	mux.HandleFunc("GET /api/orders", h.handleMyOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("POST /api/orders/{id}/resend-invoice", h.handleResendInvoice)

	mux.HandleFunc("POST /api/password/forgot", h.handleForgotPassword)
	mux.HandleFunc("GET /api/password/reset/{token}", h.handleValidateResetToken)
	mux.HandleFunc("POST /api/password/reset/{token}", h.handleResetPassword)
}

// sessionID reads the visitor's session cookie, minting one on first
// contact.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// buyer resolves the X-User-ID header (set by the external auth layer)
// into a buyer identity.
func (h *Handler) buyer(r *http.Request) (orderdomain.Buyer, error) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return orderdomain.Buyer{}, errUnauthenticated
	}

	user, err := h.users.ByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identitydomain.ErrNotFound) {
			return orderdomain.Buyer{}, errUnauthenticated
		}
		return orderdomain.Buyer{}, err
	}

	return orderdomain.Buyer{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

var errUnauthenticated = errors.New("not authenticated")

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps application errors onto HTTP statuses. Everything
// user-correctable comes back 4xx with the message the original flow
// showed.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, orderapp.ErrEmptyCart):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Your cart is empty."})
	case errors.Is(err, orderapp.ErrMissingContact):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Please add an email address to your account before checkout."})
	case errors.Is(err, resetapp.ErrInvalidToken):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "This reset link is invalid or has expired."})
	case errors.Is(err, resetapp.ErrMissingCredential):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Password must not be empty."})
	case errors.Is(err, catalogapp.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input"})
	case errors.Is(err, catalogapp.ErrNotFound), errors.Is(err, orderapp.ErrNotFound), errors.Is(err, identitydomain.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, notify.ErrNotification):
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Invoice email could not be sent. Contact support or retry sending."})
	default:
		h.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
