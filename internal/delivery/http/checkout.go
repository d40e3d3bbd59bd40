package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SergioZanela/ecommerce-project/internal/notify"
	orderdomain "github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	EmailSent bool                `json:"email_sent"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []orderItemResponse `json:"items"`
	Total     string              `json:"total"`
}

func toOrderResponse(o orderdomain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.PriceSnapshot.StringFixed(2),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:        o.ID,
		EmailSent: o.EmailSent,
		CreatedAt: o.CreatedAt,
		Items:     items,
		Total:     o.Total().StringFixed(2),
	}
}

type checkoutResponse struct {
	Order   orderResponse `json:"order"`
	Dropped int           `json:"dropped,omitempty"`
	Message string        `json:"message"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	buyer, err := h.buyer(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sid := h.sessionID(w, r)

	receipt, err := h.checkout.Checkout(r.Context(), sid, buyer)
	if err != nil {
		// The order exists once committed; a notification failure is
		// reported with the order attached so the buyer can retry the
		// send, not the checkout.
		if errors.Is(err, notify.ErrNotification) {
			h.writeJSON(w, http.StatusBadGateway, checkoutResponse{
				Order:   toOrderResponse(receipt.Order),
				Dropped: receipt.Priced.Dropped,
				Message: "Order placed, but the invoice email failed. Use resend-invoice or contact support.",
			})
			return
		}
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:   toOrderResponse(receipt.Order),
		Dropped: receipt.Priced.Dropped,
		Message: "Checkout complete! Invoice sent to your email.",
	})
}

func (h *Handler) handleResendInvoice(w http.ResponseWriter, r *http.Request) {
	buyer, err := h.buyer(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	if err := h.checkout.ResendInvoice(r.Context(), orderID, buyer); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice sent to your email."})
}
