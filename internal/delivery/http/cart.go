package http

import (
	"net/http"

	checkoutdomain "github.com/SergioZanela/ecommerce-project/internal/checkout/domain"
)

type cartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	Items   []cartLineResponse `json:"items"`
	Total   string             `json:"total"`
	Dropped int                `json:"dropped,omitempty"`
}

func toCartResponse(priced checkoutdomain.PricedCart) cartResponse {
	items := make([]cartLineResponse, 0, len(priced.Lines))
	for _, l := range priced.Lines {
		items = append(items, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	return cartResponse{
		Items:   items,
		Total:   priced.Total.StringFixed(2),
		Dropped: priced.Dropped,
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	priced, err := h.checkout.ViewCart(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCartResponse(priced))
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	// Adding checks the product exists and is active; a product going
	// stale after this point is the pricer's problem.
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.cart.AddItem(r.Context(), sid, product.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	priced, err := h.checkout.ViewCart(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCartResponse(priced))
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	if _, err := h.cart.RemoveItem(r.Context(), sid, r.PathValue("productID")); err != nil {
		h.writeError(w, r, err)
		return
	}

	priced, err := h.checkout.ViewCart(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCartResponse(priced))
}
