package http

import (
	"net/http"
	"strconv"
)

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	buyer, err := h.buyer(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.orders.History(r.Context(), buyer.ID, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.Order(r.Context(), orderID, buyer.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}
