package http

import (
	"encoding/json"
	"net/http"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// The forgot endpoint answers identically whether or not the email has an
// account, so nothing about account existence can be probed here.
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.reset.RequestReset(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email exists, a reset link has been sent.",
	})
}

func (h *Handler) handleValidateResetToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.reset.Validate(r.Context(), r.PathValue("token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

type resetPasswordRequest struct {
	Credential string `json:"credential"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.reset.Consume(r.Context(), r.PathValue("token"), req.Credential); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successful. You can now log in.",
	})
}
