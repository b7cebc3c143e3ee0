package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/service"
)

// WaitlistHandler takes public beta signups. No authentication.
type WaitlistHandler struct {
	service *service.WaitlistService
}

func NewWaitlistHandler(service *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{
		service: service,
	}
}

// Join handles POST /api/waitlist. A fresh signup answers 201; an email that
// already signed up answers 200 with the existing entry.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.WaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, created, err := h.service.Join(r.Context(), &req, httputil.GetClientIP(r), r.Header.Get("User-Agent"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, entry)
}
