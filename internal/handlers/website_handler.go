package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/middleware"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/service"
)

// WebsiteHandler manages the authenticated user's websites and their
// platform connections.
type WebsiteHandler struct {
	service *service.WebsiteService
}

func NewWebsiteHandler(service *service.WebsiteService) *WebsiteHandler {
	return &WebsiteHandler{
		service: service,
	}
}

// CreateWebsite handles POST /api/websites. The response is the only place
// the tracking token ever appears.
func (h *WebsiteHandler) CreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	website, err := h.service.CreateWebsite(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, website)
}

// ListWebsites handles GET /api/websites.
func (h *WebsiteHandler) ListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := h.service.ListWebsites(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, websites)
}

// CreateConnection handles POST /api/websites/{id}/connections.
func (h *WebsiteHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	websiteID := r.PathValue("id")

	var req models.CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conn, err := h.service.CreateConnection(r.Context(), websiteID, middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, conn)
}

// ListConnections handles GET /api/websites/{id}/connections.
func (h *WebsiteHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.service.ListConnections(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, conns)
}
