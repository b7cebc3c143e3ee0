package handlers

import (
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/middleware"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/service"
)

// DashboardHandler serves the derived read endpoints: health metrics,
// duplicate groups and alerts. A website with no events answers with empty
// arrays, not errors.
type DashboardHandler struct {
	websites *service.WebsiteService
	insights *service.InsightService
}

func NewDashboardHandler(websites *service.WebsiteService, insights *service.InsightService) *DashboardHandler {
	return &DashboardHandler{
		websites: websites,
		insights: insights,
	}
}

// resolveOwned gates every dashboard read on ownership. A website that does
// not exist and a website owned by someone else both come back as 404.
func (h *DashboardHandler) resolveOwned(w http.ResponseWriter, r *http.Request) (*models.Website, bool) {
	website, err := h.websites.GetOwnedWebsite(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return website, true
}

// Health handles GET /api/websites/{id}/health.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	website, ok := h.resolveOwned(w, r)
	if !ok {
		return
	}

	metrics, err := h.insights.Score(r.Context(), website.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, metrics)
}

// Alerts handles GET /api/websites/{id}/alerts.
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	website, ok := h.resolveOwned(w, r)
	if !ok {
		return
	}

	alerts, err := h.insights.Alerts(r.Context(), website.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, alerts)
}

// Duplicates handles GET /api/websites/{id}/duplicates.
func (h *DashboardHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	website, ok := h.resolveOwned(w, r)
	if !ok {
		return
	}

	groups, err := h.insights.FindDuplicates(r.Context(), website.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.DuplicateGroup{}
	}

	httputil.WriteJSON(w, http.StatusOK, groups)
}
