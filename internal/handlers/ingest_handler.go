package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/metrics"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/service"
)

const maxIngestBodyBytes = 64 * 1024

// IngestHandler accepts tracking events from the client-side snippet. It
// authenticates with the website's tracking token, not a user session.
type IngestHandler struct {
	websites *service.WebsiteService
	ingest   *service.IngestService
	logger   *logging.Logger
}

func NewIngestHandler(websites *service.WebsiteService, ingest *service.IngestService, logger *logging.Logger) *IngestHandler {
	return &IngestHandler{
		websites: websites,
		ingest:   ingest,
		logger:   logger,
	}
}

// IngestEvent handles POST /api/ingest/event.
func (h *IngestHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	token := httputil.ExtractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		metrics.EventsTotal.WithLabelValues("unauthorized").Inc()
		httputil.WriteError(w, http.StatusUnauthorized, "missing tracking token")
		return
	}

	website, err := h.websites.ResolveTrackingToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			metrics.EventsTotal.WithLabelValues("unauthorized").Inc()
			httputil.WriteError(w, http.StatusUnauthorized, "invalid tracking token")
			return
		}
		writeServiceError(w, err)
		return
	}

	var req models.IngestEventRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.EventsTotal.WithLabelValues("rejected").Inc()
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.ingest.Ingest(r.Context(), website, &req, httputil.GetClientIP(r))
	if err != nil {
		if service.IsValidationError(err) {
			metrics.EventsTotal.WithLabelValues("rejected").Inc()
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "event ingestion failed",
			logging.WebsiteID(website.ID), logging.Error(err))
		writeServiceError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.IngestEventResponse{
		ID:         event.ID,
		ReceivedAt: event.ReceivedAt.Unix(),
	})
}
