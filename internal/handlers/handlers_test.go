package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/config"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/middleware"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/service"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation error", &service.ValidationError{Field: "email", Reason: "bad"}, http.StatusBadRequest},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"website not found", repository.ErrWebsiteNotFound, http.StatusNotFound},
		{"user not found", repository.ErrUserNotFound, http.StatusNotFound},
		{"token not found", repository.ErrTokenNotFound, http.StatusUnauthorized},
		{"unknown error", errors.New("pg connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func newIngestFixture(t *testing.T) (*IngestHandler, *models.Website) {
	t.Helper()

	repo := repository.NewInMemoryRepository()
	logger := logging.Default()
	noCache := cache.NewHealthCache(nil, 0, false)
	websites := service.NewWebsiteService(repo)

	website, err := websites.CreateWebsite(context.Background(), "user-1", &models.CreateWebsiteRequest{
		URL:  "https://shop.example",
		Name: "Shop",
	})
	require.NoError(t, err)

	return NewIngestHandler(websites, service.NewIngestService(repo, noCache, logger), logger), website
}

func TestIngestEventMalformedBody(t *testing.T) {
	handler, website := newIngestFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/event", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+website.TrackingToken)
	rec := httptest.NewRecorder()

	handler.IngestEvent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestEventValidationFailure(t *testing.T) {
	handler, website := newIngestFixture(t)

	body, _ := json.Marshal(models.IngestEventRequest{EventName: "", EventTime: time.Now().Unix()})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/event", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+website.TrackingToken)
	rec := httptest.NewRecorder()

	handler.IngestEvent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestEventAccepted(t *testing.T) {
	handler, website := newIngestFixture(t)

	body, _ := json.Marshal(models.IngestEventRequest{
		EventName: "Purchase",
		EventTime: time.Now().Unix(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/event", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer "+website.TrackingToken)
	rec := httptest.NewRecorder()

	handler.IngestEvent(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.IngestEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.NotZero(t, resp.ReceivedAt)
}

func TestDuplicatesEndpointReturnsEmptyArray(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	websites := service.NewWebsiteService(repo)

	website, err := websites.CreateWebsite(context.Background(), "user-1", &models.CreateWebsiteRequest{
		URL:  "https://shop.example",
		Name: "Shop",
	})
	require.NoError(t, err)

	insights := service.NewInsightService(repo, cache.NewHealthCache(nil, 0, false),
		config.ScoringConfig{Window: 72 * time.Hour, DuplicateWindow: time.Minute, DuplicateAlertThreshold: 3},
		logging.Default())
	handler := NewDashboardHandler(websites, insights)

	req := httptest.NewRequest(http.MethodGet, "/api/websites/"+website.ID+"/duplicates", nil)
	req.SetPathValue("id", website.ID)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "user-1"))
	rec := httptest.NewRecorder()

	handler.Duplicates(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// A website with no duplicates answers [] rather than null.
	assert.Equal(t, "[]\n", rec.Body.String())
}
