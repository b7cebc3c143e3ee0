package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/metrics"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
)

// Far-future event_time beyond this skew is clamped to the server clock.
const maxClockSkew = 5 * time.Minute

// Column widths the normalizer truncates to. Must match the events schema.
const (
	maxEventNameLen = 100
	maxEventIDLen   = 100
	maxURLLen       = 2048
	maxEmailLen     = 255
	maxPhoneLen     = 100
	maxUserAgentLen = 512
	maxIPLen        = 64
	maxCurrencyLen  = 10
	maxLabelLen     = 100
)

// IngestService validates, normalizes and persists incoming tracking events.
// Scoring happens at read time, so accepting an event does no work
// proportional to the website's history.
type IngestService struct {
	repo   repository.Repository
	cache  *cache.HealthCache
	logger *logging.Logger
}

func NewIngestService(repo repository.Repository, healthCache *cache.HealthCache, logger *logging.Logger) *IngestService {
	return &IngestService{
		repo:   repo,
		cache:  healthCache,
		logger: logger,
	}
}

// Ingest writes exactly one event row for the website, or nothing on
// rejection. Duplicate event_ids are accepted; reconciliation is the
// duplicate detector's job.
func (s *IngestService) Ingest(ctx context.Context, website *models.Website, req *models.IngestEventRequest, clientIP string) (*models.Event, error) {
	eventTime, err := validateEventTime(req.EventTime)
	if err != nil {
		metrics.ValidationFailures.WithLabelValues("event_time").Inc()
		return nil, err
	}

	name := strings.TrimSpace(req.EventName)
	if name == "" {
		metrics.ValidationFailures.WithLabelValues("event_name").Inc()
		return nil, &ValidationError{Field: "event_name", Reason: "must not be empty"}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event ID: %w", err)
	}

	event := &models.Event{
		ID:             id.String(),
		WebsiteID:      website.ID,
		EventName:      httputil.Truncate(name, maxEventNameLen),
		EventID:        httputil.Truncate(strings.TrimSpace(req.EventID), maxEventIDLen),
		EventTime:      eventTime,
		ReceivedAt:     time.Now().UTC(),
		EventSourceURL: httputil.Truncate(req.EventSourceURL, maxURLLen),
		Identifiers:    normalizeIdentifiers(req.UserData, clientIP),
		Value:          req.Value,
		Currency:       httputil.Truncate(strings.ToUpper(strings.TrimSpace(req.Currency)), maxCurrencyLen),
		CustomData:     req.CustomData,
	}
	if event.CustomData == nil {
		event.CustomData = map[string]interface{}{}
	}

	if err := s.repo.InsertEvent(ctx, event); err != nil {
		metrics.EventsTotal.WithLabelValues("storage_error").Inc()
		metrics.StorageErrors.Inc()
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	metrics.EventsTotal.WithLabelValues("accepted").Inc()

	// New data makes cached health metrics stale.
	if err := s.cache.Invalidate(ctx, website.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate health cache",
			logging.WebsiteID(website.ID), logging.Error(err))
	}

	s.logger.DebugContext(ctx, "event ingested",
		logging.WebsiteID(website.ID),
		logging.EventName(event.EventName),
		logging.EventID(event.EventID))

	return event, nil
}

// validateEventTime rejects implausible client timestamps and clamps
// small clock skew into the future down to now.
func validateEventTime(unixSeconds int64) (time.Time, error) {
	if unixSeconds <= 0 {
		return time.Time{}, &ValidationError{Field: "event_time", Reason: "must be a positive unix timestamp"}
	}

	t := time.Unix(unixSeconds, 0).UTC()
	now := time.Now().UTC()
	if t.After(now.Add(maxClockSkew)) {
		return now, nil
	}

	return t, nil
}

// normalizeIdentifiers trims whitespace, lowercases the email and drops
// nothing else: empty fields simply stay empty. The client IP recorded is the
// one observed by the server, not a client-supplied value.
func normalizeIdentifiers(data *models.UserIdentifiers, clientIP string) models.UserIdentifiers {
	if data == nil {
		return models.UserIdentifiers{IPAddress: httputil.Truncate(clientIP, maxIPLen)}
	}

	return models.UserIdentifiers{
		Email:       httputil.Truncate(strings.ToLower(strings.TrimSpace(data.Email)), maxEmailLen),
		Phone:       httputil.Truncate(strings.TrimSpace(data.Phone), maxPhoneLen),
		BrowserID:   httputil.Truncate(strings.TrimSpace(data.BrowserID), maxEventIDLen),
		ClickID:     httputil.Truncate(strings.TrimSpace(data.ClickID), maxEmailLen),
		UserAgent:   httputil.Truncate(data.UserAgent, maxUserAgentLen),
		IPAddress:   httputil.Truncate(clientIP, maxIPLen),
		UTMSource:   httputil.Truncate(strings.TrimSpace(data.UTMSource), maxLabelLen),
		UTMMedium:   httputil.Truncate(strings.TrimSpace(data.UTMMedium), maxLabelLen),
		UTMCampaign: httputil.Truncate(strings.TrimSpace(data.UTMCampaign), maxLabelLen),
		Referer:     httputil.Truncate(data.Referer, maxURLLen),
	}
}
