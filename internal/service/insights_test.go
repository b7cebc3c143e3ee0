package service

import (
	"context"
	"testing"
	"time"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/config"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
)

func newTestInsightService(repo repository.Repository) *InsightService {
	return NewInsightService(
		repo,
		cache.NewHealthCache(nil, 0, false),
		config.ScoringConfig{
			Window:                  72 * time.Hour,
			DuplicateWindow:         60 * time.Second,
			DuplicateAlertThreshold: 3,
		},
		logging.Default(),
	)
}

// seedEvent inserts an event directly into the repository with full control
// over timestamps and identifiers.
func seedEvent(t *testing.T, repo repository.Repository, websiteID, name, eventID string, receivedAt time.Time, ident models.UserIdentifiers) {
	t.Helper()

	err := repo.InsertEvent(context.Background(), &models.Event{
		ID:          name + "-" + receivedAt.Format(time.RFC3339Nano),
		WebsiteID:   websiteID,
		EventName:   name,
		EventID:     eventID,
		EventTime:   receivedAt,
		ReceivedAt:  receivedAt,
		Identifiers: ident,
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
}

func allIdentifiers() models.UserIdentifiers {
	return models.UserIdentifiers{
		Email:     "buyer@example.com",
		Phone:     "+15550001111",
		BrowserID: "fb.1.123.456",
		ClickID:   "fb.1.789.abc",
		UserAgent: "Mozilla/5.0",
	}
}
