package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/claritytracking/claritytracking/internal/metrics"
	"github.com/claritytracking/claritytracking/internal/models"
)

// Identifier weights for the EMQ proxy score. Email is worth the most for
// attribution matching, phone and the first-party cookie ids somewhat less,
// user agent barely anything. The per-event weight sum is normalized into a
// 0-10 scale by dividing by maxIdentifierWeight.
const (
	weightEmail     = 3.0
	weightPhone     = 2.0
	weightBrowserID = 2.0
	weightClickID   = 2.0
	weightUserAgent = 1.0

	maxIdentifierWeight = weightEmail + weightPhone + weightBrowserID + weightClickID + weightUserAgent
	emqScale            = 10.0
)

// Status thresholds on the 0-10 EMQ scale. Product-tunable.
const (
	HealthyThreshold = 7.0
	WarningThreshold = 4.0
)

// Score computes a HealthMetric per event type seen for the website inside
// the scoring window. Event types with no samples are omitted entirely.
// Results are served from the Redis cache when fresh.
func (s *InsightService) Score(ctx context.Context, websiteID string) ([]*models.HealthMetric, error) {
	if cached, ok := s.cache.Get(ctx, websiteID); ok {
		return cached, nil
	}

	start := time.Now()
	defer func() {
		metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}()

	events, err := s.repo.ListEventsSince(ctx, websiteID, s.windowStart())
	if err != nil {
		return nil, fmt.Errorf("failed to load events for scoring: %w", err)
	}

	type aggregate struct {
		weightSum    float64
		count        int
		lastReceived time.Time
	}

	byName := make(map[string]*aggregate)
	for _, e := range events {
		agg, ok := byName[e.EventName]
		if !ok {
			agg = &aggregate{}
			byName[e.EventName] = agg
		}
		agg.weightSum += identifierWeight(e.Identifiers)
		agg.count++
		if e.ReceivedAt.After(agg.lastReceived) {
			agg.lastReceived = e.ReceivedAt
		}
	}

	result := make([]*models.HealthMetric, 0, len(byName))
	for name, agg := range byName {
		avg := agg.weightSum / float64(agg.count)
		score := roundScore(avg / maxIdentifierWeight * emqScale)

		result = append(result, &models.HealthMetric{
			EventName:    name,
			EMQScore:     score,
			Status:       statusForScore(score),
			SampleCount:  agg.count,
			LastReceived: agg.lastReceived,
		})
	}

	// Worst scores first so problems top the dashboard.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].EMQScore != result[j].EMQScore {
			return result[i].EMQScore < result[j].EMQScore
		}
		return result[i].EventName < result[j].EventName
	})

	if err := s.cache.Set(ctx, websiteID, result); err != nil {
		s.logger.WarnContext(ctx, "failed to cache health metrics", "error", err)
	}

	return result, nil
}

// identifierWeight sums the weights of the identifiers present on one event.
func identifierWeight(u models.UserIdentifiers) float64 {
	var sum float64
	if u.Email != "" {
		sum += weightEmail
	}
	if u.Phone != "" {
		sum += weightPhone
	}
	if u.BrowserID != "" {
		sum += weightBrowserID
	}
	if u.ClickID != "" {
		sum += weightClickID
	}
	if u.UserAgent != "" {
		sum += weightUserAgent
	}
	return sum
}

func statusForScore(score float64) string {
	switch {
	case score >= HealthyThreshold:
		return models.StatusHealthy
	case score >= WarningThreshold:
		return models.StatusWarning
	default:
		return models.StatusError
	}
}

// roundScore keeps one decimal place, matching what the dashboard renders.
func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
