package service

import (
	"time"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/config"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/repository"
)

// InsightService computes the derived dashboard data: per-event-type health
// metrics, duplicate groups and alerts. All computations are pure read-time
// aggregations over the website's recent events; they are total over
// well-formed data and return empty results for empty input.
type InsightService struct {
	repo   repository.Repository
	cache  *cache.HealthCache
	cfg    config.ScoringConfig
	logger *logging.Logger
}

func NewInsightService(repo repository.Repository, healthCache *cache.HealthCache, cfg config.ScoringConfig, logger *logging.Logger) *InsightService {
	return &InsightService{
		repo:   repo,
		cache:  healthCache,
		cfg:    cfg,
		logger: logger,
	}
}

// windowStart returns the lower bound of the scoring window.
func (s *InsightService) windowStart() time.Time {
	return time.Now().UTC().Add(-s.cfg.Window)
}
