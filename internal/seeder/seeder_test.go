package seeder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/service"
	"github.com/claritytracking/claritytracking/pkg/tokens"
)

func newTestSeeder(repo repository.Repository) *Seeder {
	logger := logging.Default()
	noCache := cache.NewHealthCache(nil, 0, false)
	tokenGen := tokens.NewTokenGenerator("seed-test-secret", 30*time.Minute)

	return New(
		service.NewAuthService(repo, tokenGen),
		service.NewWebsiteService(repo),
		service.NewIngestService(repo, noCache, logger),
		logger,
	)
}

func TestRunDefaultScenario(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	ctx := context.Background()

	scenario := DefaultScenario()
	require.NoError(t, newTestSeeder(repo).Run(ctx, scenario))

	user, err := repo.GetUserByEmail(ctx, scenario.User.Email)
	require.NoError(t, err)

	websites, err := repo.ListWebsitesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, websites, len(scenario.Websites))

	events, err := repo.ListEventsSince(ctx, websites[0].ID, time.Time{})
	require.NoError(t, err)

	var want int
	for _, ev := range scenario.Websites[0].Events {
		want += ev.Count + ev.DuplicateFires
	}
	assert.Len(t, events, want)
}

func TestRunRefusesToReseed(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	s := newTestSeeder(repo)

	require.NoError(t, s.Run(context.Background(), DefaultScenario()))

	err := s.Run(context.Background(), DefaultScenario())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
user:
  name: QA
  email: qa@example.com
  password: qa-password-1
websites:
  - name: Test Shop
    url: https://test.example
    events:
      - name: Purchase
        count: 10
        email_rate: 1.0
        duplicate_fires: 2
        value: 19.99
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "qa@example.com", s.User.Email)
	require.Len(t, s.Websites, 1)
	require.Len(t, s.Websites[0].Events, 1)
	assert.Equal(t, 10, s.Websites[0].Events[0].Count)
	assert.Equal(t, 2, s.Websites[0].Events[0].DuplicateFires)
	assert.Equal(t, 1.0, s.Websites[0].Events[0].EmailRate)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
}
