package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/claritytracking/claritytracking/internal/models"
)

// setupTestDatabase starts a PostgreSQL testcontainer, applies the schema and
// returns a repository against it. Skipped with -short.
func setupTestDatabase(t *testing.T) *PostgresRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("clarity_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, applyMigrations(connStr))

	repo, err := NewPostgresRepository(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

// applyMigrations executes the up migrations in order.
func applyMigrations(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, file := range []string{"000001_init.up.sql", "000002_events.up.sql"} {
		migrationSQL, err := os.ReadFile(filepath.Join("..", "..", "migrations", file))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.Exec(string(migrationSQL)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}

	return nil
}

func testUser(id, email string) *models.User {
	return &models.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "bcrypt-hash",
		RegisteredAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestNewPostgresRepositoryBadConnString(t *testing.T) {
	_, err := NewPostgresRepository(context.Background(), "invalid://connection")
	require.Error(t, err)
}

func TestUserLifecycle(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	user := testUser("11111111-1111-1111-1111-111111111111", "ada@example.com")
	require.NoError(t, repo.CreateUser(ctx, user))

	// Duplicate email hits the unique constraint.
	dup := testUser("22222222-2222-2222-2222-222222222222", "ada@example.com")
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrUserExists)

	got, err := repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)

	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWebsiteLifecycle(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	user := testUser("11111111-1111-1111-1111-111111111111", "ada@example.com")
	require.NoError(t, repo.CreateUser(ctx, user))

	website := &models.Website{
		ID:            "33333333-3333-3333-3333-333333333333",
		UserID:        user.ID,
		URL:           "https://shop.example",
		Name:          "Shop",
		TrackingToken: "tok_abc123",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.CreateWebsite(ctx, website))

	// Listing never returns the tracking token.
	websites, err := repo.ListWebsitesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, websites, 1)
	assert.Empty(t, websites[0].TrackingToken)

	// Ownership-scoped lookup.
	got, err := repo.GetWebsiteByIDAndOwner(ctx, website.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, website.Name, got.Name)

	_, err = repo.GetWebsiteByIDAndOwner(ctx, website.ID, "99999999-9999-9999-9999-999999999999")
	assert.ErrorIs(t, err, ErrWebsiteNotFound)

	// Token resolution.
	got, err = repo.GetWebsiteByTrackingToken(ctx, "tok_abc123")
	require.NoError(t, err)
	assert.Equal(t, website.ID, got.ID)

	_, err = repo.GetWebsiteByTrackingToken(ctx, "tok_unknown")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConnectionLifecycle(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	user := testUser("11111111-1111-1111-1111-111111111111", "ada@example.com")
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NoError(t, repo.CreateWebsite(ctx, &models.Website{
		ID:            "33333333-3333-3333-3333-333333333333",
		UserID:        user.ID,
		URL:           "https://shop.example",
		Name:          "Shop",
		TrackingToken: "tok_abc123",
		CreatedAt:     time.Now().UTC(),
	}))

	conn := &models.Connection{
		ID:                  "44444444-4444-4444-4444-444444444444",
		WebsiteID:           "33333333-3333-3333-3333-333333333333",
		Platform:            models.PlatformMeta,
		PlatformIdentifiers: map[string]interface{}{"pixel_id": "12345"},
		IsActive:            true,
		CreatedAt:           time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.CreateConnection(ctx, conn))

	conns, err := repo.ListConnectionsByWebsite(ctx, conn.WebsiteID)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, models.PlatformMeta, conns[0].Platform)
	assert.Equal(t, "12345", conns[0].PlatformIdentifiers["pixel_id"])
}

func TestWaitlistLifecycle(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	entry := &models.WaitlistEntry{
		ID:        "55555555-5555-5555-5555-555555555555",
		Email:     "early@bird.com",
		Source:    "producthunt",
		UTMSource: "ph",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.CreateWaitlistEntry(ctx, entry))

	dup := &models.WaitlistEntry{
		ID:        "66666666-6666-6666-6666-666666666666",
		Email:     "early@bird.com",
		CreatedAt: time.Now().UTC(),
	}
	assert.ErrorIs(t, repo.CreateWaitlistEntry(ctx, dup), ErrWaitlistExists)

	got, err := repo.GetWaitlistEntryByEmail(ctx, "early@bird.com")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "producthunt", got.Source)

	_, err = repo.GetWaitlistEntryByEmail(ctx, "late@bird.com")
	assert.ErrorIs(t, err, ErrWaitlistNotFound)
}

func TestEventInsertAndWindowedList(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	user := testUser("11111111-1111-1111-1111-111111111111", "ada@example.com")
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NoError(t, repo.CreateWebsite(ctx, &models.Website{
		ID:            "33333333-3333-3333-3333-333333333333",
		UserID:        user.ID,
		URL:           "https://shop.example",
		Name:          "Shop",
		TrackingToken: "tok_abc123",
		CreatedAt:     time.Now().UTC(),
	}))

	now := time.Now().UTC().Truncate(time.Microsecond)
	value := 49.90

	insert := func(id string, receivedAt time.Time, websiteID string) {
		require.NoError(t, repo.InsertEvent(ctx, &models.Event{
			ID:         id,
			WebsiteID:  websiteID,
			EventName:  "Purchase",
			EventID:    "order-1",
			EventTime:  receivedAt,
			ReceivedAt: receivedAt,
			Identifiers: models.UserIdentifiers{
				Email:     "buyer@example.com",
				UserAgent: "Mozilla/5.0",
				IPAddress: "203.0.113.9",
			},
			Value:      &value,
			Currency:   "USD",
			CustomData: map[string]interface{}{"sku": "A-1"},
		}))
	}

	// Same event_id twice is allowed; events are append-only.
	insert("e1111111-1111-1111-1111-111111111111", now.Add(-2*time.Hour), "33333333-3333-3333-3333-333333333333")
	insert("e2222222-2222-2222-2222-222222222222", now, "33333333-3333-3333-3333-333333333333")

	events, err := repo.ListEventsSince(ctx, "33333333-3333-3333-3333-333333333333", now.Add(-3*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Ordered by received_at ascending.
	assert.True(t, events[0].ReceivedAt.Before(events[1].ReceivedAt))
	assert.Equal(t, "buyer@example.com", events[0].Identifiers.Email)
	require.NotNil(t, events[0].Value)
	assert.Equal(t, 49.90, *events[0].Value)
	assert.Equal(t, "A-1", events[0].CustomData["sku"])

	// The since bound excludes older rows.
	events, err = repo.ListEventsSince(ctx, "33333333-3333-3333-3333-333333333333", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// Other websites see nothing.
	events, err = repo.ListEventsSince(ctx, "99999999-9999-9999-9999-999999999999", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}
