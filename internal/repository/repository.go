package repository

import (
	"context"
	"errors"
	"time"

	"github.com/claritytracking/claritytracking/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrWebsiteNotFound  = errors.New("website not found")
	ErrTokenNotFound    = errors.New("tracking token not found")
	ErrWaitlistExists   = errors.New("waitlist entry already exists")
	ErrWaitlistNotFound = errors.New("waitlist entry not found")
)

// Repository is the persistence boundary for the whole service. Event reads
// are always scoped to a single website; callers never see rows belonging to
// another tenant.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Websites
	CreateWebsite(ctx context.Context, website *models.Website) error
	ListWebsitesByUser(ctx context.Context, userID string) ([]*models.Website, error)
	// GetWebsiteByIDAndOwner returns ErrWebsiteNotFound both when the website
	// does not exist and when it belongs to a different user.
	GetWebsiteByIDAndOwner(ctx context.Context, websiteID, userID string) (*models.Website, error)
	GetWebsiteByTrackingToken(ctx context.Context, token string) (*models.Website, error)

	// Connections
	CreateConnection(ctx context.Context, conn *models.Connection) error
	ListConnectionsByWebsite(ctx context.Context, websiteID string) ([]*models.Connection, error)

	// Waitlist
	CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
	GetWaitlistEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)

	// Events
	InsertEvent(ctx context.Context, event *models.Event) error
	// ListEventsSince returns the website's events with received_at >= since,
	// ordered by received_at ascending.
	ListEventsSince(ctx context.Context, websiteID string, since time.Time) ([]*models.Event, error)

	Close() error
}
