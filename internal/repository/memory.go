package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/claritytracking/claritytracking/internal/models"
)

// InMemoryRepository backs handler and service tests. It mirrors the postgres
// implementation's semantics, including tenant scoping on event reads.
type InMemoryRepository struct {
	users        map[string]*models.User
	usersByEmail map[string]*models.User
	websites     map[string]*models.Website
	tokens       map[string]*models.Website
	connections  map[string][]*models.Connection
	waitlist     map[string]*models.WaitlistEntry
	events       map[string][]*models.Event
	mu           sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		websites:     make(map[string]*models.Website),
		tokens:       make(map[string]*models.Website),
		connections:  make(map[string][]*models.Connection),
		waitlist:     make(map[string]*models.WaitlistEntry),
		events:       make(map[string][]*models.Event),
	}
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return ErrUserExists
	}

	r.users[user.ID] = user
	r.usersByEmail[user.Email] = user
	return nil
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.usersByEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) CreateWebsite(ctx context.Context, website *models.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.websites[website.ID] = website
	if website.TrackingToken != "" {
		r.tokens[website.TrackingToken] = website
	}
	return nil
}

func (r *InMemoryRepository) ListWebsitesByUser(ctx context.Context, userID string) ([]*models.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var websites []*models.Website
	for _, w := range r.websites {
		if w.UserID == userID {
			websites = append(websites, withoutToken(w))
		}
	}
	sort.Slice(websites, func(i, j int) bool {
		return websites[i].CreatedAt.Before(websites[j].CreatedAt)
	})
	return websites, nil
}

func (r *InMemoryRepository) GetWebsiteByIDAndOwner(ctx context.Context, websiteID, userID string) (*models.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.websites[websiteID]
	if !exists || w.UserID != userID {
		return nil, ErrWebsiteNotFound
	}
	return withoutToken(w), nil
}

func (r *InMemoryRepository) GetWebsiteByTrackingToken(ctx context.Context, token string) (*models.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.tokens[token]
	if !exists {
		return nil, ErrTokenNotFound
	}
	return withoutToken(w), nil
}

// withoutToken copies a website with the tracking token blanked. Reads never
// return the token; the postgres queries omit the column for the same reason.
func withoutToken(w *models.Website) *models.Website {
	c := *w
	c.TrackingToken = ""
	return &c
}

func (r *InMemoryRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[conn.WebsiteID] = append(r.connections[conn.WebsiteID], conn)
	return nil
}

func (r *InMemoryRepository) ListConnectionsByWebsite(ctx context.Context, websiteID string) ([]*models.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.connections[websiteID], nil
}

func (r *InMemoryRepository) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.waitlist[entry.Email]; exists {
		return ErrWaitlistExists
	}
	r.waitlist[entry.Email] = entry
	return nil
}

func (r *InMemoryRepository) GetWaitlistEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.waitlist[email]
	if !exists {
		return nil, ErrWaitlistNotFound
	}
	return entry, nil
}

func (r *InMemoryRepository) InsertEvent(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.WebsiteID] = append(r.events[event.WebsiteID], event)
	return nil
}

func (r *InMemoryRepository) ListEventsSince(ctx context.Context, websiteID string, since time.Time) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*models.Event
	for _, e := range r.events[websiteID] {
		if !e.ReceivedAt.Before(since) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].ReceivedAt.Before(events[j].ReceivedAt)
	})
	return events, nil
}

func (r *InMemoryRepository) Close() error {
	return nil
}
