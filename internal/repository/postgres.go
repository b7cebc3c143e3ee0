package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claritytracking/claritytracking/internal/models"
)

const queryTimeout = 5 * time.Second

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping validates connectivity for the readiness endpoint.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// isUniqueViolation reports whether err is a unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// =============================================================================
// USERS
// =============================================================================

func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, password_hash, registered_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, registered_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, email, password_hash, registered_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// =============================================================================
// WEBSITES
// =============================================================================

func (r *PostgresRepository) CreateWebsite(ctx context.Context, website *models.Website) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO websites (id, user_id, url, name, tracking_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		website.ID, website.UserID, website.URL, website.Name,
		website.TrackingToken, website.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create website: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListWebsitesByUser(ctx context.Context, userID string) ([]*models.Website, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, url, name, created_at
		FROM websites
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	defer rows.Close()

	var websites []*models.Website
	for rows.Next() {
		var w models.Website
		if err := rows.Scan(&w.ID, &w.UserID, &w.URL, &w.Name, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan website: %w", err)
		}
		websites = append(websites, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate websites: %w", err)
	}

	return websites, nil
}

func (r *PostgresRepository) GetWebsiteByIDAndOwner(ctx context.Context, websiteID, userID string) (*models.Website, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, url, name, created_at
		FROM websites
		WHERE id = $1 AND user_id = $2
	`

	var w models.Website
	err := r.pool.QueryRow(ctx, query, websiteID, userID).Scan(
		&w.ID, &w.UserID, &w.URL, &w.Name, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebsiteNotFound
		}
		return nil, fmt.Errorf("failed to get website: %w", err)
	}

	return &w, nil
}

func (r *PostgresRepository) GetWebsiteByTrackingToken(ctx context.Context, token string) (*models.Website, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, url, name, created_at
		FROM websites
		WHERE tracking_token = $1
	`

	var w models.Website
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&w.ID, &w.UserID, &w.URL, &w.Name, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get website by token: %w", err)
	}

	return &w, nil
}

// =============================================================================
// CONNECTIONS
// =============================================================================

func (r *PostgresRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO connections (id, website_id, platform, platform_identifiers, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		conn.ID, conn.WebsiteID, conn.Platform, conn.PlatformIdentifiers,
		conn.IsActive, conn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListConnectionsByWebsite(ctx context.Context, websiteID string) ([]*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, website_id, platform, platform_identifiers, is_active, created_at
		FROM connections
		WHERE website_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, websiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.Connection
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.ID, &c.WebsiteID, &c.Platform, &c.PlatformIdentifiers, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}

	return conns, nil
}

// =============================================================================
// WAITLIST
// =============================================================================

func (r *PostgresRepository) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO waitlist (id, email, source, utm_source, utm_medium, utm_campaign, referer, user_agent, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Email, entry.Source,
		entry.UTMSource, entry.UTMMedium, entry.UTMCampaign,
		entry.Referer, entry.UserAgent, entry.IPAddress, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrWaitlistExists
		}
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetWaitlistEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, email, source, utm_source, utm_medium, utm_campaign, referer, user_agent, ip_address, created_at
		FROM waitlist
		WHERE email = $1
	`

	var e models.WaitlistEntry
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&e.ID, &e.Email, &e.Source,
		&e.UTMSource, &e.UTMMedium, &e.UTMCampaign,
		&e.Referer, &e.UserAgent, &e.IPAddress, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWaitlistNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	return &e, nil
}

// =============================================================================
// EVENTS
// =============================================================================

func (r *PostgresRepository) InsertEvent(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO events (
			id, website_id, event_name, event_id, event_time, received_at,
			event_source_url, email, phone, browser_id, click_id, user_agent,
			ip_address, utm_source, utm_medium, utm_campaign, referer,
			value, currency, custom_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.WebsiteID, event.EventName, event.EventID,
		event.EventTime, event.ReceivedAt, event.EventSourceURL,
		event.Identifiers.Email, event.Identifiers.Phone,
		event.Identifiers.BrowserID, event.Identifiers.ClickID,
		event.Identifiers.UserAgent, event.Identifiers.IPAddress,
		event.Identifiers.UTMSource, event.Identifiers.UTMMedium,
		event.Identifiers.UTMCampaign, event.Identifiers.Referer,
		event.Value, event.Currency, event.CustomData,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListEventsSince(ctx context.Context, websiteID string, since time.Time) ([]*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, website_id, event_name, event_id, event_time, received_at,
		       event_source_url, email, phone, browser_id, click_id, user_agent,
		       ip_address, utm_source, utm_medium, utm_campaign, referer,
		       value, currency, custom_data
		FROM events
		WHERE website_id = $1 AND received_at >= $2
		ORDER BY received_at
	`

	rows, err := r.pool.Query(ctx, query, websiteID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(
			&e.ID, &e.WebsiteID, &e.EventName, &e.EventID, &e.EventTime, &e.ReceivedAt,
			&e.EventSourceURL, &e.Identifiers.Email, &e.Identifiers.Phone,
			&e.Identifiers.BrowserID, &e.Identifiers.ClickID, &e.Identifiers.UserAgent,
			&e.Identifiers.IPAddress, &e.Identifiers.UTMSource, &e.Identifiers.UTMMedium,
			&e.Identifiers.UTMCampaign, &e.Identifiers.Referer,
			&e.Value, &e.Currency, &e.CustomData,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}
