package models

import "time"

// User represents an account that owns tracked websites.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Website is the tenant unit: every event, metric and alert is scoped to
// exactly one website.
type Website struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// TrackingToken authenticates the client snippet on the ingest endpoint.
	// Returned once on creation, never listed afterwards.
	TrackingToken string `json:"tracking_token,omitempty"`

	Connections []*Connection `json:"connections,omitempty"`
}

// Platforms a website can be connected to.
const (
	PlatformMeta    = "meta"
	PlatformShopify = "shopify"
	PlatformTikTok  = "tiktok"
)

// ValidPlatform reports whether p is a supported ad/commerce platform.
func ValidPlatform(p string) bool {
	return p == PlatformMeta || p == PlatformShopify || p == PlatformTikTok
}

// Connection links a website to an ad or commerce platform. Platform-specific
// identifiers (pixel id, store id) live in a free-form JSON bag so new
// platforms need no schema change.
type Connection struct {
	ID                  string                 `json:"id"`
	WebsiteID           string                 `json:"website_id"`
	Platform            string                 `json:"platform"`
	PlatformIdentifiers map[string]interface{} `json:"platform_identifiers"`
	IsActive            bool                   `json:"is_active"`
	CreatedAt           time.Time              `json:"created_at"`
}

// WaitlistEntry records a beta signup with its acquisition context.
type WaitlistEntry struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Source      string    `json:"source,omitempty"`
	UTMSource   string    `json:"utm_source,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty"`
	Referer     string    `json:"referer,omitempty"`
	UserAgent   string    `json:"-"`
	IPAddress   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
