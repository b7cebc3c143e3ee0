package models

import "time"

// Event is one ingested tracking occurrence. Events are append-only: created
// once by the ingest endpoint and never updated.
type Event struct {
	ID             string                 `json:"id"`
	WebsiteID      string                 `json:"website_id"`
	EventName      string                 `json:"event_name"`
	EventID        string                 `json:"event_id,omitempty"` // client-supplied dedup key, may be empty
	EventTime      time.Time              `json:"event_time"`
	ReceivedAt     time.Time              `json:"received_at"`
	EventSourceURL string                 `json:"event_source_url,omitempty"`
	Identifiers    UserIdentifiers        `json:"user_data"`
	Value          *float64               `json:"value,omitempty"`
	Currency       string                 `json:"currency,omitempty"`
	CustomData     map[string]interface{} `json:"custom_data,omitempty"`
}

// UserIdentifiers is the bag of optional user-identifying fields attached to
// an event. Presence of the strong identifiers (email, phone, browser id,
// click id) drives match-quality scoring.
type UserIdentifiers struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BrowserID   string `json:"browser_id,omitempty"` // _fbp-style first-party cookie
	ClickID     string `json:"click_id,omitempty"`   // _fbc-style click identifier
	UserAgent   string `json:"user_agent,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	Referer     string `json:"referer,omitempty"`
}

// StrongIdentifier returns the best available identity key for an event that
// lacks a client-supplied event_id: email, then phone, then browser id.
// Returns empty string when none is present.
func (u UserIdentifiers) StrongIdentifier() string {
	switch {
	case u.Email != "":
		return u.Email
	case u.Phone != "":
		return u.Phone
	case u.BrowserID != "":
		return u.BrowserID
	default:
		return ""
	}
}
