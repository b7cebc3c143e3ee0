package models

// IngestEventRequest is the POST /api/ingest/event payload sent by the
// client-side tracking snippet.
type IngestEventRequest struct {
	EventName      string                 `json:"event_name"`
	EventTime      int64                  `json:"event_time"` // unix seconds, client-reported
	EventID        string                 `json:"event_id,omitempty"`
	EventSourceURL string                 `json:"event_source_url,omitempty"`
	UserData       *UserIdentifiers       `json:"user_data,omitempty"`
	Value          *float64               `json:"value,omitempty"`
	Currency       string                 `json:"currency,omitempty"`
	CustomData     map[string]interface{} `json:"custom_data,omitempty"`
}

// IngestEventResponse acknowledges an accepted event.
type IngestEventResponse struct {
	ID         string `json:"id"`
	ReceivedAt int64  `json:"received_at"`
}

type RegisterRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type CreateWebsiteRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type CreateConnectionRequest struct {
	Platform            string                 `json:"platform"`
	PlatformIdentifiers map[string]interface{} `json:"platform_identifiers"`
}

type WaitlistRequest struct {
	Email       string `json:"email"`
	Source      string `json:"source,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	Referer     string `json:"referer,omitempty"`
}
