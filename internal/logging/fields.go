package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldUserID    = "user_id"
	FieldWebsiteID = "website_id"
	FieldEventName = "event_name"
	FieldEventID   = "event_id"
	FieldIP        = "ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldError     = "error"
)

// UserID returns a slog attribute for the user ID.
func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

// WebsiteID returns a slog attribute for the website (tenant) ID.
func WebsiteID(id string) slog.Attr {
	return slog.String(FieldWebsiteID, id)
}

// EventName returns a slog attribute for the event name.
func EventName(name string) slog.Attr {
	return slog.String(FieldEventName, name)
}

// EventID returns a slog attribute for the client-supplied event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
