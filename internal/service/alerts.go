package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/claritytracking/claritytracking/internal/models"
)

// Alerts maps health metrics and duplicate groups that cross thresholds into
// human-readable alert records. Returning an empty slice is the nominal
// all-healthy outcome, not an error; the dashboard renders it as "all good".
func (s *InsightService) Alerts(ctx context.Context, websiteID string) ([]*models.Alert, error) {
	health, err := s.Score(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	duplicates, err := s.FindDuplicates(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	alerts := make([]*models.Alert, 0)

	for _, m := range health {
		switch m.Status {
		case models.StatusError:
			alerts = append(alerts, &models.Alert{
				ID:       "alert-emq-" + slug(m.EventName),
				Severity: models.SeverityError,
				Title:    fmt.Sprintf("'%s' Event Match Quality Is Critical (%.1f/10)", m.EventName, m.EMQScore),
				Message: fmt.Sprintf(
					"Recent '%s' events are missing key customer identifiers (score %.1f/10 across %d events). Send email, phone or browser identifiers to improve attribution.",
					m.EventName, m.EMQScore, m.SampleCount),
				Timestamp: m.LastReceived,
			})
		case models.StatusWarning:
			alerts = append(alerts, &models.Alert{
				ID:       "alert-emq-" + slug(m.EventName),
				Severity: models.SeverityWarning,
				Title:    fmt.Sprintf("'%s' EMQ May Be Low (%.1f/10)", m.EventName, m.EMQScore),
				Message: fmt.Sprintf(
					"Recent '%s' events might be missing key customer parameters. Consider reviewing the data points sent with this event.",
					m.EventName),
				Timestamp: m.LastReceived,
			})
		}
	}

	for _, g := range duplicates {
		if g.Count < s.cfg.DuplicateAlertThreshold {
			continue
		}

		alert := &models.Alert{
			Severity:  models.SeverityWarning,
			Title:     fmt.Sprintf("Potential Duplicate '%s' Events Detected", g.EventName),
			Timestamp: g.LastSeen,
		}
		if g.EventID != "" {
			alert.ID = "alert-duplicates-" + slug(g.EventName) + "-" + slug(g.EventID)
			alert.Message = fmt.Sprintf(
				"Event ID '%s' was received %d times. Duplicate fires can inflate conversion counts.",
				g.EventID, g.Count)
		} else {
			alert.ID = "alert-duplicates-" + slug(g.EventName) + "-window"
			alert.Message = fmt.Sprintf(
				"%d '%s' events fired by the same visitor within %s. Check the snippet for double-bound handlers.",
				g.Count, g.EventName, s.cfg.DuplicateWindow)
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// slug lowercases and strips an event name or id down to [a-z0-9-] so alert
// IDs stay stable across polls.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
