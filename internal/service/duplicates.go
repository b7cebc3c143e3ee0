package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/claritytracking/claritytracking/internal/metrics"
	"github.com/claritytracking/claritytracking/internal/models"
)

// FindDuplicates returns groups of events that plausibly represent the same
// real-world action arriving more than once. Two detection passes:
//
//  1. Events sharing a non-empty (event_name, event_id) pair. The snippet is
//     supposed to generate a fresh event_id per action, so repeats mean the
//     same action was sent twice.
//  2. Events without an event_id, grouped by (event_name, strongest user
//     identifier), where consecutive fires land within the configured
//     duplicate window. This catches client-side double-binding even when
//     the client never generated an id.
//
// Groups are ordered by count descending, then last_seen descending, so the
// most costly duplication surfaces first. Idempotent: no mutation, safe to
// call concurrently and repeatedly.
func (s *InsightService) FindDuplicates(ctx context.Context, websiteID string) ([]*models.DuplicateGroup, error) {
	events, err := s.repo.ListEventsSince(ctx, websiteID, s.windowStart())
	if err != nil {
		return nil, fmt.Errorf("failed to load events for duplicate detection: %w", err)
	}

	var groups []*models.DuplicateGroup
	groups = append(groups, groupByEventID(events)...)
	groups = append(groups, groupByIdentifierWindow(events, s.cfg.DuplicateWindow)...)

	// Stable so that groups tied on count and last_seen keep their insertion
	// order across calls.
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].LastSeen.After(groups[j].LastSeen)
	})

	metrics.DuplicateGroups.WithLabelValues(websiteID).Set(float64(len(groups)))

	return groups, nil
}

type groupKey struct {
	name string
	id   string
}

// groupByEventID finds repeats of the same client-supplied event_id.
func groupByEventID(events []*models.Event) []*models.DuplicateGroup {
	byKey := make(map[groupKey]*models.DuplicateGroup)
	var order []groupKey

	for _, e := range events {
		if e.EventID == "" {
			continue
		}
		key := groupKey{name: e.EventName, id: e.EventID}
		g, ok := byKey[key]
		if !ok {
			g = &models.DuplicateGroup{
				EventName: e.EventName,
				EventID:   e.EventID,
				FirstSeen: e.ReceivedAt,
				LastSeen:  e.ReceivedAt,
			}
			byKey[key] = g
			order = append(order, key)
		}
		g.Count++
		if e.ReceivedAt.Before(g.FirstSeen) {
			g.FirstSeen = e.ReceivedAt
		}
		if e.ReceivedAt.After(g.LastSeen) {
			g.LastSeen = e.ReceivedAt
		}
	}

	var groups []*models.DuplicateGroup
	for _, key := range order {
		if g := byKey[key]; g.Count > 1 {
			groups = append(groups, g)
		}
	}
	return groups
}

// groupByIdentifierWindow clusters id-less events from the same visitor.
// Events arrive sorted by received_at; a cluster extends while the gap to the
// previous fire stays inside the window.
func groupByIdentifierWindow(events []*models.Event, window time.Duration) []*models.DuplicateGroup {
	type cluster struct {
		current *models.DuplicateGroup
		closed  []*models.DuplicateGroup
	}

	byKey := make(map[groupKey]*cluster)
	var order []groupKey

	for _, e := range events {
		if e.EventID != "" {
			continue
		}
		ident := e.Identifiers.StrongIdentifier()
		if ident == "" {
			continue
		}

		key := groupKey{name: e.EventName, id: ident}
		c, ok := byKey[key]
		if !ok {
			c = &cluster{}
			byKey[key] = c
			order = append(order, key)
		}

		if c.current != nil && e.ReceivedAt.Sub(c.current.LastSeen) <= window {
			c.current.Count++
			c.current.LastSeen = e.ReceivedAt
			continue
		}

		if c.current != nil && c.current.Count > 1 {
			c.closed = append(c.closed, c.current)
		}
		c.current = &models.DuplicateGroup{
			EventName: e.EventName,
			Count:     1,
			FirstSeen: e.ReceivedAt,
			LastSeen:  e.ReceivedAt,
		}
	}

	var groups []*models.DuplicateGroup
	for _, key := range order {
		c := byKey[key]
		groups = append(groups, c.closed...)
		if c.current != nil && c.current.Count > 1 {
			groups = append(groups, c.current)
		}
	}
	return groups
}
