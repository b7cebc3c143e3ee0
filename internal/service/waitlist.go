package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claritytracking/claritytracking/internal/httputil"
	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
)

// WaitlistService records beta signups with their acquisition context.
type WaitlistService struct {
	repo repository.Repository
}

func NewWaitlistService(repo repository.Repository) *WaitlistService {
	return &WaitlistService{repo: repo}
}

// Join adds an email to the waitlist, or returns the existing entry when the
// email already signed up. The created flag distinguishes the two so the
// handler can answer 201 vs 200. Concurrent signups for the same email race
// on the unique constraint; the loser re-reads the winner's row.
func (s *WaitlistService) Join(ctx context.Context, req *models.WaitlistRequest, ipAddress, userAgent string) (*models.WaitlistEntry, bool, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}

	if existing, err := s.repo.GetWaitlistEntryByEmail(ctx, email); err == nil {
		return existing, false, nil
	}

	entryID, err := uuid.NewV7()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate waitlist ID: %w", err)
	}

	entry := &models.WaitlistEntry{
		ID:          entryID.String(),
		Email:       email,
		Source:      httputil.Truncate(strings.TrimSpace(req.Source), maxLabelLen),
		UTMSource:   httputil.Truncate(strings.TrimSpace(req.UTMSource), maxLabelLen),
		UTMMedium:   httputil.Truncate(strings.TrimSpace(req.UTMMedium), maxLabelLen),
		UTMCampaign: httputil.Truncate(strings.TrimSpace(req.UTMCampaign), maxLabelLen),
		Referer:     httputil.Truncate(req.Referer, maxURLLen),
		UserAgent:   httputil.Truncate(userAgent, maxUserAgentLen),
		IPAddress:   httputil.Truncate(ipAddress, maxIPLen),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateWaitlistEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrWaitlistExists) {
			// Lost the race to a concurrent signup; the row must exist now.
			existing, getErr := s.repo.GetWaitlistEntryByEmail(ctx, email)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return entry, true, nil
}
