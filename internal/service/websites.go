package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claritytracking/claritytracking/internal/models"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/pkg/tokens"
)

// WebsiteService owns the tenant resources: websites and their platform
// connections. Every accessor takes the requesting user's ID and refuses to
// return resources they do not own.
type WebsiteService struct {
	repo repository.Repository
}

func NewWebsiteService(repo repository.Repository) *WebsiteService {
	return &WebsiteService{repo: repo}
}

// CreateWebsite registers a new tracked site and mints its tracking token.
// The token is only ever returned from this call.
func (s *WebsiteService) CreateWebsite(ctx context.Context, userID string, req *models.CreateWebsiteRequest) (*models.Website, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	websiteID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate website ID: %w", err)
	}

	trackingToken, err := tokens.GenerateTrackingToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tracking token: %w", err)
	}

	website := &models.Website{
		ID:            websiteID.String(),
		UserID:        userID,
		URL:           url,
		Name:          name,
		TrackingToken: trackingToken,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateWebsite(ctx, website); err != nil {
		return nil, err
	}

	return website, nil
}

// ListWebsites returns the user's websites with their connections loaded.
func (s *WebsiteService) ListWebsites(ctx context.Context, userID string) ([]*models.Website, error) {
	websites, err := s.repo.ListWebsitesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, w := range websites {
		conns, err := s.repo.ListConnectionsByWebsite(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		w.Connections = conns
	}

	return websites, nil
}

// GetOwnedWebsite is the ownership gate used by every /websites/{id} read.
// Returns repository.ErrWebsiteNotFound when the website does not exist or
// belongs to someone else; callers cannot tell the difference.
func (s *WebsiteService) GetOwnedWebsite(ctx context.Context, websiteID, userID string) (*models.Website, error) {
	return s.repo.GetWebsiteByIDAndOwner(ctx, websiteID, userID)
}

// ResolveTrackingToken maps an ingest credential to its website.
func (s *WebsiteService) ResolveTrackingToken(ctx context.Context, token string) (*models.Website, error) {
	return s.repo.GetWebsiteByTrackingToken(ctx, token)
}

// CreateConnection links an owned website to an ad/commerce platform.
func (s *WebsiteService) CreateConnection(ctx context.Context, websiteID, userID string, req *models.CreateConnectionRequest) (*models.Connection, error) {
	if !models.ValidPlatform(req.Platform) {
		return nil, &ValidationError{Field: "platform", Reason: "must be one of meta, shopify, tiktok"}
	}

	if _, err := s.repo.GetWebsiteByIDAndOwner(ctx, websiteID, userID); err != nil {
		return nil, err
	}

	connID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate connection ID: %w", err)
	}

	conn := &models.Connection{
		ID:                  connID.String(),
		WebsiteID:           websiteID,
		Platform:            req.Platform,
		PlatformIdentifiers: req.PlatformIdentifiers,
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
	}
	if conn.PlatformIdentifiers == nil {
		conn.PlatformIdentifiers = map[string]interface{}{}
	}

	if err := s.repo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// ListConnections returns the connections of an owned website.
func (s *WebsiteService) ListConnections(ctx context.Context, websiteID, userID string) ([]*models.Connection, error) {
	if _, err := s.repo.GetWebsiteByIDAndOwner(ctx, websiteID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListConnectionsByWebsite(ctx, websiteID)
}
