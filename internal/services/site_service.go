// Package services – SiteService
//
// This file implements the site lifecycle: registering a WordPress target
// (which validates the connection before anything is persisted), listing,
// fetching, partial updates, and deletion. Every read and write verifies the
// caller owns the record before proceeding; the owner id is immutable.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/repo"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

// SiteConnector is the WordPress-facing contract required by SiteService.
type SiteConnector interface {
	// ValidateConnection probes the site's current-user endpoint.
	ValidateConnection(ctx context.Context, rawURL, applicationPassword string) wordpress.ValidationResult
}

// CreateSiteInput is the data required to register a site.
type CreateSiteInput struct {
	URL                 string
	Username            string
	ApplicationPassword string
	AIProvider          string
	AIModel             string
}

// SiteService provides ownership-scoped CRUD over registered WordPress sites.
type SiteService struct {
	DB        *gorm.DB
	Connector SiteConnector
}

// NewSiteService constructs a SiteService.
func NewSiteService(db *gorm.DB, connector SiteConnector) *SiteService {
	return &SiteService{DB: db, Connector: connector}
}

// defaultCommentSettings is the policy applied to newly registered sites.
func defaultCommentSettings() domain.CommentSettings {
	return domain.CommentSettings{
		Mode: "manual",
		Frequency: domain.FrequencySettings{
			CommentsPerDay: 5,
			MinDelay:       30,
			MaxDelay:       240,
		},
		Schedule: domain.ScheduleSettings{
			StartTime:  "09:00",
			EndTime:    "18:00",
			DaysOfWeek: []int{1, 2, 3, 4, 5},
		},
		Languages:          []string{"en"},
		ReplyProbability:   0.2,
		MaxCommentsPerPost: 3,
		AISettings: domain.AISettings{
			Temperature:      0.7,
			MaxTokens:        150,
			PresencePenalty:  0.3,
			FrequencyPenalty: 0.3,
		},
	}
}

// Create validates the input, normalizes the URL, verifies the WordPress
// connection, and persists the site. Nothing is stored when the connection
// check fails.
func (s *SiteService) Create(ctx context.Context, userID string, in CreateSiteInput) (*domain.Site, error) {
	if in.URL == "" || in.Username == "" || in.ApplicationPassword == "" {
		return nil, Validationf("Missing required fields: url, username, applicationPassword")
	}

	siteURL := wordpress.NormalizeURL(in.URL)
	res := s.Connector.ValidateConnection(ctx, siteURL, in.ApplicationPassword)
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "Invalid WordPress credentials"
		}
		return nil, Validationf("%s", msg)
	}

	site := &domain.Site{
		ID:                  uuid.NewString(),
		UserID:              userID,
		URL:                 siteURL,
		Username:            strings.TrimSpace(in.Username),
		ApplicationPassword: in.ApplicationPassword,
		AIProvider:          in.AIProvider,
		AIModel:             in.AIModel,
		CommentSettings:     defaultCommentSettings(),
		AssignedPersonas:    []string{},
	}
	if res.SiteInfo != nil {
		site.Name = res.SiteInfo.Name
	}
	if err := repo.CreateSite(ctx, s.DB, site); err != nil {
		return nil, err
	}
	return site, nil
}

// TestConnection validates a URL/application-password pair without
// persisting anything. The application password must carry the
// "username:password" shape before any network traffic happens.
func (s *SiteService) TestConnection(ctx context.Context, rawURL, applicationPassword string) (string, wordpress.ValidationResult, error) {
	if rawURL == "" || applicationPassword == "" {
		return "", wordpress.ValidationResult{}, Validationf("Missing required parameters: url, applicationPassword")
	}
	if !strings.Contains(applicationPassword, ":") {
		return "", wordpress.ValidationResult{}, Validationf("Invalid application password format. Expected format: username:password")
	}
	siteURL := wordpress.NormalizeURL(rawURL)
	return siteURL, s.Connector.ValidateConnection(ctx, siteURL, applicationPassword), nil
}

// List returns all sites owned by userID, most recent first.
func (s *SiteService) List(ctx context.Context, userID string) ([]domain.Site, error) {
	return repo.ListSites(ctx, s.DB, userID)
}

// Get fetches one site, distinguishing absence (ErrSiteNotFound) from a
// record owned by someone else (ErrNotOwner).
func (s *SiteService) Get(ctx context.Context, userID, id string) (*domain.Site, error) {
	site, err := repo.GetSiteAny(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	if site.UserID != userID {
		return nil, ErrNotOwner
	}
	return site, nil
}

// Update applies a partial update to a site the caller owns. Unspecified
// fields are left unchanged; the owner id can never be reassigned.
func (s *SiteService) Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Site, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := repo.UpdateSite(ctx, s.DB, id, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a site the caller owns.
func (s *SiteService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return repo.DeleteSite(ctx, s.DB, id, userID)
}
