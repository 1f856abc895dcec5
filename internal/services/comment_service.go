// Package services – CommentService
//
// This file implements the moderation workflow: generating a pending comment
// from a persona and a post context, listing pending comments, approving
// (which publishes to WordPress and records the external id only after a
// confirmed publish), rejecting, and replying to an existing WordPress
// comment.
//
// The approve flow is a multi-step operation against two systems with no
// shared transaction. Before the external call the comment is moved to a
// transient "publishing" status; a confirmed publish moves it to "approved",
// a failed one restores "pending". A crash in between leaves the marker
// behind, making the undecided rows queryable instead of silently wrong.
package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/repo"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

// CommentPublisher is the WordPress-facing contract required for approvals
// and replies.
type CommentPublisher interface {
	PublishComment(ctx context.Context, target wordpress.PublishTarget, postID, content, authorName string, parentID int) (string, error)
}

// CommentGenerator is the LLM-facing contract required for generation.
type CommentGenerator interface {
	Generate(ctx context.Context, site *domain.Site, persona *domain.Persona, cctx ai.CommentContext, apiKey string) (*ai.GeneratedComment, error)
}

// GenerateInput carries one generation request.
type GenerateInput struct {
	SiteID    string
	PersonaID string
	PostID    string
	ParentID  string
	Context   ai.CommentContext
	APIKey    string
}

// ReplyInput carries one direct-reply request. ParentID comes from the URL;
// PostID is required because WordPress addresses comments by post.
type ReplyInput struct {
	SiteID     string
	PostID     string
	ParentID   string
	Content    string
	AuthorName string
}

// CommentService coordinates generation, moderation, and publishing.
type CommentService struct {
	DB        *gorm.DB
	Generator CommentGenerator
	Publisher CommentPublisher

	// Now anchors status timestamps; defaults to time.Now.
	Now func() time.Time
}

// NewCommentService constructs a CommentService with the real clock.
func NewCommentService(db *gorm.DB, gen CommentGenerator, pub CommentPublisher) *CommentService {
	return &CommentService{DB: db, Generator: gen, Publisher: pub, Now: time.Now}
}

// getOwnedSite loads a site and enforces caller ownership.
func (s *CommentService) getOwnedSite(ctx context.Context, userID, siteID string) (*domain.Site, error) {
	site, err := repo.GetSiteAny(ctx, s.DB, siteID)
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

// getOwnedComment loads a comment and enforces caller ownership.
func (s *CommentService) getOwnedComment(ctx context.Context, userID, id string) (*domain.Comment, error) {
	c, err := repo.GetCommentAny(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrNotOwner
	}
	return c, nil
}

// generateFor resolves and ownership-checks the site and persona, then runs
// the generator. Shared by the persisting and content-only generation paths.
func (s *CommentService) generateFor(ctx context.Context, userID string, in GenerateInput) (*domain.Site, *domain.Persona, *ai.GeneratedComment, error) {
	if in.SiteID == "" || in.PersonaID == "" {
		return nil, nil, nil, Validationf("Missing required parameters: siteId, personaId, context")
	}

	site, err := s.getOwnedSite(ctx, userID, in.SiteID)
	if err != nil {
		return nil, nil, nil, err
	}
	persona, err := repo.GetPersonaAny(ctx, s.DB, in.PersonaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if persona.UserID != userID {
		return nil, nil, nil, ErrNotOwner
	}

	cctx := in.Context
	if in.ParentID != "" {
		cctx.IsReply = true
	}

	gen, err := s.Generator.Generate(ctx, site, persona, cctx, in.APIKey)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidInput) {
			return nil, nil, nil, &ValidationError{Msg: ai.Redact(err.Error())}
		}
		return nil, nil, nil, &UpstreamError{Msg: ai.Redact(err.Error())}
	}
	return site, persona, gen, nil
}

// GenerateContent runs a generation without persisting anything. Used by the
// standalone AI endpoint where the caller handles the draft themselves.
func (s *CommentService) GenerateContent(ctx context.Context, userID string, in GenerateInput) (*ai.GeneratedComment, error) {
	_, _, gen, err := s.generateFor(ctx, userID, in)
	return gen, err
}

// Generate verifies ownership of the site and persona, generates the text,
// and persists the result as a pending comment authored by the persona.
func (s *CommentService) Generate(ctx context.Context, userID string, in GenerateInput) (*domain.Comment, error) {
	site, persona, gen, err := s.generateFor(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	c := &domain.Comment{
		ID:         uuid.NewString(),
		SiteID:     site.ID,
		PersonaID:  persona.ID,
		UserID:     userID,
		PostID:     in.PostID,
		ParentID:   in.ParentID,
		Content:    gen.Content,
		AuthorName: persona.Name,
		Status:     domain.CommentStatusPending,
		Metadata:   gen.Metadata,
	}
	if err := repo.CreateComment(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListPending returns the caller's pending comments, most recent first.
func (s *CommentService) ListPending(ctx context.Context, userID string, limit int) ([]domain.Comment, error) {
	return repo.ListPendingComments(ctx, s.DB, userID, limit)
}

// Approve publishes a pending comment to its site and records the external
// id and publish timestamp only after WordPress confirms. A failed publish
// restores the pending status and surfaces the failure; the comment is never
// marked approved speculatively.
func (s *CommentService) Approve(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	c, err := s.getOwnedComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if c.PostID == "" {
		return nil, Validationf("postId is required to publish the comment")
	}

	site, err := s.getOwnedSite(ctx, userID, c.SiteID)
	if err != nil {
		return nil, err
	}

	authorName := c.AuthorName
	if authorName == "" {
		authorName = "Anonymous"
	}
	parentID := 0
	if c.ParentID != "" {
		if n, perr := strconv.Atoi(c.ParentID); perr == nil {
			parentID = n
		}
	}

	// Write-ahead marker: undecided rows are queryable after a crash.
	if err := repo.SetCommentStatus(ctx, s.DB, c.ID, userID, domain.CommentStatusPublishing); err != nil {
		return nil, err
	}

	target := wordpress.PublishTarget{
		URL:                 site.URL,
		Username:            site.Username,
		ApplicationPassword: site.ApplicationPassword,
	}
	wpID, err := s.Publisher.PublishComment(ctx, target, c.PostID, c.Content, authorName, parentID)
	if err != nil {
		// Publish did not happen: the comment goes back to moderation.
		_ = repo.SetCommentStatus(ctx, s.DB, c.ID, userID, domain.CommentStatusPending)
		return nil, &UpstreamError{Msg: ai.Redact(err.Error())}
	}

	publishedAt := s.now()
	if err := repo.MarkCommentApproved(ctx, s.DB, c.ID, userID, wpID, publishedAt); err != nil {
		return nil, err
	}
	return s.getOwnedComment(ctx, userID, c.ID)
}

// Reject marks a comment rejected with a fresh timestamp. Rejecting an
// already-rejected comment re-applies the status; that is intended, not an
// error.
func (s *CommentService) Reject(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	c, err := s.getOwnedComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if err := repo.MarkCommentRejected(ctx, s.DB, c.ID, userID, s.now()); err != nil {
		return nil, err
	}
	return s.getOwnedComment(ctx, userID, c.ID)
}

// Reply publishes a direct reply under an existing WordPress comment on a
// site the caller owns. Nothing is persisted locally; the external id is
// returned to the caller.
func (s *CommentService) Reply(ctx context.Context, userID string, in ReplyInput) (string, error) {
	if in.ParentID == "" {
		return "", Validationf("Missing required parameter: parentId")
	}
	if in.SiteID == "" || in.PostID == "" || in.Content == "" || in.AuthorName == "" {
		return "", Validationf("Missing required parameters: siteId, postId, content, authorName")
	}
	parentID, err := strconv.Atoi(in.ParentID)
	if err != nil {
		return "", Validationf("parentId must be numeric")
	}

	site, err := s.getOwnedSite(ctx, userID, in.SiteID)
	if err != nil {
		return "", err
	}

	target := wordpress.PublishTarget{
		URL:                 site.URL,
		Username:            site.Username,
		ApplicationPassword: site.ApplicationPassword,
	}
	wpID, err := s.Publisher.PublishComment(ctx, target, in.PostID, in.Content, in.AuthorName, parentID)
	if err != nil {
		return "", &UpstreamError{Msg: ai.Redact(err.Error())}
	}
	return wpID, nil
}

func (s *CommentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
