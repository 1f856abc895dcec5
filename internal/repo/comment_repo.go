// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment
// model and its moderation status transitions.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
)

// CreateComment inserts the given comment with a UTC creation timestamp.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.Comment) error {
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// ListPendingComments returns the caller's pending comments, most recent
// first. A limit <= 0 disables the cap.
func ListPendingComments(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Comment, error) {
	var out []domain.Comment
	q := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.CommentStatusPending).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetCommentAny fetches a comment by ID regardless of owner. Callers must
// compare the returned UserID against the authenticated principal.
func GetCommentAny(ctx context.Context, db *gorm.DB, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCommentStatus updates only the status column for a comment owned by
// userID. Used for the publishing write-ahead marker and for restoring
// pending after a failed publish.
func SetCommentStatus(ctx context.Context, db *gorm.DB, id, userID, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkCommentApproved records a confirmed publish: status, the externally
// assigned WordPress id, and the publish timestamp in one update.
func MarkCommentApproved(ctx context.Context, db *gorm.DB, id, userID, wordpressID string, publishedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"status":       domain.CommentStatusApproved,
			"word_press_id": wordpressID,
			"published_at": publishedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkCommentRejected sets the rejected status with a fresh timestamp.
// Rejecting an already-rejected comment re-applies the status and refreshes
// rejected_at; that is intended behavior, not an error.
func MarkCommentRejected(ctx context.Context, db *gorm.DB, id, userID string, rejectedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"status":      domain.CommentStatusRejected,
			"rejected_at": rejectedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
