// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Site model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a site is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ownership is enforced one level up (services) by loading the record first
// and comparing its user id against the caller; GetSiteAny exists for that
// check so that "not found" and "not owned" remain distinguishable.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSite inserts the given site. The caller supplies the ID and owner;
// CreatedAt is set to UTC here.
func CreateSite(ctx context.Context, db *gorm.DB, s *domain.Site) error {
	s.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(s).Error
}

// ListSites returns all sites belonging to userID, ordered by creation time
// descending (most recent first). It returns an empty slice if the user has
// no sites.
func ListSites(ctx context.Context, db *gorm.DB, userID string) ([]domain.Site, error) {
	var out []domain.Site
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetSiteAny fetches a site by ID regardless of owner. Callers must compare
// the returned UserID against the authenticated principal before using it.
func GetSiteAny(ctx context.Context, db *gorm.DB, id string) (*domain.Site, error) {
	var s domain.Site
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSite applies a partial column update to a site owned by userID.
// Unspecified fields are left unchanged; user_id is never part of updates.
// If no rows are affected (site missing or not owned), it returns ErrNotFound.
func UpdateSite(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	delete(updates, "user_id")
	res := db.WithContext(ctx).
		Model(&domain.Site{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSite soft-deletes a site owned by userID. If no rows are affected,
// it returns ErrNotFound.
func DeleteSite(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Site{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
