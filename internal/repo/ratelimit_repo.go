// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the persisted
// fixed-window rate-limit counters.
//
// Counters are keyed by "<identifier>_<action>" and are never explicitly
// deleted: they are created on first use and overwritten on reset or
// decrement. The read-modify-write cycle performed by the service layer is
// not transactional; see services.RateLimitService for the documented race.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/intensify/intensify-backend/internal/domain"
)

// RateLimitKey builds the storage key for an (identifier, action) pair.
func RateLimitKey(identifier, action string) string {
	return identifier + "_" + action
}

// GetRateLimit loads the counter row for key, or ErrNotFound when the pair
// has never been seen.
func GetRateLimit(ctx context.Context, db *gorm.DB, key string) (*domain.RateLimit, error) {
	var rl domain.RateLimit
	err := db.WithContext(ctx).Where("key = ?", key).First(&rl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rl, nil
}

// SaveRateLimit upserts the counter row, overwriting remaining points and the
// last-attempt anchor.
func SaveRateLimit(ctx context.Context, db *gorm.DB, key string, remaining int, lastAttempt time.Time) error {
	rl := domain.RateLimit{
		Key:             key,
		RemainingPoints: remaining,
		LastAttempt:     lastAttempt,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"remaining_points", "last_attempt", "updated_at"}),
		}).
		Create(&rl).Error
}
