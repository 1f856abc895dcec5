// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Persona
// model, including the bulk-create path used by POST /personas/bulk.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
)

// CreatePersona inserts the given persona with a UTC creation timestamp.
func CreatePersona(ctx context.Context, db *gorm.DB, p *domain.Persona) error {
	p.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(p).Error
}

// CreatePersonas inserts a batch of personas in a single transaction so a
// bulk request either fully persists or not at all.
func CreatePersonas(ctx context.Context, db *gorm.DB, ps []domain.Persona) error {
	now := time.Now().UTC()
	for i := range ps {
		ps[i].CreatedAt = now
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ps).Error
	})
}

// ListPersonas returns all personas belonging to userID, most recent first.
func ListPersonas(ctx context.Context, db *gorm.DB, userID string) ([]domain.Persona, error) {
	var out []domain.Persona
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetPersonaAny fetches a persona by ID regardless of owner. Callers must
// compare the returned UserID against the authenticated principal.
func GetPersonaAny(ctx context.Context, db *gorm.DB, id string) (*domain.Persona, error) {
	var p domain.Persona
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePersona applies a partial column update to a persona owned by userID.
// user_id is never part of updates. Returns ErrNotFound when no row matches.
func UpdatePersona(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	delete(updates, "user_id")
	res := db.WithContext(ctx).
		Model(&domain.Persona{}).
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

// DeletePersona soft-deletes a persona owned by userID. Returns ErrNotFound
// when no row matches.
func DeletePersona(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Persona{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
