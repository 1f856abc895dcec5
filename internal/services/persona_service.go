// Package services – PersonaService
//
// This file implements the persona lifecycle, including the bulk-create path.
// Personas are owned exclusively by one user; there are no cross-persona
// invariants, so validation is per record: identity fields plus at least one
// parseable language tag.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/repo"
)

// maxBulkPersonas caps a single bulk request.
const maxBulkPersonas = 50

// PersonaService provides ownership-scoped CRUD over writer personas.
type PersonaService struct {
	DB *gorm.DB
}

// NewPersonaService constructs a PersonaService.
func NewPersonaService(db *gorm.DB) *PersonaService {
	return &PersonaService{DB: db}
}

// validatePersona checks the fields generation depends on. Language tags are
// parsed with BCP 47 rules so that downstream metadata stays well-formed.
func validatePersona(p *domain.Persona) error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("persona name is required")
	}
	if strings.TrimSpace(p.WritingStyle) == "" || strings.TrimSpace(p.Tone) == "" {
		return Validationf("writing style and tone are required")
	}
	if len(p.Languages) == 0 {
		return Validationf("at least one language is required")
	}
	for _, tag := range p.Languages {
		if _, err := language.Parse(tag); err != nil {
			return Validationf("invalid language tag: %q", tag)
		}
	}
	if p.Age < 0 {
		return Validationf("age must not be negative")
	}
	if p.ErrorRate < 0 || p.ErrorRate > 1 {
		return Validationf("errorRate must be between 0 and 1")
	}
	return nil
}

// Create validates and persists a single persona owned by userID.
func (s *PersonaService) Create(ctx context.Context, userID string, p domain.Persona) (*domain.Persona, error) {
	if err := validatePersona(&p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.UserID = userID
	if err := repo.CreatePersona(ctx, s.DB, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// BulkCreate validates and persists a batch of personas atomically: one bad
// record rejects the whole request before anything is written.
func (s *PersonaService) BulkCreate(ctx context.Context, userID string, ps []domain.Persona) ([]domain.Persona, error) {
	if len(ps) == 0 {
		return nil, Validationf("at least one persona is required")
	}
	if len(ps) > maxBulkPersonas {
		return nil, Validationf("at most %d personas per bulk request", maxBulkPersonas)
	}
	for i := range ps {
		if err := validatePersona(&ps[i]); err != nil {
			return nil, err
		}
		ps[i].ID = uuid.NewString()
		ps[i].UserID = userID
	}
	if err := repo.CreatePersonas(ctx, s.DB, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// List returns all personas owned by userID, most recent first.
func (s *PersonaService) List(ctx context.Context, userID string) ([]domain.Persona, error) {
	return repo.ListPersonas(ctx, s.DB, userID)
}

// Get fetches one persona, distinguishing absence (ErrPersonaNotFound) from
// a record owned by someone else (ErrNotOwner).
func (s *PersonaService) Get(ctx context.Context, userID, id string) (*domain.Persona, error) {
	p, err := repo.GetPersonaAny(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonaNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotOwner
	}
	return p, nil
}

// Update applies a partial update to a persona the caller owns.
func (s *PersonaService) Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Persona, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := repo.UpdatePersona(ctx, s.DB, id, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a persona the caller owns.
func (s *PersonaService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return repo.DeletePersona(ctx, s.DB, id, userID)
}
