// Persona HTTP handlers.
//
// This file exposes REST endpoints for synthetic writer profiles:
//   - GET    /personas        (list)
//   - POST   /personas        (create one)
//   - POST   /personas/bulk   (create up to 50 atomically)
//   - GET    /personas/{id}   (fetch)
//   - PATCH  /personas/{id}   (partial update)
//   - DELETE /personas/{id}   (remove)
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/domain"
)

//
// DTOs
//

// BulkPersonasRequest wraps the personas to create in a single transaction.
type BulkPersonasRequest struct {
	Personas []domain.Persona `json:"personas"`
}

// UpdatePersonaRequest is the JSON payload for a partial persona update. Nil
// pointers leave the corresponding field unchanged.
type UpdatePersonaRequest struct {
	Name                    *string   `json:"name"`
	Gender                  *string   `json:"gender"`
	Age                     *int      `json:"age"`
	WritingStyle            *string   `json:"writingStyle"`
	WritingStyleDescription *string   `json:"writingStyleDescription"`
	Tone                    *string   `json:"tone"`
	ToneDescription         *string   `json:"toneDescription"`
	Languages               *[]string `json:"languages"`
	ErrorRate               *float64  `json:"errorRate"`
	Topics                  *[]string `json:"topics"`
	Emoji                   *bool     `json:"emoji"`
	UseHashtags             *bool     `json:"useHashtags"`
	MentionOthers           *bool     `json:"mentionOthers"`
	IncludeMedia            *bool     `json:"includeMedia"`
}

//
// Handlers
//

// ListPersonas returns every persona owned by the caller, newest first.
func (h *Handlers) ListPersonas(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	personas, err := h.personaSvc.List(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, personas)
}

// CreatePersona creates a single persona for the caller.
func (h *Handlers) CreatePersona(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var p domain.Persona
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.personaSvc.Create(c.Request.Context(), uid, p)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// BulkCreatePersonas creates up to 50 personas in one transaction. Either
// every persona is persisted or none is.
func (h *Handlers) BulkCreatePersonas(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req BulkPersonasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.personaSvc.BulkCreate(c.Request.Context(), uid, req.Personas)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"personas": created, "count": len(created)})
}

// GetPersona fetches a single persona owned by the caller.
func (h *Handlers) GetPersona(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	p, err := h.personaSvc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdatePersona applies a partial update to a persona owned by the caller.
func (h *Handlers) UpdatePersona(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req UpdatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.WritingStyle != nil {
		updates["writing_style"] = *req.WritingStyle
	}
	if req.WritingStyleDescription != nil {
		updates["writing_style_description"] = *req.WritingStyleDescription
	}
	if req.Tone != nil {
		updates["tone"] = *req.Tone
	}
	if req.ToneDescription != nil {
		updates["tone_description"] = *req.ToneDescription
	}
	if req.Languages != nil {
		raw, err := json.Marshal(*req.Languages)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		updates["languages"] = string(raw)
	}
	if req.ErrorRate != nil {
		updates["error_rate"] = *req.ErrorRate
	}
	if req.Topics != nil {
		raw, err := json.Marshal(*req.Topics)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		updates["topics"] = string(raw)
	}
	if req.Emoji != nil {
		updates["emoji"] = *req.Emoji
	}
	if req.UseHashtags != nil {
		updates["use_hashtags"] = *req.UseHashtags
	}
	if req.MentionOthers != nil {
		updates["mention_others"] = *req.MentionOthers
	}
	if req.IncludeMedia != nil {
		updates["include_media"] = *req.IncludeMedia
	}

	p, err := h.personaSvc.Update(c.Request.Context(), uid, c.Param("id"), updates)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePersona removes a persona owned by the caller.
func (h *Handlers) DeletePersona(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	if err := h.personaSvc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}
