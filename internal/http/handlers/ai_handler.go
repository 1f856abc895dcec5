// AI HTTP handlers.
//
// This file exposes the provider-facing utility endpoints:
//   - POST /ai/test-key  (live probe of the x-api-key credential)
//   - POST /ai/generate  (content-only generation, fixed-window limited)
//
// Generation burns provider tokens, so it sits behind a persisted per-user
// quota in addition to the process-wide edge limiter. The quota consumes one
// point per request and resets as a whole once the window elapses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/http/middleware"
	"github.com/intensify/intensify-backend/internal/services"
)

// aiGenerationAction keys the generation quota counter per user.
const aiGenerationAction = "ai-generation"

// TestKeyResponse confirms a usable provider key.
type TestKeyResponse struct {
	Message string `json:"message" example:"API key is valid"`
}

// GenerateAIResponse carries raw generated content plus the quota budget
// left in the current window.
type GenerateAIResponse struct {
	Content         string                 `json:"content"`
	Metadata        domain.CommentMetadata `json:"metadata"`
	RemainingPoints int                    `json:"remainingPoints"`
}

// TestAPIKey verifies the x-api-key header against the provider by listing
// available models. Shape checks already happened in the middleware.
func (h *Handlers) TestAPIKey(c *gin.Context) {
	if _, authed := userID(c); !authed {
		return
	}
	if err := h.keySvc.TestKey(c.Request.Context(), middleware.APIKey(c)); err != nil {
		switch {
		case errors.Is(err, ai.ErrInvalidKey):
			fail(c, http.StatusUnauthorized, "Invalid API key")
		case errors.Is(err, ai.ErrInvalidInput):
			fail(c, http.StatusBadRequest, "API key is required")
		default:
			fail(c, http.StatusInternalServerError, "Failed to verify API key")
		}
		return
	}
	ok(c, http.StatusOK, TestKeyResponse{Message: "API key is valid"})
}

// GenerateAI produces comment text without persisting a draft. Each call
// spends one point of the caller's hourly generation quota; exhausted quotas
// yield 429 with the instant the window reopens.
func (h *Handlers) GenerateAI(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req GenerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "siteId and personaId are required")
		return
	}

	res, err := h.quotaSvc.Consume(c.Request.Context(), uid, aiGenerationAction, h.aiRatePoints, h.aiRateWindow)
	if err != nil || !res.Allowed {
		failRateLimited(c, "Rate limit exceeded", res.NextAttempt)
		return
	}

	gen, err := h.commentSvc.GenerateContent(c.Request.Context(), uid, services.GenerateInput{
		SiteID:    req.SiteID,
		PersonaID: req.PersonaID,
		PostID:    req.PostID,
		ParentID:  req.ParentID,
		Context: ai.CommentContext{
			PostTitle:        req.Context.PostTitle,
			PostContent:      req.Context.PostContent,
			ExistingComments: req.Context.ExistingComments,
			Template:         req.Context.Template,
			ParentComment:    req.Context.ParentComment,
		},
		APIKey: middleware.APIKey(c),
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, GenerateAIResponse{
		Content:         gen.Content,
		Metadata:        gen.Metadata,
		RemainingPoints: res.RemainingPoints,
	})
}
