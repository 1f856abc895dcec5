// Package handlers centralizes the mapping from service-layer errors to HTTP
// responses.
//
// Every handler funnels failures through failFromErr so that the whole API
// translates the service error taxonomy consistently:
//
//   - validation errors            → 400 with the validation message
//   - credential / token errors    → 401
//   - ownership violations         → 403
//   - missing resources            → 404
//   - duplicate registrations      → 400
//   - exhausted rate-limit windows → 429 with nextAttempt
//   - upstream (WordPress / AI)    → 500 with the sanitized upstream message
//   - anything else                → 500 generic
//
// Handlers never leak raw database or transport errors to clients; anything
// unrecognized collapses into the generic internal message.

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/services"
)

// genericInternalMsg is the catch-all body for unclassified failures.
const genericInternalMsg = "Internal server error"

// failFromErr translates a service-layer error into the standard envelope.
func failFromErr(c *gin.Context, err error) {
	if ve, ok := services.AsValidation(err); ok {
		fail(c, http.StatusBadRequest, ve.Msg)
		return
	}
	if rl, ok := services.AsRateLimit(err); ok {
		failRateLimited(c, "Rate limit exceeded", rl.NextAttempt)
		return
	}
	if ue, ok := services.AsUpstream(err); ok {
		fail(c, http.StatusInternalServerError, ue.Msg)
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrTokenExpired):
		fail(c, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, services.ErrTokenInvalid):
		fail(c, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, services.ErrDuplicateEmail):
		fail(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrNotOwner):
		fail(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrSiteNotFound):
		fail(c, http.StatusNotFound, "Site not found")
	case errors.Is(err, services.ErrPersonaNotFound):
		fail(c, http.StatusNotFound, "Persona not found")
	case errors.Is(err, services.ErrCommentNotFound):
		fail(c, http.StatusNotFound, "Comment not found")
	default:
		fail(c, http.StatusInternalServerError, genericInternalMsg)
	}
}
