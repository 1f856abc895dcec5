// Site HTTP handlers.
//
// This file exposes REST endpoints for registered WordPress sites:
//   - GET    /sites                      (list)
//   - POST   /sites                      (register, probes credentials first)
//   - POST   /sites/test-connection      (probe without persisting)
//   - GET    /sites/{id}                 (fetch)
//   - PATCH  /sites/{id}                 (partial update)
//   - DELETE /sites/{id}                 (remove)
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/services"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

//
// DTOs
//

// CreateSiteRequest is the JSON payload for registering a site. Field
// presence is validated by the service so the error message can name every
// missing field at once.
type CreateSiteRequest struct {
	URL                 string `json:"url" example:"myblog.example.com"`
	Username            string `json:"username" example:"editor"`
	ApplicationPassword string `json:"applicationPassword"`
	AIProvider          string `json:"aiProvider" example:"openai"`
	AIModel             string `json:"aiModel" example:"gpt-4o-mini"`
}

// UpdateSiteRequest is the JSON payload for a partial site update. Nil
// pointers leave the corresponding field unchanged.
type UpdateSiteRequest struct {
	Name                *string                 `json:"name"`
	URL                 *string                 `json:"url"`
	Username            *string                 `json:"username"`
	ApplicationPassword *string                 `json:"applicationPassword"`
	AIProvider          *string                 `json:"aiProvider"`
	AIModel             *string                 `json:"aiModel"`
	AutoGenerate        *bool                   `json:"autoGenerate"`
	CommentSettings     *domain.CommentSettings `json:"commentSettings"`
	AssignedPersonas    *[]string               `json:"assignedPersonas"`
}

// TestConnectionRequest is the JSON payload for a credential probe.
type TestConnectionRequest struct {
	URL                 string `json:"url"`
	ApplicationPassword string `json:"applicationPassword"`
}

// TestConnectionResponse reports a probe outcome without persisting anything.
type TestConnectionResponse struct {
	URL      string              `json:"url"`
	Success  bool                `json:"success"`
	SiteInfo *wordpress.SiteInfo `json:"siteInfo,omitempty"`
	Error    string              `json:"error,omitempty"`
}

//
// Handlers
//

// ListSites returns every site owned by the caller, newest first.
func (h *Handlers) ListSites(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	sites, err := h.siteSvc.List(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, sites)
}

// CreateSite registers a WordPress site after probing its credentials.
func (h *Handlers) CreateSite(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	site, err := h.siteSvc.Create(c.Request.Context(), uid, services.CreateSiteInput{
		URL:                 req.URL,
		Username:            req.Username,
		ApplicationPassword: req.ApplicationPassword,
		AIProvider:          req.AIProvider,
		AIModel:             req.AIModel,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, site)
}

// TestSiteConnection probes a WordPress site without persisting anything.
func (h *Handlers) TestSiteConnection(c *gin.Context) {
	if _, authed := userID(c); !authed {
		return
	}
	var req TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	normalized, res, err := h.siteSvc.TestConnection(c.Request.Context(), req.URL, req.ApplicationPassword)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, TestConnectionResponse{
		URL:      normalized,
		Success:  res.Success,
		SiteInfo: res.SiteInfo,
		Error:    res.Error,
	})
}

// GetSite fetches a single site owned by the caller.
func (h *Handlers) GetSite(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	site, err := h.siteSvc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, site)
}

// UpdateSite applies a partial update to a site owned by the caller.
func (h *Handlers) UpdateSite(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = wordpress.NormalizeURL(*req.URL)
	}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.ApplicationPassword != nil {
		updates["application_password"] = *req.ApplicationPassword
	}
	if req.AIProvider != nil {
		updates["ai_provider"] = *req.AIProvider
	}
	if req.AIModel != nil {
		updates["ai_model"] = *req.AIModel
	}
	if req.AutoGenerate != nil {
		updates["auto_generate"] = *req.AutoGenerate
	}
	if req.CommentSettings != nil {
		raw, err := json.Marshal(req.CommentSettings)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		updates["comment_settings"] = string(raw)
	}
	if req.AssignedPersonas != nil {
		raw, err := json.Marshal(*req.AssignedPersonas)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		updates["assigned_personas"] = string(raw)
	}

	site, err := h.siteSvc.Update(c.Request.Context(), uid, c.Param("id"), updates)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, site)
}

// DeleteSite removes a site owned by the caller.
func (h *Handlers) DeleteSite(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	if err := h.siteSvc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}
