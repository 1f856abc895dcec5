// Comment HTTP handlers.
//
// This file exposes the generation and moderation workflow:
//   - POST  /comments/generate           (LLM draft, stored as pending)
//   - GET   /comments/pending            (moderation queue)
//   - PATCH /comments/{id}/approve       (publish to WordPress)
//   - PATCH /comments/{id}/reject        (discard without publishing)
//   - POST  /comments/{id}/reply         (publish a manual reply directly)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/http/middleware"
	"github.com/intensify/intensify-backend/internal/services"
	"github.com/intensify/intensify-backend/internal/utils"
)

//
// DTOs
//

// GenerateContext carries the post (and surrounding discussion) the
// generated comment should react to.
type GenerateContext struct {
	PostTitle        string       `json:"postTitle"`
	PostContent      string       `json:"postContent"`
	ExistingComments []string     `json:"existingComments"`
	ParentComment    string       `json:"parentComment"`
	Template         *ai.Template `json:"template"`
}

// GenerateCommentRequest is the JSON payload for drafting a comment.
type GenerateCommentRequest struct {
	SiteID    string `json:"siteId" binding:"required"`
	PersonaID string `json:"personaId" binding:"required"`
	PostID    string `json:"postId"`
	// ParentID marks the draft as a reply to an existing comment.
	ParentID string          `json:"parentId"`
	Context  GenerateContext `json:"context"`
}

// ReplyRequest is the JSON payload for publishing a manual reply.
type ReplyRequest struct {
	SiteID string `json:"siteId" binding:"required"`
	// PostID addresses the WordPress post the parent comment belongs to.
	PostID     string `json:"postId"`
	Content    string `json:"content"`
	AuthorName string `json:"authorName"`
}

// ReplyResponse confirms a direct publish.
type ReplyResponse struct {
	Message     string `json:"message" example:"Reply published successfully"`
	WordPressID string `json:"wordpressId" example:"1287"`
}

//
// Handlers
//

// GenerateComment drafts a comment with the configured LLM and stores it as
// pending. Nothing reaches WordPress until the draft is approved.
func (h *Handlers) GenerateComment(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req GenerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "siteId and personaId are required")
		return
	}

	comment, err := h.commentSvc.Generate(c.Request.Context(), uid, services.GenerateInput{
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
	ok(c, http.StatusCreated, comment)
}

// ListPendingComments returns the caller's moderation queue, newest first.
// The optional "limit" query parameter caps the page size (default 50).
func (h *Handlers) ListPendingComments(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	comments, err := h.commentSvc.ListPending(c.Request.Context(), uid, limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, comments)
}

// ApproveComment publishes a pending comment to its WordPress site. On
// publish failure the comment returns to the pending queue.
func (h *Handlers) ApproveComment(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	comment, err := h.commentSvc.Approve(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, comment)
}

// RejectComment discards a pending comment without touching WordPress.
func (h *Handlers) RejectComment(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	comment, err := h.commentSvc.Reject(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, comment)
}

// ReplyToComment publishes a manual reply directly, bypassing moderation.
// The parent comment id comes from the path; the post id from the body.
func (h *Handlers) ReplyToComment(c *gin.Context) {
	uid, authed := userID(c)
	if !authed {
		return
	}
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "siteId is required")
		return
	}

	wpID, err := h.commentSvc.Reply(c.Request.Context(), uid, services.ReplyInput{
		SiteID:     req.SiteID,
		PostID:     req.PostID,
		ParentID:   strings.TrimSpace(c.Param("id")),
		Content:    req.Content,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, ReplyResponse{
		Message:     "Reply published successfully",
		WordPressID: wpID,
	})
}
