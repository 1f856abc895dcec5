// Account HTTP handlers.
//
// This file exposes the public authentication endpoints:
//   - POST /auth/register (create account)
//   - POST /auth/login    (exchange credentials for a bearer token)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"writer@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
	// Name optionally sets a display name.
	Name string `json:"name" example:"Alex Writer"`
}

// LoginRequest is the JSON payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"writer@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"message" example:"User registered successfully"`
	UserID  string `json:"userId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// LoginResponse carries the signed access token.
type LoginResponse struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token"`
}

//
// Handlers
//

// Register creates an account from an email and password.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		UserID:  u.ID,
	})
}

// Login verifies credentials and returns a bearer token.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, _, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}
