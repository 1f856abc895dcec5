// Package services – AuthService
//
// This file implements local account registration and token issuance. Tokens
// are HMAC-signed JWTs whose subject is the user id; verification yields the
// principal attached to every protected request. Expired tokens surface as a
// distinct error so clients can silently refresh instead of logging out.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/repo"
)

// AuthService registers users and issues/verifies access tokens.
type AuthService struct {
	DB *gorm.DB

	// Secret is the HMAC signing key.
	Secret string
	// TokenTTL bounds access token lifetime.
	TokenTTL time.Duration
	// Now is the clock used for claims; defaults to time.Now.
	Now func() time.Time
}

// NewAuthService constructs an AuthService with the real clock.
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{DB: db, Secret: secret, TokenTTL: ttl, Now: time.Now}
}

// Register validates the input and creates a new account.
// Failure modes: missing fields, malformed email, or a short password are
// ValidationErrors; a duplicate email is ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, Validationf("email, password, and name are required")
	}
	if !strings.Contains(email, "@") {
		return nil, Validationf("invalid email")
	}
	if len(password) < 6 {
		return nil, Validationf("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateUser(ctx, s.DB, email, string(hash), name)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	return u, err
}

// Login verifies the email/password pair and returns a signed access token
// plus the account. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, Validationf("email and password are required")
	}

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// IssueToken signs a JWT whose subject is userID, valid for TokenTTL.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// VerifyToken validates the signature and expiry and returns the embedded
// user id. Expired tokens map to ErrTokenExpired; every other verification
// failure maps to ErrTokenInvalid.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
