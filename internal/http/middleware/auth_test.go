package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/services"
)

// fakeVerifier maps one fixed token to one user id.
type fakeVerifier struct {
	token  string
	userID string
	err    error
}

func (f *fakeVerifier) VerifyToken(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if token != f.token {
		return "", services.ErrTokenInvalid
	}
	return f.userID, nil
}

func authRouter(v TokenVerifier, minLen int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(v, minLen))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c)})
	})
	return r
}

func doAuth(t *testing.T, r *gin.Engine, header string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return w.Code, body
}

func TestAuth_FailureModes(t *testing.T) {
	v := &fakeVerifier{token: "good-token-long-enough", userID: "u1"}
	r := authRouter(v, 10)

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "Authorization header missing or malformed"},
		{"not bearer shaped", "Basic abc123", "Invalid authorization header format"},
		{"two tokens", "Bearer a b", "Invalid authorization header format"},
		{"token too short", "Bearer short", "Token missing or invalid format"},
		{"unknown token", "Bearer wrong-token-long-enough", "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := doAuth(t, r, tc.header)
			if code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", code)
			}
			if body["error"] != tc.msg {
				t.Fatalf("expected %q, got %v", tc.msg, body["error"])
			}
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	v := &fakeVerifier{err: services.ErrTokenExpired}
	r := authRouter(v, 5)

	code, body := doAuth(t, r, "Bearer some-expired-token")
	if code != http.StatusUnauthorized || body["error"] != "Token expired" {
		t.Fatalf("expected 401 Token expired, got %d %v", code, body)
	}
}

func TestAuth_SuccessStoresUserID(t *testing.T) {
	v := &fakeVerifier{token: "good-token-long-enough", userID: "u1"}
	r := authRouter(v, 10)

	code, body := doAuth(t, r, "Bearer good-token-long-enough")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["userId"] != "u1" {
		t.Fatalf("expected the principal in context, got %v", body)
	}
}

func TestAuth_VerifierErrorsAreNotLeaked(t *testing.T) {
	v := &fakeVerifier{err: errors.New("jws: malformed segment at offset 12")}
	r := authRouter(v, 5)

	code, body := doAuth(t, r, "Bearer whatever-token")
	if code != http.StatusUnauthorized || body["error"] != "Invalid token" {
		t.Fatalf("internal verifier errors must map to the generic message, got %d %v", code, body)
	}
}
