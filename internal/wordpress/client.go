// Package wordpress implements the outbound connector for the WordPress
// REST API: validating a site's reachability and credentials, and publishing
// comments (top-level or replies) with HTTP Basic authentication built from
// an application password.
//
// Failures cross this boundary as values, never panics. Error text returned
// from here never contains the application password; third-party error
// payloads are unwrapped to their human-readable "message" field when present.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// whitespaceRE strips blanks from application passwords; WordPress displays
// them space-grouped ("abcd efgh ijkl …") but authenticates the raw form.
var whitespaceRE = regexp.MustCompile(`\s+`)

// SiteInfo is the minimal site identity extracted from a successful probe.
type SiteInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ValidationResult is the structured outcome of ValidateConnection. It never
// carries credentials.
type ValidationResult struct {
	Success  bool      `json:"success"`
	SiteInfo *SiteInfo `json:"siteInfo,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Client issues authenticated calls against a WordPress site.
type Client struct {
	// HTTPClient performs the requests; timeouts are the caller's choice.
	HTTPClient *http.Client
	// AuthUsername is the fixed Basic-auth username used for the connection
	// probe (comment publishing uses the site's stored username instead).
	AuthUsername string
	// MaxProbeRetries bounds transient-network retries on the probe.
	MaxProbeRetries uint64
}

// NewClient constructs a Client with the given probe username and timeout.
func NewClient(authUsername string, timeout time.Duration) *Client {
	return &Client{
		HTTPClient:      &http.Client{Timeout: timeout},
		AuthUsername:    authUsername,
		MaxProbeRetries: 2,
	}
}

// NormalizeURL trims the input and prefixes https:// when no scheme is
// present. It does not validate the result.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// validURL reports whether s parses as an absolute http(s) URL with a
// plausible host. Single-label hosts other than localhost are rejected so
// that obvious junk ("bad-url") fails before any network traffic.
func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	return host == "localhost" || strings.Contains(host, ".")
}

// ValidateConnection normalizes the URL, rejects malformed input without any
// outbound call, then probes the site's current-user endpoint with Basic
// authentication. A 2xx response succeeds; the display name falls back to the
// URL when absent. Network and HTTP failures are reported in the result, not
// raised.
func (c *Client) ValidateConnection(ctx context.Context, rawURL, applicationPassword string) ValidationResult {
	cleanPassword := whitespaceRE.ReplaceAllString(applicationPassword, "")
	if rawURL == "" || cleanPassword == "" {
		return ValidationResult{Success: false, Error: "Missing WordPress URL or application password"}
	}

	siteURL := NormalizeURL(rawURL)
	if !validURL(siteURL) {
		return ValidationResult{Success: false, Error: "Invalid WordPress URL format"}
	}

	endpoint := siteURL + "/wp-json/wp/v2/users/me"

	var body []byte
	var status int
	probe := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(c.AuthUsername, cleanPassword)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			// Transient network failure: worth a retry.
			return err
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		body, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.MaxProbeRetries), ctx)
	if err := backoff.Retry(probe, bo); err != nil {
		return ValidationResult{Success: false, Error: "Could not reach WordPress site"}
	}

	if status < 200 || status > 299 {
		return ValidationResult{Success: false, Error: wpErrorMessage(body, status)}
	}

	var me struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(body, &me)
	name := me.Name
	if name == "" {
		name = siteURL
	}
	return ValidationResult{
		Success:  true,
		SiteInfo: &SiteInfo{Name: name, URL: siteURL},
	}
}

// PublishTarget carries the site coordinates needed to publish a comment.
type PublishTarget struct {
	URL                 string
	Username            string
	ApplicationPassword string
}

// PublishComment posts a comment with status "publish" to the target's
// comments endpoint and returns the externally assigned comment id.
// parentID 0 means a top-level comment. A response without a numeric id is an
// "invalid response" failure rather than a silent success.
func (c *Client) PublishComment(ctx context.Context, target PublishTarget, postID, content, authorName string, parentID int) (string, error) {
	cleanPassword := whitespaceRE.ReplaceAllString(target.ApplicationPassword, "")
	if target.URL == "" || cleanPassword == "" {
		return "", errors.New("invalid WordPress site configuration (missing URL or application password)")
	}
	if postID == "" || content == "" || authorName == "" {
		return "", errors.New("missing required parameters: postId, content, or authorName")
	}
	postNum, err := strconv.Atoi(postID)
	if err != nil {
		return "", fmt.Errorf("postId must be numeric: %q", postID)
	}

	payload := map[string]any{
		"post":        postNum,
		"content":     content,
		"author_name": authorName,
		"status":      "publish",
		"parent":      parentID,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := NormalizeURL(target.URL) + "/wp-json/wp/v2/comments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(target.Username, cleanPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to publish comment: %s", sanitizeNetErr(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to publish comment: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to publish comment: %s", wpErrorMessage(body, resp.StatusCode))
	}

	var created struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == nil {
		return "", errors.New("invalid response from WordPress: missing comment ID")
	}
	return strconv.Itoa(*created.ID), nil
}

// wpErrorMessage extracts the human-readable "message" field WordPress error
// payloads carry, falling back to a generic status description.
func wpErrorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("WordPress returned status %d", status)
}

// sanitizeNetErr reduces a transport error to its message without the full
// request URL (which could embed userinfo in pathological inputs).
func sanitizeNetErr(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
