// Package ai builds persona-driven prompts and calls the LLM provider's chat
// completion endpoint to generate comment text.
//
// The provider credential is supplied by the caller on every request and is
// never stored; any recognizable key pattern is redacted from error text
// before it leaves this package.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/intensify/intensify-backend/internal/domain"
)

var (
	// ErrInvalidInput marks precondition failures (missing persona fields,
	// empty post context, absent credential). Callers map it to a 400.
	ErrInvalidInput = errors.New("invalid generation input")

	// ErrEmptyCompletion is returned when the provider answers with no text.
	ErrEmptyCompletion = errors.New("generated comment content is empty")

	// ErrInvalidKey is returned by TestKey when the provider rejects the
	// credential outright.
	ErrInvalidKey = errors.New("invalid API key")
)

// apiKeyRE matches provider secret keys so they can be scrubbed from any
// error text that might get logged or propagated.
var apiKeyRE = regexp.MustCompile(`sk-[A-Za-z0-9_\-]{20,}`)

// Template is an optional reusable content guide spliced into the prompt.
type Template struct {
	ID       string `json:"id"`
	Template string `json:"template"`
}

// CommentContext carries the post being commented on and, for replies, the
// parent comment text.
type CommentContext struct {
	PostTitle        string    `json:"postTitle"`
	PostContent      string    `json:"postContent"`
	ExistingComments []string  `json:"existingComments,omitempty"`
	Template         *Template `json:"template,omitempty"`
	ParentComment    string    `json:"parentComment,omitempty"`
	IsReply          bool      `json:"isReply,omitempty"`
}

// GeneratedComment is the shaped output of one generation call.
type GeneratedComment struct {
	Content  string                 `json:"content"`
	Metadata domain.CommentMetadata `json:"metadata"`
}

// completionClient is the slice of the OpenAI client used here; it exists so
// tests can substitute a fake without standing up an HTTP server.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Generator creates comments through the configured provider. The zero value
// uses the provider's default endpoint and the real clock.
type Generator struct {
	// BaseURL overrides the provider endpoint (used for self-hosted gateways
	// and tests). Empty means the provider default.
	BaseURL string

	// Timeout caps each outbound provider call. Zero means no client-side cap
	// beyond the request context.
	Timeout time.Duration

	// Now anchors generation metadata timestamps; defaults to time.Now.
	Now func() time.Time

	// newClient builds a provider client bound to a per-request credential.
	newClient func(apiKey string) completionClient
}

// NewGenerator constructs a Generator targeting baseURL (empty for default).
func NewGenerator(baseURL string, timeout time.Duration) *Generator {
	return &Generator{BaseURL: baseURL, Timeout: timeout, Now: time.Now}
}

func (g *Generator) client(apiKey string) completionClient {
	if g.newClient != nil {
		return g.newClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: g.Timeout}
	}
	return openai.NewClientWithConfig(cfg)
}

// TestKey performs a live probe of the credential by listing models.
// A 401/403 from the provider means the key is bad (ErrInvalidKey); other
// failures are transport errors and reported as such.
func (g *Generator) TestKey(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key is required", ErrInvalidInput)
	}
	if _, err := g.client(apiKey).ListModels(ctx); err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return ErrInvalidKey
		}
		return fmt.Errorf("API key test failed: %s", Redact(err.Error()))
	}
	return nil
}

// Generate builds the prompt from persona + site + context and requests a
// single completion with the site's sampling parameters. Empty generated
// text is a failure, not an empty success. The metadata language is always
// the persona's first listed language.
func (g *Generator) Generate(ctx context.Context, site *domain.Site, persona *domain.Persona, cctx CommentContext, apiKey string) (*GeneratedComment, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidInput)
	}
	if persona.Name == "" || persona.WritingStyle == "" || persona.Tone == "" || len(persona.Languages) == 0 {
		return nil, fmt.Errorf("%w: persona needs a name, writing style, tone, and at least one language", ErrInvalidInput)
	}
	if strings.TrimSpace(cctx.PostTitle) == "" || strings.TrimSpace(cctx.PostContent) == "" {
		return nil, fmt.Errorf("%w: post title and content are required", ErrInvalidInput)
	}

	model := site.AIModel
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	sampling := site.CommentSettings.AISettings

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(persona, cctx)},
		},
		Temperature:      sampling.Temperature,
		MaxTokens:        sampling.MaxTokens,
		PresencePenalty:  sampling.PresencePenalty,
		FrequencyPenalty: sampling.FrequencyPenalty,
	}

	resp, err := g.client(apiKey).CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("comment generation failed: %s", Redact(err.Error()))
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}

	meta := domain.CommentMetadata{
		Style:     persona.WritingStyle,
		Tone:      persona.Tone,
		Language:  persona.Languages[0],
		Timestamp: g.now().Format(time.RFC3339),
		IsReply:   cctx.IsReply,
	}
	if cctx.Template != nil {
		meta.TemplateID = cctx.Template.ID
	}
	return &GeneratedComment{Content: content, Metadata: meta}, nil
}

// BuildPrompt composes the deterministic instruction sent as the single user
// message. Structure: first-person identity line, reply or fresh-comment
// branch, optional reusable template, the article body, then a fixed list of
// style instructions with conditional emoji and hashtag lines.
func BuildPrompt(persona *domain.Persona, cctx CommentContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "As %s, a %d-year-old with a %s writing style and a %s tone, ",
		persona.Name, persona.Age,
		strings.ToLower(persona.WritingStyle), strings.ToLower(persona.Tone))

	if cctx.IsReply {
		fmt.Fprintf(&b, "reply to the following comment on the article %q:\n\n", cctx.PostTitle)
		fmt.Fprintf(&b, "Parent comment:\n%s\n", cctx.ParentComment)
	} else {
		fmt.Fprintf(&b, "write a comment on the article %q.\n", cctx.PostTitle)
	}

	if cctx.Template != nil {
		fmt.Fprintf(&b, "\nUse this template as a guide:\n%s\n", cctx.Template.Template)
	}

	fmt.Fprintf(&b, "\nArticle content:\n%s\n\n", cctx.PostContent)

	b.WriteString("Instructions:\n")
	b.WriteString("- Stay natural and authentic\n")
	b.WriteString("- Use language appropriate to the defined style and tone\n")
	b.WriteString("- Refer to the article content\n")
	b.WriteString("- Keep it to 2-3 sentences")
	if persona.Emoji {
		b.WriteString("\n- You may use emoji naturally")
	}
	if persona.UseHashtags {
		b.WriteString("\n- You may use relevant hashtags")
	}
	return b.String()
}

// Redact replaces recognizable provider key patterns in s with a placeholder.
func Redact(s string) string {
	return apiKeyRE.ReplaceAllString(s, "[REDACTED]")
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}
