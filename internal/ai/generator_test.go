package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/intensify/intensify-backend/internal/domain"
)

// fakeCompletion stands in for the provider client.
type fakeCompletion struct {
	resp    openai.ChatCompletionResponse
	err     error
	listErr error
	lastReq openai.ChatCompletionRequest
	keys    []string
}

func (f *fakeCompletion) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeCompletion) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return openai.ModelsList{}, f.listErr
}

func newFakeGenerator(fake *fakeCompletion) *Generator {
	g := NewGenerator("", 0)
	g.Now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	g.newClient = func(apiKey string) completionClient {
		fake.keys = append(fake.keys, apiKey)
		return fake
	}
	return g
}

func completionWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func testPersona() *domain.Persona {
	return &domain.Persona{
		Name:         "Maya",
		Age:          29,
		WritingStyle: "Casual",
		Tone:         "Friendly",
		Languages:    []string{"fr", "en"},
	}
}

func testSite() *domain.Site {
	return &domain.Site{AIModel: "gpt-4o-mini"}
}

func TestGenerate_InputValidation(t *testing.T) {
	fake := &fakeCompletion{resp: completionWith("ok")}
	g := newFakeGenerator(fake)
	ctx := context.Background()
	cctx := CommentContext{PostTitle: "T", PostContent: "B"}

	cases := []struct {
		name    string
		persona *domain.Persona
		cctx    CommentContext
		key     string
	}{
		{"missing key", testPersona(), cctx, "   "},
		{"persona without languages", &domain.Persona{Name: "X", WritingStyle: "c", Tone: "f"}, cctx, "sk-k"},
		{"empty post title", testPersona(), CommentContext{PostContent: "B"}, "sk-k"},
		{"empty post content", testPersona(), CommentContext{PostTitle: "T"}, "sk-k"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Generate(ctx, testSite(), tc.persona, tc.cctx, tc.key)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if len(fake.keys) != 0 {
		t.Fatalf("validation failures must not build a client")
	}
}

func TestGenerate_PromptAndMetadata(t *testing.T) {
	fake := &fakeCompletion{resp: completionWith("Love this take! #tech")}
	g := newFakeGenerator(fake)

	persona := testPersona()
	persona.Emoji = true
	persona.UseHashtags = true

	site := testSite()
	site.CommentSettings.AISettings.Temperature = 0.9
	site.CommentSettings.AISettings.MaxTokens = 120

	cctx := CommentContext{
		PostTitle:     "Why Go",
		PostContent:   "A long article about Go.",
		ParentComment: "Totally disagree.",
		IsReply:       true,
		Template:      &Template{ID: "tpl-1", Template: "Open with a question."},
	}

	out, err := g.Generate(context.Background(), site, persona, cctx, "sk-test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	prompt := fake.lastReq.Messages[0].Content
	for _, want := range []string{
		"As Maya, a 29-year-old",
		"casual writing style",
		"friendly tone",
		`reply to the following comment on the article "Why Go"`,
		"Totally disagree.",
		"Open with a question.",
		"A long article about Go.",
		"- You may use emoji naturally",
		"- You may use relevant hashtags",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}

	if fake.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("expected the site's model, got %q", fake.lastReq.Model)
	}
	if fake.lastReq.Temperature != 0.9 || fake.lastReq.MaxTokens != 120 {
		t.Errorf("sampling parameters not forwarded: %+v", fake.lastReq)
	}

	m := out.Metadata
	if m.Style != "Casual" || m.Tone != "Friendly" || m.Language != "fr" {
		t.Errorf("unexpected metadata: %+v", m)
	}
	if !m.IsReply || m.TemplateID != "tpl-1" {
		t.Errorf("reply and template markers missing: %+v", m)
	}
	if m.Timestamp != "2026-06-01T09:00:00Z" {
		t.Errorf("unexpected timestamp %q", m.Timestamp)
	}
}

func TestGenerate_FreshCommentBranch(t *testing.T) {
	fake := &fakeCompletion{resp: completionWith("Nice.")}
	g := newFakeGenerator(fake)

	_, err := g.Generate(context.Background(), testSite(), testPersona(),
		CommentContext{PostTitle: "Why Go", PostContent: "Body"}, "sk-test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	prompt := fake.lastReq.Messages[0].Content
	if !strings.Contains(prompt, `write a comment on the article "Why Go"`) {
		t.Fatalf("expected the fresh-comment branch:\n%s", prompt)
	}
	if strings.Contains(prompt, "Parent comment:") {
		t.Fatalf("parent section must not appear for fresh comments")
	}
	if fake.lastReq.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", fake.lastReq.Model)
	}
}

func TestGenerate_DefaultModel(t *testing.T) {
	fake := &fakeCompletion{resp: completionWith("Nice.")}
	g := newFakeGenerator(fake)

	_, err := g.Generate(context.Background(), &domain.Site{}, testPersona(),
		CommentContext{PostTitle: "T", PostContent: "B"}, "sk-test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fake.lastReq.Model != openai.GPT3Dot5Turbo {
		t.Fatalf("expected the fallback model, got %q", fake.lastReq.Model)
	}
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	fake := &fakeCompletion{resp: completionWith("   ")}
	g := newFakeGenerator(fake)

	_, err := g.Generate(context.Background(), testSite(), testPersona(),
		CommentContext{PostTitle: "T", PostContent: "B"}, "sk-test")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestGenerate_RedactsKeyFromProviderErrors(t *testing.T) {
	fake := &fakeCompletion{err: errors.New("401 for key sk-abcdefghij0123456789ABCD")}
	g := newFakeGenerator(fake)

	_, err := g.Generate(context.Background(), testSite(), testPersona(),
		CommentContext{PostTitle: "T", PostContent: "B"}, "sk-abcdefghij0123456789ABCD")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "sk-abcdefghij") {
		t.Fatalf("key leaked: %v", err)
	}
	if !strings.Contains(err.Error(), "[REDACTED]") {
		t.Fatalf("expected redaction marker: %v", err)
	}
}

func TestTestKey(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		g := newFakeGenerator(&fakeCompletion{})
		if err := g.TestKey(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("provider rejects credential", func(t *testing.T) {
		fake := &fakeCompletion{listErr: &openai.APIError{HTTPStatusCode: 401}}
		g := newFakeGenerator(fake)
		if err := g.TestKey(context.Background(), "sk-bad"); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		fake := &fakeCompletion{listErr: errors.New("dial tcp: timeout")}
		g := newFakeGenerator(fake)
		err := g.TestKey(context.Background(), "sk-good")
		if err == nil || errors.Is(err, ErrInvalidKey) {
			t.Fatalf("transport errors are not key rejections: %v", err)
		}
	})

	t.Run("valid key", func(t *testing.T) {
		g := newFakeGenerator(&fakeCompletion{})
		if err := g.TestKey(context.Background(), "sk-good"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRedact(t *testing.T) {
	in := "request with sk-abcdefghij0123456789XYZ_ failed twice"
	out := Redact(in)
	if strings.Contains(out, "sk-abcdefghij") || !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("unexpected redaction: %q", out)
	}
	if got := Redact("no keys here"); got != "no keys here" {
		t.Fatalf("redaction must be a no-op without keys: %q", got)
	}
}
