// Handler wiring.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Every dependency is an interface
// so transport concerns stay separate from business logic and tests can
// substitute fakes.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/http/middleware"
	"github.com/intensify/intensify-backend/internal/services"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

//
// Service contracts (context-aware)
//

// AuthService defines the account operations consumed by HTTP handlers.
type AuthService interface {
	// Register creates an account and returns the stored user.
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	// Login verifies credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// SiteService defines ownership-scoped site CRUD plus connection probing.
type SiteService interface {
	Create(ctx context.Context, userID string, in services.CreateSiteInput) (*domain.Site, error)
	TestConnection(ctx context.Context, rawURL, applicationPassword string) (string, wordpress.ValidationResult, error)
	List(ctx context.Context, userID string) ([]domain.Site, error)
	Get(ctx context.Context, userID, id string) (*domain.Site, error)
	Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Site, error)
	Delete(ctx context.Context, userID, id string) error
}

// PersonaService defines ownership-scoped persona CRUD.
type PersonaService interface {
	Create(ctx context.Context, userID string, p domain.Persona) (*domain.Persona, error)
	BulkCreate(ctx context.Context, userID string, ps []domain.Persona) ([]domain.Persona, error)
	List(ctx context.Context, userID string) ([]domain.Persona, error)
	Get(ctx context.Context, userID, id string) (*domain.Persona, error)
	Update(ctx context.Context, userID, id string, updates map[string]any) (*domain.Persona, error)
	Delete(ctx context.Context, userID, id string) error
}

// CommentService defines the generation and moderation workflow.
type CommentService interface {
	Generate(ctx context.Context, userID string, in services.GenerateInput) (*domain.Comment, error)
	GenerateContent(ctx context.Context, userID string, in services.GenerateInput) (*ai.GeneratedComment, error)
	ListPending(ctx context.Context, userID string, limit int) ([]domain.Comment, error)
	Approve(ctx context.Context, userID, commentID string) (*domain.Comment, error)
	Reject(ctx context.Context, userID, commentID string) (*domain.Comment, error)
	Reply(ctx context.Context, userID string, in services.ReplyInput) (string, error)
}

// KeyTester verifies that a provider API key is usable.
type KeyTester interface {
	TestKey(ctx context.Context, apiKey string) error
}

// QuotaConsumer spends points from a fixed-window counter.
type QuotaConsumer interface {
	Consume(ctx context.Context, identifier, action string, points int, window time.Duration) (services.RateLimitResult, error)
}

// Handlers groups the HTTP endpoints for accounts, sites, personas, comments,
// and AI utilities.
type Handlers struct {
	authSvc    AuthService
	siteSvc    SiteService
	personaSvc PersonaService
	commentSvc CommentService
	keySvc     KeyTester
	quotaSvc   QuotaConsumer

	// Quota applied to the comment-generation endpoint.
	aiRatePoints int
	aiRateWindow time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	siteSvc SiteService,
	personaSvc PersonaService,
	commentSvc CommentService,
	keySvc KeyTester,
	quotaSvc QuotaConsumer,
	aiRatePoints int,
	aiRateWindow time.Duration,
) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		siteSvc:      siteSvc,
		personaSvc:   personaSvc,
		commentSvc:   commentSvc,
		keySvc:       keySvc,
		quotaSvc:     quotaSvc,
		aiRatePoints: aiRatePoints,
		aiRateWindow: aiRateWindow,
	}
}

// userID extracts the authenticated user id set by the auth middleware. When
// absent the request is aborted with 401; protected routes are always
// registered behind the middleware, so this is a backstop, not a code path.
func userID(c *gin.Context) (string, bool) {
	uid := middleware.UserID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, "Authorization header missing or malformed")
		return "", false
	}
	return uid, true
}
