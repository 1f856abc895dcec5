package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/ai"
	"github.com/intensify/intensify-backend/internal/domain"
	"github.com/intensify/intensify-backend/internal/repo"
	"github.com/intensify/intensify-backend/internal/wordpress"
)

// fakeGenerator returns canned content and records the last invocation.
type fakeGenerator struct {
	out      *ai.GeneratedComment
	err      error
	calls    int
	lastCtx  ai.CommentContext
	lastSite *domain.Site
}

func (f *fakeGenerator) Generate(ctx context.Context, site *domain.Site, persona *domain.Persona, cctx ai.CommentContext, apiKey string) (*ai.GeneratedComment, error) {
	f.calls++
	f.lastCtx = cctx
	f.lastSite = site
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// fakePublisher records publish calls and returns a canned WordPress id.
type fakePublisher struct {
	id         string
	err        error
	calls      int
	lastPost   string
	lastAuthor string
	lastParent int
}

func (f *fakePublisher) PublishComment(ctx context.Context, target wordpress.PublishTarget, postID, content, authorName string, parentID int) (string, error) {
	f.calls++
	f.lastPost = postID
	f.lastAuthor = authorName
	f.lastParent = parentID
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func seedOwnedSite(t *testing.T, db *gorm.DB, userID string) *domain.Site {
	t.Helper()
	s := &domain.Site{
		ID:                  uuid.NewString(),
		UserID:              userID,
		URL:                 "https://blog.example.com",
		Username:            "editor",
		ApplicationPassword: "editor:pass",
	}
	if err := repo.CreateSite(context.Background(), db, s); err != nil {
		t.Fatalf("seed site: %v", err)
	}
	return s
}

func seedOwnedPersona(t *testing.T, db *gorm.DB, userID string) *domain.Persona {
	t.Helper()
	p := &domain.Persona{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         "Maya",
		WritingStyle: "casual",
		Tone:         "friendly",
		Languages:    []string{"fr", "en"},
	}
	if err := repo.CreatePersona(context.Background(), db, p); err != nil {
		t.Fatalf("seed persona: %v", err)
	}
	return p
}

func seedPendingComment(t *testing.T, db *gorm.DB, userID, siteID, postID string) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		PersonaID: uuid.NewString(),
		UserID:    userID,
		PostID:    postID,
		Content:   "draft text",
		Status:    domain.CommentStatusPending,
	}
	if err := repo.CreateComment(context.Background(), db, c); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return c
}

func newCommentSvc(db *gorm.DB, gen *fakeGenerator, pub *fakePublisher) *CommentService {
	return &CommentService{DB: db, Generator: gen, Publisher: pub, Now: time.Now}
}

func TestGenerate_PersistsPendingDraft(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{out: &ai.GeneratedComment{
		Content:  "What a thoughtful take!",
		Metadata: domain.CommentMetadata{Style: "casual", Tone: "friendly", Language: "fr"},
	}}
	svc := newCommentSvc(db, gen, &fakePublisher{})
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	persona := seedOwnedPersona(t, db, "user-a")

	c, err := svc.Generate(ctx, "user-a", GenerateInput{
		SiteID:    site.ID,
		PersonaID: persona.ID,
		PostID:    "42",
		ParentID:  "7",
		Context:   ai.CommentContext{PostTitle: "Title", PostContent: "Body"},
		APIKey:    "sk-test-key-aaaaaaaaaaaaaaaaaaaa",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if c.Status != domain.CommentStatusPending {
		t.Fatalf("drafts start pending, got %q", c.Status)
	}
	if c.AuthorName != persona.Name {
		t.Fatalf("author must be the persona, got %q", c.AuthorName)
	}
	if !gen.lastCtx.IsReply {
		t.Fatalf("a parent id must flag the generation as a reply")
	}

	// Persisted, and visible in the moderation queue.
	queue, err := svc.ListPending(ctx, "user-a", 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != c.ID {
		t.Fatalf("expected the draft in the queue, got %d rows", len(queue))
	}
}

func TestGenerate_OwnershipChecks(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{out: &ai.GeneratedComment{Content: "x"}}
	svc := newCommentSvc(db, gen, &fakePublisher{})
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	persona := seedOwnedPersona(t, db, "user-b")

	_, err := svc.Generate(ctx, "user-a", GenerateInput{
		SiteID: site.ID, PersonaID: persona.ID,
		Context: ai.CommentContext{PostTitle: "T", PostContent: "B"},
		APIKey:  "sk-test",
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for a foreign persona, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("ownership must be checked before any provider call")
	}
}

func TestGenerate_UpstreamErrorsAreRedacted(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{err: errors.New("provider rejected key sk-abcdefghij0123456789ABCD")}
	svc := newCommentSvc(db, gen, &fakePublisher{})
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	persona := seedOwnedPersona(t, db, "user-a")

	_, err := svc.Generate(ctx, "user-a", GenerateInput{
		SiteID: site.ID, PersonaID: persona.ID,
		Context: ai.CommentContext{PostTitle: "T", PostContent: "B"},
		APIKey:  "sk-test",
	})
	ue, ok := AsUpstream(err)
	if !ok {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if containsKey := ai.Redact(ue.Msg) != ue.Msg; containsKey {
		t.Fatalf("key leaked into error message: %q", ue.Msg)
	}
}

func TestApprove_EmptyPostIDNeverReachesWordPress(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{id: "1287"}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	c := seedPendingComment(t, db, "user-a", site.ID, "")

	_, err := svc.Approve(ctx, "user-a", c.ID)
	ve, ok := AsValidation(err)
	if !ok || ve.Msg != "postId is required to publish the comment" {
		t.Fatalf("expected the postId validation message, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("no external call may happen without a post id")
	}
}

func TestApprove_SuccessRecordsExternalID(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{id: "1287"}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	c := seedPendingComment(t, db, "user-a", site.ID, "42")

	got, err := svc.Approve(ctx, "user-a", c.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != domain.CommentStatusApproved || got.WordPressID != "1287" {
		t.Fatalf("unexpected outcome: status=%q wpid=%q", got.Status, got.WordPressID)
	}
	if got.PublishedAt == nil {
		t.Fatalf("expected a publish timestamp")
	}
	// The seeded draft had no author, so the publish used the fallback name.
	if pub.lastAuthor != "Anonymous" {
		t.Fatalf("expected the Anonymous fallback, got %q", pub.lastAuthor)
	}
}

func TestApprove_FailedPublishRestoresPending(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{err: errors.New("WordPress error: Invalid token")}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	c := seedPendingComment(t, db, "user-a", site.ID, "42")

	_, err := svc.Approve(ctx, "user-a", c.ID)
	if _, ok := AsUpstream(err); !ok {
		t.Fatalf("expected upstream error, got %v", err)
	}

	got, gerr := repo.GetCommentAny(ctx, db, c.ID)
	if gerr != nil {
		t.Fatalf("get: %v", gerr)
	}
	if got.Status != domain.CommentStatusPending {
		t.Fatalf("a failed publish must restore pending, got %q", got.Status)
	}
	if got.WordPressID != "" {
		t.Fatalf("no external id may be recorded on failure")
	}
}

func TestApprove_CrossUserIsForbidden(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{id: "1"}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	c := seedPendingComment(t, db, "user-a", site.ID, "42")

	if _, err := svc.Approve(ctx, "user-b", c.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("foreign approvals must never publish")
	}
}

func TestReject_IsIdempotentWithFreshTimestamp(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newCommentSvc(db, &fakeGenerator{}, &fakePublisher{})
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")
	c := seedPendingComment(t, db, "user-a", site.ID, "42")

	first, err := svc.Reject(ctx, "user-a", c.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if first.Status != domain.CommentStatusRejected || first.RejectedAt == nil {
		t.Fatalf("unexpected first rejection: %+v", first)
	}

	now = now.Add(time.Hour)
	second, err := svc.Reject(ctx, "user-a", c.ID)
	if err != nil {
		t.Fatalf("second reject: %v", err)
	}
	if !second.RejectedAt.After(*first.RejectedAt) {
		t.Fatalf("expected a fresh rejection timestamp, got %v then %v", first.RejectedAt, second.RejectedAt)
	}
}

func TestReply_Validation(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{id: "900"}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")

	// Non-numeric parent ids cannot address a WordPress comment.
	_, err := svc.Reply(ctx, "user-a", ReplyInput{
		SiteID: site.ID, PostID: "42", ParentID: "abc", Content: "hi", AuthorName: "Sam",
	})
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error for non-numeric parent, got %v", err)
	}

	// The post id is mandatory because WordPress files comments under posts.
	_, err = svc.Reply(ctx, "user-a", ReplyInput{
		SiteID: site.ID, ParentID: "7", Content: "hi", AuthorName: "Sam",
	})
	if _, ok := AsValidation(err); !ok {
		t.Fatalf("expected validation error for missing post id, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("validation failures must not publish")
	}
}

func TestReply_PublishesDirectly(t *testing.T) {
	db := newTestDB(t)
	pub := &fakePublisher{id: "900"}
	svc := newCommentSvc(db, &fakeGenerator{}, pub)
	ctx := context.Background()

	site := seedOwnedSite(t, db, "user-a")

	wpID, err := svc.Reply(ctx, "user-a", ReplyInput{
		SiteID: site.ID, PostID: "42", ParentID: "7", Content: "hi", AuthorName: "Sam",
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if wpID != "900" || pub.lastParent != 7 || pub.lastPost != "42" {
		t.Fatalf("unexpected publish: id=%q parent=%d post=%q", wpID, pub.lastParent, pub.lastPost)
	}
}
