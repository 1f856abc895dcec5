package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intensify/intensify-backend/internal/domain"
)

func seedComment(t *testing.T, db *gorm.DB, userID, status string) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		ID:        uuid.NewString(),
		SiteID:    uuid.NewString(),
		PersonaID: uuid.NewString(),
		UserID:    userID,
		PostID:    "42",
		Content:   "nice post",
		Status:    status,
	}
	if err := CreateComment(context.Background(), db, c); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return c
}

func TestListPendingComments_FiltersOwnerAndStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mine := seedComment(t, db, "user-a", domain.CommentStatusPending)
	seedComment(t, db, "user-a", domain.CommentStatusApproved)
	seedComment(t, db, "user-b", domain.CommentStatusPending)

	out, err := ListPendingComments(ctx, db, "user-a", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].ID != mine.ID {
		t.Fatalf("expected only user-a's pending comment, got %d rows", len(out))
	}
}

func TestListPendingComments_Limit(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 5; i++ {
		seedComment(t, db, "user-a", domain.CommentStatusPending)
	}
	out, err := ListPendingComments(context.Background(), db, "user-a", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(out))
	}
}

func TestSetCommentStatus_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedComment(t, db, "user-a", domain.CommentStatusPending)

	// A different owner must not flip the status.
	err := SetCommentStatus(ctx, db, c.ID, "user-b", domain.CommentStatusPublishing)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found for wrong owner, got %v", err)
	}

	if err := SetCommentStatus(ctx, db, c.ID, "user-a", domain.CommentStatusPublishing); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := GetCommentAny(ctx, db, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.CommentStatusPublishing {
		t.Fatalf("expected publishing, got %q", got.Status)
	}
}

func TestMarkCommentApproved_RecordsExternalID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedComment(t, db, "user-a", domain.CommentStatusPublishing)
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	if err := MarkCommentApproved(ctx, db, c.ID, "user-a", "1287", at); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ := GetCommentAny(ctx, db, c.ID)
	if got.Status != domain.CommentStatusApproved || got.WordPressID != "1287" {
		t.Fatalf("unexpected record: status=%q wpid=%q", got.Status, got.WordPressID)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(at) {
		t.Fatalf("expected publishedAt %v, got %v", at, got.PublishedAt)
	}
}

func TestMarkCommentRejected_RefreshesTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedComment(t, db, "user-a", domain.CommentStatusPending)

	first := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	if err := MarkCommentRejected(ctx, db, c.ID, "user-a", first); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Rejecting again is idempotent and stamps a fresh timestamp.
	second := first.Add(time.Hour)
	if err := MarkCommentRejected(ctx, db, c.ID, "user-a", second); err != nil {
		t.Fatalf("second reject: %v", err)
	}
	got, _ := GetCommentAny(ctx, db, c.ID)
	if got.Status != domain.CommentStatusRejected {
		t.Fatalf("expected rejected, got %q", got.Status)
	}
	if got.RejectedAt == nil || !got.RejectedAt.Equal(second) {
		t.Fatalf("expected rejectedAt %v, got %v", second, got.RejectedAt)
	}
}
