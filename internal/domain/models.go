// Package domain defines the persistence models for users, sites, personas,
// comments, and rate-limit counters. These types are mapped with GORM and
// form the core data layer of the Intensify application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Comment lifecycle statuses. Transitions are one-way
// (pending → approved|rejected); "publishing" is a transient write-ahead
// marker set just before the external WordPress call so that a crash between
// publish and the local status update is detectable afterwards.
const (
	CommentStatusPending    = "pending"
	CommentStatusPublishing = "publishing"
	CommentStatusApproved   = "approved"
	CommentStatusRejected   = "rejected"
)

// User represents a registered account. Authentication tokens embed the user
// ID as the stable principal; every owned resource references it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Name: display name shown in the client.
type User struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string         `json:"-"             gorm:"type:varchar(255);not null"`
	Name         string         `json:"name"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// FrequencySettings bound how often comments may be generated for a site.
type FrequencySettings struct {
	CommentsPerDay int `json:"commentsPerDay"`
	MinDelay       int `json:"minDelay"` // minutes
	MaxDelay       int `json:"maxDelay"` // minutes
}

// ScheduleSettings declare the daily window in which generation is allowed.
// These values are persisted configuration only: no in-process scheduler
// executes them.
type ScheduleSettings struct {
	StartTime  string `json:"startTime"` // "HH:MM"
	EndTime    string `json:"endTime"`   // "HH:MM"
	DaysOfWeek []int  `json:"daysOfWeek"`
}

// AISettings are the sampling parameters forwarded to the LLM provider.
type AISettings struct {
	Temperature      float32 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	PresencePenalty  float32 `json:"presencePenalty"`
	FrequencyPenalty float32 `json:"frequencyPenalty"`
}

// CommentSettings is the per-site comment-generation policy.
type CommentSettings struct {
	Mode               string            `json:"mode"` // "auto" | "manual"
	Frequency          FrequencySettings `json:"frequency"`
	Schedule           ScheduleSettings  `json:"schedule"`
	Languages          []string          `json:"language"`
	ReplyProbability   float64           `json:"replyProbability"`
	MaxCommentsPerPost int               `json:"maxCommentsPerPost"`
	AISettings         AISettings        `json:"aiSettings"`
}

// Site represents a registered WordPress target owned by a user. The stored
// application password is a shared secret used for HTTP Basic authentication
// against the WordPress REST API.
//
// Invariants:
//   - UserID is immutable after creation (updates never touch it).
//   - URL is a well-formed absolute URL (normalized to https:// on create).
type Site struct {
	ID                  string          `json:"id"                  gorm:"type:char(36);primaryKey"`
	UserID              string          `json:"userId"              gorm:"type:char(36);not null;index:idx_user_sites"`
	Name                string          `json:"name"                gorm:"type:varchar(255)"`
	URL                 string          `json:"url"                 gorm:"type:varchar(512);not null"`
	Username            string          `json:"username"            gorm:"type:varchar(255);not null"`
	ApplicationPassword string          `json:"-"                   gorm:"type:varchar(255);not null"`
	AIProvider          string          `json:"aiProvider"          gorm:"type:varchar(64)"`
	AIModel             string          `json:"aiModel"             gorm:"type:varchar(128)"`
	AutoGenerate        bool            `json:"autoGenerate"`
	CommentSettings     CommentSettings `json:"commentSettings"     gorm:"serializer:json"`
	AssignedPersonas    []string        `json:"assignedPersonas"    gorm:"serializer:json"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt  `json:"-"                   gorm:"index"`
}

// TableName returns the database table name for Site.
func (Site) TableName() string { return "sites" }

// Persona is a configured synthetic writer profile used to generate comment
// text. Personas are owned exclusively by one user; there are no cross-persona
// invariants.
type Persona struct {
	ID                      string         `json:"id"                      gorm:"type:char(36);primaryKey"`
	UserID                  string         `json:"userId"                  gorm:"type:char(36);not null;index:idx_user_personas"`
	Name                    string         `json:"name"                    gorm:"type:varchar(255);not null"`
	Gender                  string         `json:"gender"                  gorm:"type:varchar(16)"`
	Age                     int            `json:"age"`
	WritingStyle            string         `json:"writingStyle"            gorm:"type:varchar(128);not null"`
	WritingStyleDescription string         `json:"writingStyleDescription" gorm:"type:text"`
	Tone                    string         `json:"tone"                    gorm:"type:varchar(128);not null"`
	ToneDescription         string         `json:"toneDescription"         gorm:"type:text"`
	Languages               []string       `json:"languages"               gorm:"serializer:json"`
	ErrorRate               float64        `json:"errorRate"`
	Topics                  []string       `json:"topics"                  gorm:"serializer:json"`
	Emoji                   bool           `json:"emoji"`
	UseHashtags             bool           `json:"useHashtags"`
	MentionOthers           bool           `json:"mentionOthers"`
	IncludeMedia            bool           `json:"includeMedia"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`
	DeletedAt               gorm.DeletedAt `json:"-"                       gorm:"index"`
}

// TableName returns the database table name for Persona.
func (Persona) TableName() string { return "personas" }

// CommentMetadata captures how a comment was generated. The language is
// always the persona's first listed language, not inferred from the text.
type CommentMetadata struct {
	Style      string `json:"style"`
	Tone       string `json:"tone"`
	Language   string `json:"language"`
	Timestamp  string `json:"timestamp"`
	IsReply    bool   `json:"isReply,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

// Comment is a generated comment awaiting moderation or already pushed to
// WordPress. PostID targets the WordPress post; ParentID, when non-empty,
// targets the WordPress comment this one replies to. WordPressID is the
// externally assigned identifier recorded only after a confirmed publish.
type Comment struct {
	ID          string          `json:"id"                    gorm:"type:char(36);primaryKey"`
	SiteID      string          `json:"siteId"                gorm:"type:char(36);not null;index"`
	PersonaID   string          `json:"personaId"             gorm:"type:char(36);not null;index"`
	UserID      string          `json:"userId"                gorm:"type:char(36);not null;index:idx_user_comments,priority:1"`
	PostID      string          `json:"postId"                gorm:"type:varchar(64)"`
	ParentID    string          `json:"parentId,omitempty"    gorm:"type:varchar(64)"`
	Content     string          `json:"content"               gorm:"type:text;not null"`
	AuthorName  string          `json:"authorName"            gorm:"type:varchar(255)"`
	Status      string          `json:"status"                gorm:"type:varchar(16);not null;default:'pending';index:idx_user_comments,priority:2;check:status IN ('pending','publishing','approved','rejected')"`
	WordPressID string          `json:"wordpressId,omitempty" gorm:"type:varchar(64)"`
	Metadata    CommentMetadata `json:"metadata"              gorm:"serializer:json"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	RejectedAt  *time.Time      `json:"rejectedAt,omitempty"`
	DeletedAt   gorm.DeletedAt  `json:"-"                     gorm:"index"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// RateLimit is a fixed-window counter row keyed by "<identifier>_<action>".
// LastAttempt is refreshed only when the counter is initialized or the window
// resets; a mere decrement keeps the original window anchor.
type RateLimit struct {
	Key             string    `json:"key"             gorm:"type:varchar(192);primaryKey"`
	RemainingPoints int       `json:"remainingPoints" gorm:"not null"`
	LastAttempt     time.Time `json:"lastAttempt"     gorm:"not null"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName returns the database table name for RateLimit.
func (RateLimit) TableName() string { return "rate_limits" }
