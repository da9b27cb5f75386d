package story

import (
	"strings"
	"time"
)

// DefaultTTL is how long a story stays live before it becomes eligible for
// archival.
const DefaultTTL = 24 * time.Hour

type Story struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	UserID             uint       `json:"user_id" gorm:"index;not null"`
	MediaURL           string     `json:"media_url" gorm:"type:text;not null"` // Opaque CDN reference
	CreatedAt          time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpireAt           time.Time  `json:"expire_at" gorm:"index"`
	ShowReactionCounts bool       `json:"show_reaction_counts" gorm:"not null"`
	Reactions          []Reaction `json:"reactions" gorm:"foreignKey:StoryID"`
	Views              []View     `json:"views" gorm:"foreignKey:StoryID"`
	Comments           []Comment  `json:"comments" gorm:"foreignKey:StoryID"`
}

// Expired reports whether the story is past its TTL at the given instant.
func (s Story) Expired(now time.Time) bool {
	return now.After(s.ExpireAt)
}

// IsVideo checks the media reference extension. The URL is otherwise opaque;
// this is only used to pick a playback duration strategy.
func (s Story) IsVideo() bool {
	url := s.MediaURL
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	for _, ext := range []string{".mp4", ".mov", ".webm", ".m3u8"} {
		if strings.HasSuffix(strings.ToLower(url), ext) {
			return true
		}
	}
	return false
}

// Reaction is one actor's like on either a story or a comment. Exactly one
// of StoryID / CommentID is set; the composite unique indexes enforce at
// most one row per (subject, actor) pair.
type Reaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoryID   *uint     `json:"story_id,omitempty" gorm:"uniqueIndex:idx_story_actor"`
	CommentID *uint     `json:"comment_id,omitempty" gorm:"uniqueIndex:idx_comment_actor"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_story_actor;uniqueIndex:idx_comment_actor"`
	Emoji     string    `json:"emoji" gorm:"type:varchar(20);default:'❤️'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// View is a unique (story, viewer) pair. The story owner never appears in
// their own view set.
type View struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	StoryID  uint      `json:"story_id" gorm:"not null;uniqueIndex:idx_view_story_actor"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_view_story_actor"`
	ViewedAt time.Time `json:"viewed_at" gorm:"autoCreateTime"`
}

type Comment struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	StoryID         uint       `json:"story_id" gorm:"index;not null"`
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	Content         string     `json:"content" gorm:"type:text;not null"`
	ParentCommentID *uint      `json:"parent_comment_id,omitempty" gorm:"index"` // Set on threaded replies
	Reactions       []Reaction `json:"reactions" gorm:"foreignKey:CommentID"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
