package story

import "time"

// Highlight is a user-curated ordered collection of stories. A highlight
// with zero links must not exist: removing the last link deletes the row.
type Highlight struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uint            `json:"user_id" gorm:"index;not null"`
	Title     string          `json:"title" gorm:"type:varchar(100);not null"`
	Links     []HighlightLink `json:"links" gorm:"foreignKey:HighlightID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// HighlightLink points at exactly one of the live or archived pools.
// Position values within a highlight form a contiguous 0..n-1 sequence.
type HighlightLink struct {
	ID              uint  `json:"id" gorm:"primaryKey"`
	HighlightID     uint  `json:"highlight_id" gorm:"index;not null"`
	Position        int   `json:"position" gorm:"not null"`
	StoryID         *uint `json:"story_id,omitempty"`
	ArchivedStoryID *uint `json:"archived_story_id,omitempty"`
}

// Valid reports whether the link references exactly one pool.
func (l HighlightLink) Valid() bool {
	return (l.StoryID != nil) != (l.ArchivedStoryID != nil)
}
