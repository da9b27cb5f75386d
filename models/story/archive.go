package story

import "time"

// ArchivedStory is the frozen snapshot a live story migrates into when it
// expires (or when the owner archives it explicitly). Display identities and
// counts are denormalized at migration time and never recomputed, so later
// profile edits do not rewrite history. OriginalStoryID is unique: at most
// one archive ever exists per live story.
type ArchivedStory struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	OriginalStoryID uint      `json:"original_story_id" gorm:"uniqueIndex;not null"`
	UserID          uint      `json:"user_id" gorm:"index;not null"`
	MediaURL        string    `json:"media_url" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at"` // Copy of the live story's CreatedAt
	ExpiredAt       time.Time `json:"expired_at"`
	ArchivedAt      time.Time `json:"archived_at" gorm:"autoCreateTime"`

	LikesCount    int `json:"likes_count"`
	ViewsCount    int `json:"views_count"`
	CommentsCount int `json:"comments_count"`

	Reactions []ArchivedReaction `json:"reactions" gorm:"foreignKey:ArchivedStoryID;constraint:OnDelete:CASCADE"`
	Views     []ArchivedView     `json:"views" gorm:"foreignKey:ArchivedStoryID;constraint:OnDelete:CASCADE"`
	Comments  []ArchivedComment  `json:"comments" gorm:"foreignKey:ArchivedStoryID;constraint:OnDelete:CASCADE"`
}

type ArchivedReaction struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	ArchivedStoryID uint   `json:"archived_story_id" gorm:"index;not null"`
	UserID          uint   `json:"user_id"`
	UserName        string `json:"user_name"`
	UserAvatar      string `json:"user_avatar"`
	Emoji           string `json:"emoji" gorm:"type:varchar(20)"`
}

type ArchivedView struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ArchivedStoryID uint      `json:"archived_story_id" gorm:"index;not null"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserAvatar      string    `json:"user_avatar"`
	ViewedAt        time.Time `json:"viewed_at"`
}

type ArchivedComment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ArchivedStoryID uint      `json:"archived_story_id" gorm:"index;not null"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name"`
	UserAvatar      string    `json:"user_avatar"`
	Content         string    `json:"content" gorm:"type:text"`
	LikesCount      int       `json:"likes_count"`
	CreatedAt       time.Time `json:"created_at"`
}
