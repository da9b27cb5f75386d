package users

import (
	"time"

	"gorm.io/gorm"
)

// User carries the display identity (name, avatar) captured into archive
// snapshots at migration time. Account creation and login live in the
// external identity provider; this table only mirrors what the lifecycle
// core needs.
type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"unique;not null"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
