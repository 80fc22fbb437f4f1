package models

import (
	"time"
)

// PostCategory is the category a post was filed under by the posting service.
type PostCategory string

// PostCategoryVent is the only category that accepts outreach message requests.
const PostCategoryVent PostCategory = "vent"

// Post is the read-only view of a vent post owned by the post service.
type Post struct {
	ID          string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID      *string      `gorm:"type:varchar(64);index" json:"user_id"` // nullable, posts may outlive their author
	Title       *string      `gorm:"type:varchar(100)" json:"title,omitempty"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Category    PostCategory `gorm:"type:varchar(20);not null;default:'vent'" json:"category"`
	IsAnonymous bool         `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Post model
func (Post) TableName() string {
	return "posts"
}
