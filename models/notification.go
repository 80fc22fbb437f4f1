package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RelatedContentType names the kind of entity a notification points at.
type RelatedContentType string

const (
	RelatedPost    RelatedContentType = "post"
	RelatedComment RelatedContentType = "comment"
	RelatedMessage RelatedContentType = "message"
)

// Notification is a one-way notice to a single user. The related content is a weak
// reference kept for display only, there is no foreign key behind it.
type Notification struct {
	ID                 string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID             string              `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Message            string              `gorm:"type:text;not null" json:"message"`
	RelatedContentType *RelatedContentType `gorm:"type:varchar(20)" json:"related_content_type"`
	RelatedContentID   *string             `gorm:"type:varchar(64)" json:"related_content_id"`
	IsRead             bool                `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt          time.Time           `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns an opaque id.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
