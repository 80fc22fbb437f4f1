package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSelfConversation is returned when both participants are the same user.
var ErrSelfConversation = errors.New("a conversation needs two distinct participants")

// Conversation is the accepted channel between exactly two users.
// The pair is stored normalized (UserAID < UserBID) so the unique index covers both orders.
type Conversation struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserAID   string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_conversation_pair;index" json:"user_a_id"`
	UserBID   string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_conversation_pair;index" json:"user_b_id"`
	RequestID string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"request_id"`
	Request   MessageRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:RESTRICT" json:"-"`
	Messages  []Message      `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate assigns an id and orders the participant pair.
func (c *Conversation) BeforeCreate(_ *gorm.DB) error {
	if c.UserAID == c.UserBID {
		return ErrSelfConversation
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.UserAID, c.UserBID = OrderedPair(c.UserAID, c.UserBID)
	return nil
}

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.UserAID == userID || c.UserBID == userID)
}

// OtherParticipant returns the member that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// OrderedPair returns the two ids in the order conversations store them.
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
