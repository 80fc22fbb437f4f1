package models

import (
	"fmt"
	"strings"
	"time"
)

// MessageStatus is the delivery state of a Message.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	return s.rank() > 0
}

// CanAdvanceTo reports whether a message in status s may be set to next.
// Statuses only move forward along sent -> delivered -> read; staying put is allowed.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// NotAfter lists the statuses a message may hold for s to still be a forward move.
func (s MessageStatus) NotAfter() []MessageStatus {
	statuses := make([]MessageStatus, 0, 3)
	for _, candidate := range []MessageStatus{MessageSent, MessageDelivered, MessageRead} {
		if candidate.rank() <= s.rank() {
			statuses = append(statuses, candidate)
		}
	}
	return statuses
}

// ParseMessageStatus converts client input into a MessageStatus.
func ParseMessageStatus(value string) (MessageStatus, error) {
	status := MessageStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown message status %q", value)
	}
	return status, nil
}

// Message is one utterance inside a conversation.
type Message struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ConversationID string        `gorm:"type:varchar(36);not null;index" json:"conversation_id"`
	SenderID       string        `gorm:"type:varchar(64);not null;index" json:"sender_id"`
	Content        string        `gorm:"type:text;not null" json:"content"`
	Status         MessageStatus `gorm:"type:varchar(20);not null;default:'sent'" json:"status"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
