package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is the lifecycle state of a MessageRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// CanTransitionTo reports whether a request in status s may move to next.
// A request leaves pending exactly once and never changes afterwards.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestPending:
		return next == RequestAccepted || next == RequestRejected
	case RequestAccepted, RequestRejected:
		return false
	default:
		return false
	}
}

// ParseDecision maps a receiver's answer to the status it produces.
func ParseDecision(decision string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "accept", "accepted":
		return RequestAccepted, nil
	case "reject", "rejected":
		return RequestRejected, nil
	default:
		return "", fmt.Errorf("unknown decision %q", decision)
	}
}

// MessageRequest is an unsolicited contact attempt against a vent post.
// At most one pending row may exist per (sender, receiver, post).
type MessageRequest struct {
	ID             string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SenderID       string        `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_pending_request,where:status = 'pending'" json:"sender_id"`
	ReceiverID     string        `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_pending_request" json:"receiver_id"`
	PostID         string        `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_pending_request" json:"post_id"`
	InitialMessage string        `gorm:"type:text;not null" json:"initial_message"`
	Status         RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the MessageRequest model
func (MessageRequest) TableName() string {
	return "message_requests"
}

// BeforeCreate assigns an opaque id and the initial status.
func (r *MessageRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RequestPending
	}
	return nil
}
