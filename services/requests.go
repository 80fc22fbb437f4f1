package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRequestInput is what a sender supplies to open contact.
type CreateRequestInput struct {
	ReceiverID     string `json:"receiver_id" binding:"required"`
	PostID         string `json:"post_id" binding:"required"`
	InitialMessage string `json:"initial_message" binding:"required"`
}

// RespondResult is the outcome of answering a request.
type RespondResult struct {
	RequestID      string               `json:"request_id"`
	Status         models.RequestStatus `json:"status"`
	ConversationID *string              `json:"conversation_id,omitempty"`
}

// MessagingStatus tells a user how they can reach another user.
type MessagingStatus struct {
	CanMessageDirectly bool    `json:"can_message_directly"`
	ConversationID     *string `json:"conversation_id,omitempty"`
	PendingRequest     bool    `json:"pending_request"`
	RequestID          *string `json:"request_id,omitempty"`
	RequestRejected    bool    `json:"request_rejected"`
}

// CreateRequest records a pending request from senderID to the owner of a vent post.
func (e *Engine) CreateRequest(ctx context.Context, senderID string, in CreateRequestInput) (*models.MessageRequest, error) {
	if senderID == in.ReceiverID {
		return nil, apperrors.Validation(apperrors.CodeSelfRequest, "You cannot send a message request to yourself")
	}
	if strings.TrimSpace(in.InitialMessage) == "" {
		return nil, apperrors.Validation(apperrors.CodeValidation, "Initial message must not be empty")
	}

	db := e.db.WithContext(ctx)
	ok, err := userExists(db, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeSenderNotFound, "Sender not found")
	}
	ok, err = userExists(db, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeReceiverNotFound, "Receiver not found")
	}

	post, err := e.posts.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.Category != e.outreachCategory {
		return nil, apperrors.Validation(apperrors.CodeInvalidPostCategory,
			fmt.Sprintf("Message requests can only be sent on %s posts", e.outreachCategory))
	}
	if post.OwnerID != in.ReceiverID {
		return nil, apperrors.Validation(apperrors.CodeReceiverNotPostOwner, "Receiver is not the author of this post")
	}

	request := models.MessageRequest{
		SenderID:       senderID,
		ReceiverID:     in.ReceiverID,
		PostID:         post.ID,
		InitialMessage: in.InitialMessage,
		Status:         models.RequestPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.MessageRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND post_id = ? AND status = ?",
				senderID, in.ReceiverID, post.ID, models.RequestPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending > 0 {
			return apperrors.Conflict(apperrors.CodeDuplicateRequest, "A pending request for this post already exists")
		}

		existing, err := conversationBetween(tx, senderID, in.ReceiverID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.Conflict(apperrors.CodeConversationExists, "A conversation with this user already exists")
		}

		if err := tx.Create(&request).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodeDuplicateRequest, "A pending request for this post already exists")
			}
			return fmt.Errorf("failed to create message request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.RequestsCreated.Inc()
	e.notify(ctx, Notice{
		RecipientID: in.ReceiverID,
		Text:        "Someone sent you a message request about your vent",
		RelatedType: models.RelatedPost,
		RelatedID:   post.ID,
	})
	return &request, nil
}

// ListReceivedRequests returns pending requests addressed to userID, newest first.
func (e *Engine) ListReceivedRequests(ctx context.Context, userID string) ([]models.MessageRequest, error) {
	requests := make([]models.MessageRequest, 0)
	err := e.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	return requests, nil
}

// ListSentRequests returns every request userID sent, newest first.
func (e *Engine) ListSentRequests(ctx context.Context, userID string) ([]models.MessageRequest, error) {
	requests := make([]models.MessageRequest, 0)
	err := e.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return requests, nil
}

// RespondToRequest accepts or rejects a pending request. Accepting opens the
// conversation and seeds it with the request's initial message.
func (e *Engine) RespondToRequest(ctx context.Context, requestID, responderID, decision string) (*RespondResult, error) {
	next, err := models.ParseDecision(decision)
	if err != nil {
		return nil, apperrors.Validation(apperrors.CodeInvalidDecision, "Decision must be accept or reject")
	}

	var request models.MessageRequest
	var conversation *models.Conversation

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", requestID).
			First(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(apperrors.CodeRequestNotFound, "Message request not found")
			}
			return fmt.Errorf("failed to load message request: %w", err)
		}
		if request.ReceiverID != responderID {
			return apperrors.Forbidden(apperrors.CodeNotRequestReceiver, "Only the receiver can respond to this request")
		}
		if !request.Status.CanTransitionTo(next) {
			return apperrors.Conflict(apperrors.CodeRequestAlreadyProcessed, "This request has already been processed")
		}

		result := tx.Model(&models.MessageRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update message request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict(apperrors.CodeRequestAlreadyProcessed, "This request has already been processed")
		}
		request.Status = next

		if next != models.RequestAccepted {
			return nil
		}

		conv := models.Conversation{
			UserAID:   request.SenderID,
			UserBID:   request.ReceiverID,
			RequestID: request.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&conv).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodeConversationExists, "A conversation with this user already exists")
			}
			return fmt.Errorf("failed to create conversation: %w", err)
		}

		first := models.Message{
			ConversationID: conv.ID,
			SenderID:       request.SenderID,
			Content:        request.InitialMessage,
			Status:         models.MessageSent,
		}
		if err := tx.Create(&first).Error; err != nil {
			return fmt.Errorf("failed to store initial message: %w", err)
		}
		conversation = &conv
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.RequestResponses.WithLabelValues(string(next)).Inc()
	result := &RespondResult{RequestID: request.ID, Status: request.Status}
	text := "Your message request was declined"
	if conversation != nil {
		e.metrics.ConversationsOpened.Inc()
		result.ConversationID = &conversation.ID
		text = "Your message request was accepted"
	}
	e.notify(ctx, Notice{
		RecipientID: request.SenderID,
		Text:        text,
		RelatedType: models.RelatedPost,
		RelatedID:   request.PostID,
	})
	return result, nil
}

// CanMessage reports whether userID already has a conversation with otherID
// and what became of their latest request.
func (e *Engine) CanMessage(ctx context.Context, userID, otherID string) (*MessagingStatus, error) {
	db := e.db.WithContext(ctx)
	status := &MessagingStatus{}

	conversation, err := conversationBetween(db, userID, otherID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		status.CanMessageDirectly = true
		status.ConversationID = &conversation.ID
		return status, nil
	}

	var pending []models.MessageRequest
	if err := db.Where("sender_id = ? AND receiver_id = ? AND status = ?", userID, otherID, models.RequestPending).
		Order("created_at DESC").Limit(1).Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to look up pending request: %w", err)
	}
	if len(pending) > 0 {
		status.PendingRequest = true
		status.RequestID = &pending[0].ID
	}

	var rejected int64
	if err := db.Model(&models.MessageRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", userID, otherID, models.RequestRejected).
		Count(&rejected).Error; err != nil {
		return nil, fmt.Errorf("failed to look up rejected requests: %w", err)
	}
	status.RequestRejected = rejected > 0
	return status, nil
}
