package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"gorm.io/gorm"
)

const unknownUserName = "Unknown User"

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	ID            string          `json:"id"`
	OtherUserID   string          `json:"other_user_id"`
	OtherUserName string          `json:"other_user_name"`
	RequestID     string          `json:"request_id"`
	CreatedAt     time.Time       `json:"created_at"`
	LastMessage   *models.Message `json:"last_message"`
	UnreadCount   int64           `json:"unread_count"`
}

func (s ConversationSummary) lastActivity() time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}

// ListConversations returns userID's conversations, most recent activity first.
func (e *Engine) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	db := e.db.WithContext(ctx)

	var conversations []models.Conversation
	if err := db.Where("user_a_id = ? OR user_b_id = ?", userID, userID).Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	summaries := make([]ConversationSummary, 0, len(conversations))
	if len(conversations) == 0 {
		return summaries, nil
	}

	ids := make([]string, 0, len(conversations))
	otherIDs := make([]string, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.ID)
		otherIDs = append(otherIDs, c.OtherParticipant(userID))
	}

	var users []models.User
	if err := db.Where("id IN ?", otherIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var unread []struct {
		ConversationID string
		Count          int64
	}
	if err := db.Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND sender_id <> ? AND status <> ?", ids, userID, models.MessageRead).
		Group("conversation_id").
		Scan(&unread).Error; err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}
	unreadByConversation := make(map[string]int64, len(unread))
	for _, row := range unread {
		unreadByConversation[row.ConversationID] = row.Count
	}

	for _, c := range conversations {
		otherID := c.OtherParticipant(userID)
		name, ok := names[otherID]
		if !ok || strings.TrimSpace(name) == "" {
			name = unknownUserName
		}

		var last []models.Message
		if err := db.Where("conversation_id = ?", c.ID).
			Order("id DESC").
			Limit(1).
			Find(&last).Error; err != nil {
			return nil, fmt.Errorf("failed to load last message: %w", err)
		}

		summary := ConversationSummary{
			ID:            c.ID,
			OtherUserID:   otherID,
			OtherUserName: name,
			RequestID:     c.RequestID,
			CreatedAt:     c.CreatedAt,
			UnreadCount:   unreadByConversation[c.ID],
		}
		if len(last) > 0 {
			summary.LastMessage = &last[0]
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].lastActivity().After(summaries[j].lastActivity())
	})
	return summaries, nil
}

// PostMessage appends a message from senderID and notifies the other participant.
func (e *Engine) PostMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	db := e.db.WithContext(ctx)
	conversation, err := loadConversationFor(db, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation(apperrors.CodeValidation, "Message content must not be empty")
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
		Status:         models.MessageSent,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	e.metrics.MessagesPosted.Inc()
	e.notify(ctx, Notice{
		RecipientID: conversation.OtherParticipant(senderID),
		Text:        "You have a new message",
		RelatedType: models.RelatedMessage,
		RelatedID:   strconv.FormatUint(uint64(message.ID), 10),
	})
	return &message, nil
}

// ListMessages returns the conversation in store order (message id). Reading a
// thread marks the returned messages from the other participant as read, in
// the same transaction, and the returned messages reflect that.
func (e *Engine) ListMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	var marked int64

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversation, err := loadConversationFor(tx, conversationID, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversation.ID).
			Order("id ASC").
			Find(&messages).Error; err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}

		// Only rows returned to the caller are marked read.
		unread := make([]uint, 0, len(messages))
		for _, m := range messages {
			if m.SenderID != userID && m.Status != models.MessageRead {
				unread = append(unread, m.ID)
			}
		}
		if len(unread) == 0 {
			return nil
		}

		result := tx.Model(&models.Message{}).
			Where("id IN ?", unread).
			Update("status", models.MessageRead)
		if result.Error != nil {
			return fmt.Errorf("failed to mark messages read: %w", result.Error)
		}
		marked = result.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range messages {
		if messages[i].SenderID != userID {
			messages[i].Status = models.MessageRead
		}
	}
	if marked > 0 {
		e.metrics.MessagesMarkedRead.Add(float64(marked))
	}
	return messages, nil
}

// UpdateMessageStatus moves a message forward along sent, delivered, read.
// Only the recipient may do so; setting the current status again is a no-op.
func (e *Engine) UpdateMessageStatus(ctx context.Context, messageID uint, userID, status string) (*models.Message, error) {
	var message models.Message

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", messageID).First(&message).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(apperrors.CodeMessageNotFound, "Message not found")
			}
			return fmt.Errorf("failed to load message: %w", err)
		}
		if _, err := loadConversationFor(tx, message.ConversationID, userID); err != nil {
			return err
		}
		if message.SenderID == userID {
			return apperrors.Forbidden(apperrors.CodeCannotUpdateOwnMessage, "You cannot update the status of your own message")
		}

		next, err := models.ParseMessageStatus(status)
		if err != nil {
			return apperrors.Validation(apperrors.CodeInvalidStatus, "Status must be sent, delivered or read")
		}
		if !message.Status.CanAdvanceTo(next) {
			return apperrors.Validation(apperrors.CodeInvalidStatusTransition,
				fmt.Sprintf("Cannot change message status from %s to %s", message.Status, next))
		}
		if next == message.Status {
			return nil
		}

		result := tx.Model(&models.Message{}).
			Where("id = ? AND status IN ?", message.ID, next.NotAfter()).
			Update("status", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update message status: %w", result.Error)
		}
		return tx.Where("id = ?", message.ID).First(&message).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}
