package services

import (
	"context"
	"fmt"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurgeSummary counts the rows removed by DeleteUserData.
type PurgeSummary struct {
	Messages      int64 `json:"messages"`
	Conversations int64 `json:"conversations"`
	Requests      int64 `json:"requests"`
}

func (p PurgeSummary) total() int64 {
	return p.Messages + p.Conversations + p.Requests
}

// DeleteRequest removes a request that no conversation references.
func (e *Engine) DeleteRequest(ctx context.Context, actor Actor, requestID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referencing int64
		if err := tx.Model(&models.Conversation{}).Where("request_id = ?", requestID).Count(&referencing).Error; err != nil {
			return fmt.Errorf("failed to check conversations: %w", err)
		}

		var exists int64
		if err := tx.Model(&models.MessageRequest{}).Where("id = ?", requestID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to look up message request: %w", err)
		}
		if exists == 0 {
			return apperrors.NotFound(apperrors.CodeRequestNotFound, "Message request not found")
		}
		if referencing > 0 {
			return apperrors.Referenced(apperrors.CodeRequestInUse, "A conversation still references this request")
		}

		if err := tx.Where("id = ?", requestID).Delete(&models.MessageRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete message request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Purges.WithLabelValues("request").Inc()
	e.logger.Info("message request deleted", zap.String("request_id", requestID), zap.String("admin_id", actor.UserID))
	return nil
}

// DeleteConversation removes a conversation and all of its messages.
func (e *Engine) DeleteConversation(ctx context.Context, actor Actor, conversationID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conversationID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to look up conversation: %w", err)
		}
		if exists == 0 {
			return apperrors.NotFound(apperrors.CodeConversationNotFound, "Conversation not found")
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Where("id = ?", conversationID).Delete(&models.Conversation{}).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Purges.WithLabelValues("conversation").Inc()
	e.logger.Info("conversation deleted", zap.String("conversation_id", conversationID), zap.String("admin_id", actor.UserID))
	return nil
}

// DeleteMessage removes a single message by id.
func (e *Engine) DeleteMessage(ctx context.Context, actor Actor, messageID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	result := e.db.WithContext(ctx).Where("id = ?", messageID).Delete(&models.Message{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(apperrors.CodeMessageNotFound, "Message not found")
	}

	e.metrics.Purges.WithLabelValues("message").Inc()
	e.logger.Info("message deleted", zap.Uint("message_id", messageID), zap.String("admin_id", actor.UserID))
	return nil
}

// DeleteUserData removes every conversation the user takes part in, their
// messages, and every request the user sent or received. Other users' data is
// untouched. A user with no account row and no messaging data is NotFound.
func (e *Engine) DeleteUserData(ctx context.Context, actor Actor, userID string) (*PurgeSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var summary PurgeSummary
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := userExists(tx, userID)
		if err != nil {
			return err
		}

		var conversationIDs []string
		if err := tx.Model(&models.Conversation{}).
			Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Pluck("id", &conversationIDs).Error; err != nil {
			return fmt.Errorf("failed to collect conversations: %w", err)
		}

		if len(conversationIDs) > 0 {
			result := tx.Where("conversation_id IN ?", conversationIDs).Delete(&models.Message{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete messages: %w", result.Error)
			}
			summary.Messages = result.RowsAffected

			result = tx.Where("id IN ?", conversationIDs).Delete(&models.Conversation{})
			if result.Error != nil {
				return fmt.Errorf("failed to delete conversations: %w", result.Error)
			}
			summary.Conversations = result.RowsAffected
		}

		result := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).Delete(&models.MessageRequest{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete message requests: %w", result.Error)
		}
		summary.Requests = result.RowsAffected

		if !exists && summary.total() == 0 {
			return apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Purges.WithLabelValues("user").Inc()
	e.logger.Info("user messaging data deleted",
		zap.String("user_id", userID),
		zap.String("admin_id", actor.UserID),
		zap.Int64("messages", summary.Messages),
		zap.Int64("conversations", summary.Conversations),
		zap.Int64("requests", summary.Requests),
	)
	return &summary, nil
}
