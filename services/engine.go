package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine runs the request, conversation and message workflow. It holds no
// mutable state of its own; every operation is a transaction against db.
type Engine struct {
	db               *gorm.DB
	posts            PostDirectory
	notifier         Notifier
	logger           *zap.Logger
	metrics          *Metrics
	outreachCategory models.PostCategory
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithOutreachCategory sets the post category that accepts message requests.
func WithOutreachCategory(category string) EngineOption {
	return func(e *Engine) {
		if category != "" {
			e.outreachCategory = models.PostCategory(category)
		}
	}
}

// NewEngine creates the messaging engine. A nil logger or nil metrics gets an unregistered default.
func NewEngine(db *gorm.DB, posts PostDirectory, notifier Notifier, logger *zap.Logger, metrics *Metrics, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	e := &Engine{
		db:               db,
		posts:            posts,
		notifier:         notifier,
		logger:           logger.Named("messaging"),
		metrics:          metrics,
		outreachCategory: models.PostCategoryVent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Actor is the authenticated caller of an administrative operation.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden(apperrors.CodeAdminRequired, "Admin role required")
	}
	return nil
}

// notify runs after the primary transaction committed. A failure is logged
// and counted; it never undoes the committed change.
func (e *Engine) notify(ctx context.Context, notice Notice) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(context.WithoutCancel(ctx), notice); err != nil {
		e.metrics.NotificationFailures.Inc()
		e.logger.Warn("failed to emit notification",
			zap.String("recipient_id", notice.RecipientID),
			zap.String("related_type", string(notice.RelatedType)),
			zap.String("related_id", notice.RelatedID),
			zap.Error(err),
		)
	}
}

func userExists(tx *gorm.DB, userID string) (bool, error) {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return count > 0, nil
}

func conversationBetween(tx *gorm.DB, a, b string) (*models.Conversation, error) {
	first, second := models.OrderedPair(a, b)
	var conversations []models.Conversation
	if err := tx.Where("user_a_id = ? AND user_b_id = ?", first, second).Limit(1).Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if len(conversations) == 0 {
		return nil, nil
	}
	return &conversations[0], nil
}

// loadConversationFor returns the conversation if userID participates in it.
func loadConversationFor(tx *gorm.DB, conversationID, userID string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := tx.Where("id = ?", conversationID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeConversationNotFound, "Conversation not found")
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, apperrors.Forbidden(apperrors.CodeNotAParticipant, "You are not a participant in this conversation")
	}
	return &conversation, nil
}

// isUniqueViolation matches both the translated gorm error and raw driver messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique_violation")
}
