package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const exportURLTTL = time.Hour

// ExportResult points at an uploaded archive.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type messagingArchive struct {
	UserID        string                  `json:"user_id"`
	ExportedAt    time.Time               `json:"exported_at"`
	Requests      []models.MessageRequest `json:"message_requests"`
	Conversations []models.Conversation   `json:"conversations"`
	Messages      []models.Message        `json:"messages"`
}

func (a messagingArchive) empty() bool {
	return len(a.Requests) == 0 && len(a.Conversations) == 0 && len(a.Messages) == 0
}

// Exporter writes a user's messaging data to object storage.
type Exporter struct {
	db      *gorm.DB
	store   S3Interface
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewExporter returns an Exporter. A nil store disables exports.
func NewExporter(db *gorm.DB, store S3Interface, logger *zap.Logger, metrics *Metrics) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Exporter{
		db:      db,
		store:   store,
		logger:  logger.Named("export"),
		metrics: metrics,
		now:     time.Now,
	}
}

// ExportUserData uploads exports/<user>/<unix>.json and returns a presigned URL for it.
func (x *Exporter) ExportUserData(ctx context.Context, actor Actor, userID string) (*ExportResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if x.store == nil {
		return nil, apperrors.Unavailable(apperrors.CodeExportDisabled, "Exports are not configured")
	}

	archive, err := x.collect(ctx, userID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%d.json", userID, archive.ExportedAt.Unix())
	if err := x.store.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, err
	}

	url, err := x.store.GetPresignedURL(ctx, key, exportURLTTL)
	if err != nil {
		if delErr := x.store.DeleteObject(context.WithoutCancel(ctx), key); delErr != nil {
			x.logger.Warn("failed to remove unreachable export", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	x.metrics.Exports.Inc()
	x.logger.Info("messaging data exported",
		zap.String("user_id", userID),
		zap.String("admin_id", actor.UserID),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return &ExportResult{Key: key, URL: url, ExpiresAt: archive.ExportedAt.Add(exportURLTTL)}, nil
}

func (x *Exporter) collect(ctx context.Context, userID string) (*messagingArchive, error) {
	archive := &messagingArchive{
		UserID:        userID,
		ExportedAt:    x.now().UTC(),
		Requests:      make([]models.MessageRequest, 0),
		Conversations: make([]models.Conversation, 0),
		Messages:      make([]models.Message, 0),
	}

	err := x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Order("created_at ASC").
			Find(&archive.Requests).Error; err != nil {
			return fmt.Errorf("failed to export message requests: %w", err)
		}
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Order("created_at ASC").
			Find(&archive.Conversations).Error; err != nil {
			return fmt.Errorf("failed to export conversations: %w", err)
		}
		if len(archive.Conversations) > 0 {
			ids := make([]string, 0, len(archive.Conversations))
			for _, c := range archive.Conversations {
				ids = append(ids, c.ID)
			}
			if err := tx.Where("conversation_id IN ?", ids).
				Order("conversation_id ASC, id ASC").
				Find(&archive.Messages).Error; err != nil {
				return fmt.Errorf("failed to export messages: %w", err)
			}
		}

		if archive.empty() {
			exists, err := userExists(tx, userID)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}
