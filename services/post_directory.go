package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"gorm.io/gorm"
)

// PostInfo is what the messaging workflow needs to know about a post.
type PostInfo struct {
	ID       string
	OwnerID  string
	Category models.PostCategory
}

// PostDirectory resolves posts owned by the posting service.
type PostDirectory interface {
	GetPost(ctx context.Context, postID string) (*PostInfo, error)
}

// GormPostDirectory reads the shared posts table.
type GormPostDirectory struct {
	db *gorm.DB
}

// NewGormPostDirectory creates a PostDirectory reading the posts table
func NewGormPostDirectory(db *gorm.DB) *GormPostDirectory {
	return &GormPostDirectory{db: db}
}

// GetPost looks up a post by id.
func (d *GormPostDirectory) GetPost(ctx context.Context, postID string) (*PostInfo, error) {
	var post models.Post
	if err := d.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodePostNotFound, "Post not found")
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}

	info := &PostInfo{ID: post.ID, Category: post.Category}
	if post.UserID != nil {
		info.OwnerID = *post.UserID
	}
	return info, nil
}
