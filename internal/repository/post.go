package repository

import (
	"context"
	"errors"
	"time"

	"huddle/internal/models"
	"huddle/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for check-in posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error)
	// LastPostTime returns the creation time of the user's most recent post
	// in the group, or nil if the user has never posted there.
	LastPostTime(ctx context.Context, userID string, groupID uint) (*time.Time, error)
	// FirstAndLastPostTime returns the earliest and latest post timestamps in
	// the group. Both are nil when the group has no posts.
	FirstAndLastPostTime(ctx context.Context, groupID uint) (*time.Time, *time.Time, error)
}

type postRepository struct {
	db      *gorm.DB
	repoLog *observability.RepoLogger
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		repoLog: observability.NewRepoLogger("posts"),
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewStorageError(err)
	}
	r.repoLog.LogCreate(ctx, map[string]interface{}{
		"post_id":  post.ID,
		"user_id":  post.UserID,
		"group_id": post.GroupID,
	})
	return nil
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

func (r *postRepository) LastPostTime(ctx context.Context, userID string, groupID uint) (*time.Time, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Order("created_at DESC, id DESC").
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	t := post.CreatedAt
	return &t, nil
}

func (r *postRepository) FirstAndLastPostTime(ctx context.Context, groupID uint) (*time.Time, *time.Time, error) {
	first, err := r.postTimeAtBound(ctx, groupID, "created_at ASC, id ASC")
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, nil
	}
	last, err := r.postTimeAtBound(ctx, groupID, "created_at DESC, id DESC")
	if err != nil {
		return nil, nil, err
	}
	return first, last, nil
}

func (r *postRepository) postTimeAtBound(ctx context.Context, groupID uint, order string) (*time.Time, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order(order).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	t := post.CreatedAt
	return &t, nil
}
