package repository

import (
	"context"
	"errors"
	"strings"

	"huddle/internal/cache"
	"huddle/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence operations for groups, including the
// engine-owned score field and the leaderboard projection.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	List(ctx context.Context, limit, offset int) ([]models.Group, error)
	// TopByScore returns up to limit groups ordered by stored score descending,
	// ties broken by group ID ascending. An empty slice is a valid result.
	TopByScore(ctx context.Context, limit int) ([]models.Group, error)
	// SetScore persists the score onto the group row. Callers that need the
	// write to be atomic with a post insert must invoke it on a tx-scoped
	// repository.
	SetScore(ctx context.Context, groupID uint, score float64) error
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	var existing models.Group
	err := r.db.WithContext(ctx).Where("name = ?", group.Name).First(&existing).Error
	if err == nil {
		return models.NewConflictError("Group name already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewStorageError(err)
	}

	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		// The pre-check races with concurrent creates; the unique index on
		// name is the arbiter.
		if isUniqueViolation(err) {
			return models.NewConflictError("Group name already exists")
		}
		return models.NewStorageError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, limit, offset int) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&groups).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return groups, nil
}

func (r *groupRepository) TopByScore(ctx context.Context, limit int) ([]models.Group, error) {
	groups := []models.Group{}
	err := r.db.WithContext(ctx).
		Order("score DESC, id ASC").
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return groups, nil
}

func (r *groupRepository) SetScore(ctx context.Context, groupID uint, score float64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("score", score)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Group", groupID)
	}
	// Cache invalidation is the caller's job: SetScore runs inside the
	// check-in transaction and must not publish a not-yet-committed score.
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Group{}, id)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Group", id)
	}
	cache.InvalidateGroup(ctx, id)
	cache.InvalidateLeaderboard(ctx)
	return nil
}

// isUniqueViolation reports whether err looks like a unique constraint
// violation from either postgres or sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
