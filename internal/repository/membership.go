package repository

import (
	"context"
	"errors"
	"time"

	"huddle/internal/models"
	"huddle/internal/observability"

	"gorm.io/gorm"
)

// MembershipRepository defines persistence operations for group memberships.
type MembershipRepository interface {
	// Create inserts a membership row. A second join for the same
	// (user, group) pair fails with a CONFLICT error.
	Create(ctx context.Context, membership *models.Membership) error
	Exists(ctx context.Context, userID string, groupID uint) (bool, error)
	// ListMembers returns the user IDs of all current members of the group.
	ListMembers(ctx context.Context, groupID uint) ([]string, error)
	// CountForUser returns how many groups the user currently belongs to.
	CountForUser(ctx context.Context, userID string) (int64, error)
	// CountJoinedSince counts memberships in the group whose join timestamp
	// is at or after since.
	CountJoinedSince(ctx context.Context, groupID uint, since time.Time) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]models.Membership, error)
}

type membershipRepository struct {
	db      *gorm.DB
	repoLog *observability.RepoLogger
}

// NewMembershipRepository returns a new MembershipRepository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{
		db:      db,
		repoLog: observability.NewRepoLogger("memberships"),
	}
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	var existing models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", membership.UserID, membership.GroupID).
		First(&existing).Error
	if err == nil {
		return models.NewConflictError("User already joined this group")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewStorageError(err)
	}

	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		// Concurrent joins race past the pre-check; the composite primary key
		// rejects the loser.
		if isUniqueViolation(err) {
			return models.NewConflictError("User already joined this group")
		}
		return models.NewStorageError(err)
	}

	r.repoLog.LogCreate(ctx, map[string]interface{}{
		"user_id":  membership.UserID,
		"group_id": membership.GroupID,
	})
	return nil
}

func (r *membershipRepository) Exists(ctx context.Context, userID string, groupID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStorageError(err)
	}
	return count > 0, nil
}

func (r *membershipRepository) ListMembers(ctx context.Context, groupID uint) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return userIDs, nil
}

func (r *membershipRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

func (r *membershipRepository) CountJoinedSince(ctx context.Context, groupID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("group_id = ? AND joined_at >= ?", groupID, since).
		Count(&count).Error
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return count, nil
}

func (r *membershipRepository) ListForUser(ctx context.Context, userID string) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return memberships, nil
}
