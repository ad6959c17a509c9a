package service

import (
	"context"
	"strings"

	"huddle/internal/cache"
	"huddle/internal/models"
	"huddle/internal/repository"
	"huddle/internal/validation"
)

// GroupService covers group lifecycle, membership joins and the leaderboard
// projection.
type GroupService struct {
	groupRepo       repository.GroupRepository
	membershipRepo  repository.MembershipRepository
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	leaderboardSize int
}

// NewGroupService returns a new GroupService.
func NewGroupService(
	groupRepo repository.GroupRepository,
	membershipRepo repository.MembershipRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	leaderboardSize int,
) *GroupService {
	return &GroupService{
		groupRepo:       groupRepo,
		membershipRepo:  membershipRepo,
		postRepo:        postRepo,
		userRepo:        userRepo,
		leaderboardSize: leaderboardSize,
	}
}

// CreateGroup creates a group with a unique name and a zero score.
func (s *GroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateGroupName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	group := &models.Group{Name: name}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups returns groups newest-first.
func (s *GroupService) ListGroups(ctx context.Context, limit, offset int) ([]models.Group, error) {
	return s.groupRepo.List(ctx, limit, offset)
}

// Join adds the user to the group. A duplicate join fails with CONFLICT; the
// first successful join is the only one that counts.
func (s *GroupService) Join(ctx context.Context, userID string, groupID uint) (*models.Membership, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	membership := &models.Membership{UserID: userID, GroupID: groupID}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Memberships lists the user's group memberships, newest join first.
func (s *GroupService) Memberships(ctx context.Context, userID string) ([]models.Membership, error) {
	return s.membershipRepo.ListForUser(ctx, userID)
}

// ListGroupPosts returns the group's check-ins for a member. Non-members are
// rejected with FORBIDDEN, mirroring the write-path gate.
func (s *GroupService) ListGroupPosts(ctx context.Context, userID string, groupID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	isMember, err := s.membershipRepo.Exists(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, models.NewForbiddenError("User is not a member of this group")
	}

	return s.postRepo.ListByGroup(ctx, groupID, limit, offset)
}

// Leaderboard returns the top groups by stored score, ties broken by group ID
// ascending. It reads the persisted score as of the last committed check-in;
// nothing is recomputed here. An empty slice is a valid result.
func (s *GroupService) Leaderboard(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := cache.Aside(ctx, cache.LeaderboardKey, &groups, cache.LeaderboardTTL, func() error {
		var fetchErr error
		groups, fetchErr = s.groupRepo.TopByScore(ctx, s.leaderboardSize)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}
