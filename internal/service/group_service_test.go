package service

import (
	"testing"
	"time"

	"huddle/internal/models"
	"huddle/internal/repository"
	"huddle/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGroupService(db *gorm.DB) *GroupService {
	return NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		20,
	)
}

func TestCreateGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)

	group, err := svc.CreateGroup(testCtx, "  runners  ")
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.Equal(t, "runners", group.Name)
	assert.Zero(t, group.Score)
}

func TestCreateGroupValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)

	_, err := svc.CreateGroup(testCtx, "   ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestCreateGroupDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)

	_, err := svc.CreateGroup(testCtx, "runners")
	require.NoError(t, err)

	_, err = svc.CreateGroup(testCtx, "runners")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrCode(t, err))
}

func TestJoin(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	group := seedGroup(t, db, "runners")
	svc := newGroupService(db)

	membership, err := svc.Join(testCtx, "alice", group.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", membership.UserID)
	assert.Equal(t, group.ID, membership.GroupID)
	assert.False(t, membership.JoinedAt.IsZero())
}

func TestJoinUnknownUserOrGroup(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	group := seedGroup(t, db, "runners")
	svc := newGroupService(db)

	_, err := svc.Join(testCtx, "ghost", group.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))

	_, err = svc.Join(testCtx, "alice", 999)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func TestJoinTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	group := seedGroup(t, db, "runners")
	svc := newGroupService(db)

	_, err := svc.Join(testCtx, "alice", group.ID)
	require.NoError(t, err)

	_, err = svc.Join(testCtx, "alice", group.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrCode(t, err))

	var count int64
	require.NoError(t, db.Model(&models.Membership{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "a duplicate join must not add a second row")
}

func TestListGroupPostsMemberGated(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	group := seedGroup(t, db, "runners")
	seedMembership(t, db, "alice", group.ID, time.Now())
	require.NoError(t, db.Create(&models.Post{UserID: "alice", GroupID: group.ID, Content: "morning run"}).Error)
	svc := newGroupService(db)

	posts, err := svc.ListGroupPosts(testCtx, "alice", group.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "morning run", posts[0].Content)

	_, err = svc.ListGroupPosts(testCtx, "bob", group.ID, 50, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestLeaderboardEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)

	groups, err := svc.Leaderboard(testCtx)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestLeaderboardOrdering(t *testing.T) {
	db := setupTestDB(t)
	for _, g := range []models.Group{
		{Name: "readers", Score: 1.5},
		{Name: "runners", Score: 3.25},
		{Name: "climbers", Score: 1.5},
	} {
		group := g
		require.NoError(t, db.Create(&group).Error)
	}
	svc := newGroupService(db)

	groups, err := svc.Leaderboard(testCtx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "runners", groups[0].Name)
	// Tied scores fall back to group ID ascending.
	assert.Equal(t, "readers", groups[1].Name)
	assert.Equal(t, "climbers", groups[2].Name)
}

func TestLeaderboardCapped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		2,
	)
	for _, name := range []string{"alphas", "betas", "gammas"} {
		_, err := svc.CreateGroup(testCtx, name)
		require.NoError(t, err)
	}

	groups, err := svc.Leaderboard(testCtx)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestLeaderboardReflectsCommittedCheckins(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "alice")
	group := seedGroup(t, db, "runners")
	seedGroup(t, db, "readers")
	seedMembership(t, db, "alice", group.ID, time.Now().Add(-48*time.Hour))

	checkins := NewCheckinService(
		db,
		repository.NewUserRepository(db),
		repository.NewGroupRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewPostRepository(db),
		scoring.New(scoring.Config{Alpha: 1, Beta: 0.01}),
		5*time.Minute,
		nil,
	)
	result, err := checkins.Submit(testCtx, SubmitInput{UserID: "alice", GroupID: group.ID, Content: "morning run"})
	require.NoError(t, err)

	groups, err := newGroupService(db).Leaderboard(testCtx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, group.ID, groups[0].ID)
	assert.InDelta(t, result.Score, groups[0].Score, 1e-9)
}
