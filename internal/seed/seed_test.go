package seed

import (
	"testing"

	"huddle/internal/database"
	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRunSeedsAllTables(t *testing.T) {
	db := setupSeedDB(t)

	err := Run(db, Options{NumUsers: 10, NumGroups: 4, NumCheckins: 25})
	require.NoError(t, err)

	var users, groups, memberships, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	require.NoError(t, db.Model(&models.Membership{}).Count(&memberships).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)

	assert.EqualValues(t, 10, users)
	assert.EqualValues(t, 4, groups)
	assert.GreaterOrEqual(t, memberships, int64(10), "every user joins at least one group")
	assert.EqualValues(t, 25, posts)
}

func TestRunCheckinsBelongToMembers(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Run(db, Options{NumUsers: 5, NumGroups: 3, NumCheckins: 20}))

	var orphans int64
	err := db.Model(&models.Post{}).
		Joins("LEFT JOIN memberships ON memberships.user_id = posts.user_id AND memberships.group_id = posts.group_id").
		Where("memberships.user_id IS NULL").
		Count(&orphans).Error
	require.NoError(t, err)
	assert.Zero(t, orphans, "seeded check-ins must come from group members")
}

func TestRunCleanResets(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Run(db, Options{NumUsers: 3, NumGroups: 2, NumCheckins: 5}))
	require.NoError(t, Run(db, Options{NumUsers: 2, NumGroups: 2, NumCheckins: 3, ShouldClean: true}))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users)
}
