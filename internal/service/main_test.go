package service

import (
	"context"
	"testing"
	"time"

	"huddle/internal/database"
	"huddle/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Name: id}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return user
}

func seedGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	return group
}

func seedMembership(t *testing.T, db *gorm.DB, userID string, groupID uint, joinedAt time.Time) {
	t.Helper()
	m := &models.Membership{UserID: userID, GroupID: groupID, JoinedAt: joinedAt}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create membership %s/%d: %v", userID, groupID, err)
	}
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	if !ok {
		t.Fatalf("expected *models.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

var testCtx = context.Background()
