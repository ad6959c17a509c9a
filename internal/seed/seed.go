// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"huddle/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumGroups   int
	NumCheckins int
	ShouldClean bool
}

var groupNames = []string{
	"Morning Runners", "Book Club", "Daily Writers", "Gym Rats",
	"Meditation Circle", "Language Learners", "Home Cooks", "Early Risers",
	"Cold Plunge Crew", "Couch to 5K", "Side Project Club", "Chess Nights",
}

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael",
	"Linda", "William", "Elizabeth", "David", "Barbara", "Susan", "Sarah",
	"Thomas", "Karen", "Daniel", "Lisa", "Matthew", "Emily", "Andrew",
	"Michelle", "Kevin", "Amanda", "Brian", "Melissa", "Eric", "Rachel",
}

var checkinTemplates = []string{
	"made it out the door before sunrise today",
	"finished chapter %d, ahead of schedule",
	"day %d done, still going strong",
	"short session but showed up anyway",
	"new personal best this morning",
	"almost skipped today, glad I didn't",
	"back at it after a rest day",
	"%d minutes in, feeling good",
}

// Run seeds the database with demo users, groups, memberships and check-ins.
// Scores are left at zero; they converge to real values as check-ins arrive
// through the API.
func Run(db *gorm.DB, opts Options) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	users, err := seedUsers(db, rng, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	groups, err := seedGroups(db, opts.NumGroups)
	if err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}

	if err := seedMemberships(db, rng, users, groups); err != nil {
		return fmt.Errorf("seed memberships: %w", err)
	}

	if err := seedCheckins(db, rng, users, groups, opts.NumCheckins); err != nil {
		return fmt.Errorf("seed check-ins: %w", err)
	}

	return nil
}

func clean(db *gorm.DB) error {
	// Children first so FK constraints hold without cascade support.
	for _, model := range []interface{}{
		&models.Post{}, &models.Membership{}, &models.Group{}, &models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB, rng *rand.Rand, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		name := firstNames[rng.Intn(len(firstNames))]
		user := models.User{
			ID:   fmt.Sprintf("seed-user-%03d", i+1),
			Name: fmt.Sprintf("%s %c.", name, 'A'+rng.Intn(26)),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func seedGroups(db *gorm.DB, n int) ([]models.Group, error) {
	if n > len(groupNames) {
		n = len(groupNames)
	}
	groups := make([]models.Group, 0, n)
	for i := 0; i < n; i++ {
		group := models.Group{Name: groupNames[i]}
		if err := db.Create(&group).Error; err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func seedMemberships(db *gorm.DB, rng *rand.Rand, users []models.User, groups []models.Group) error {
	for _, user := range users {
		// Each user joins one to three groups.
		joins := 1 + rng.Intn(3)
		perm := rng.Perm(len(groups))
		for i := 0; i < joins && i < len(perm); i++ {
			membership := models.Membership{
				UserID:   user.ID,
				GroupID:  groups[perm[i]].ID,
				JoinedAt: time.Now().Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
			}
			if err := db.Create(&membership).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedCheckins(db *gorm.DB, rng *rand.Rand, users []models.User, groups []models.Group, n int) error {
	var memberships []models.Membership
	if err := db.Find(&memberships).Error; err != nil {
		return err
	}
	if len(memberships) == 0 {
		return nil
	}

	for i := 0; i < n; i++ {
		m := memberships[rng.Intn(len(memberships))]
		template := checkinTemplates[rng.Intn(len(checkinTemplates))]
		content := template
		if hasFormatVerb(template) {
			content = fmt.Sprintf(template, 1+rng.Intn(60))
		}
		post := models.Post{
			UserID:    m.UserID,
			GroupID:   m.GroupID,
			Content:   content,
			CreatedAt: time.Now().Add(-time.Duration(rng.Intn(14*24*60)) * time.Minute),
		}
		if err := db.Create(&post).Error; err != nil {
			return err
		}
	}
	return nil
}

func hasFormatVerb(template string) bool {
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' && template[i+1] == 'd' {
			return true
		}
	}
	return false
}
