package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ScoringStore bundles the history lookups the score calculator needs. Built
// from a transaction handle it gives the calculator a view that includes
// uncommitted writes of that transaction.
type ScoringStore struct {
	memberships MembershipRepository
	posts       PostRepository
}

// NewScoringStore returns a ScoringStore bound to the given DB or transaction.
func NewScoringStore(db *gorm.DB) *ScoringStore {
	return &ScoringStore{
		memberships: NewMembershipRepository(db),
		posts:       NewPostRepository(db),
	}
}

func (s *ScoringStore) ListMembers(ctx context.Context, groupID uint) ([]string, error) {
	return s.memberships.ListMembers(ctx, groupID)
}

func (s *ScoringStore) CountForUser(ctx context.Context, userID string) (int64, error) {
	return s.memberships.CountForUser(ctx, userID)
}

func (s *ScoringStore) FirstAndLastPostTime(ctx context.Context, groupID uint) (*time.Time, *time.Time, error) {
	return s.posts.FirstAndLastPostTime(ctx, groupID)
}

func (s *ScoringStore) CountJoinedSince(ctx context.Context, groupID uint, since time.Time) (int64, error) {
	return s.memberships.CountJoinedSince(ctx, groupID, since)
}
