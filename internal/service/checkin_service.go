// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"huddle/internal/cache"
	"huddle/internal/models"
	"huddle/internal/notifications"
	"huddle/internal/observability"
	"huddle/internal/ratelimit"
	"huddle/internal/repository"
	"huddle/internal/scoring"
	"huddle/internal/validation"

	"gorm.io/gorm"
)

// CheckinService drives the check-in submission flow: validate, cooldown
// check, insert, score recompute, persist, broadcast.
type CheckinService struct {
	db             *gorm.DB
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	membershipRepo repository.MembershipRepository
	postRepo       repository.PostRepository
	calc           *scoring.Calculator
	cooldown       *ratelimit.Cooldown
	notifier       *notifications.Notifier
	locks          *groupLocks
}

// SubmitInput is the payload for a check-in submission.
type SubmitInput struct {
	UserID  string
	GroupID uint
	Content string
}

// SubmitResult reports a committed check-in. Degraded is set when the write
// succeeded but live notification was lost.
type SubmitResult struct {
	Post     *models.Post `json:"post"`
	Score    float64      `json:"score"`
	Degraded bool         `json:"degraded,omitempty"`
}

// NewCheckinService wires the submission flow. notifier may be nil, in which
// case broadcasts are skipped.
func NewCheckinService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	membershipRepo repository.MembershipRepository,
	postRepo repository.PostRepository,
	calc *scoring.Calculator,
	cooldownWindow time.Duration,
	notifier *notifications.Notifier,
) *CheckinService {
	return &CheckinService{
		db:             db,
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		postRepo:       postRepo,
		calc:           calc,
		cooldown:       ratelimit.NewCooldown(postRepo, cooldownWindow),
		notifier:       notifier,
		locks:          newGroupLocks(),
	}
}

// Submit runs one check-in through the full flow. Validation and cooldown
// failures are terminal and make no writes. The post insert and the score
// persist share one transaction; the recompute reads through that transaction
// so the just-inserted post is visible to the calculator. Broadcast failures
// degrade the result instead of failing it.
func (s *CheckinService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validation.ValidateCheckinContent(in.Content); err != nil {
		return nil, reject(models.NewValidationError(err.Error()))
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, reject(err)
	}
	if _, err := s.groupRepo.GetByID(ctx, in.GroupID); err != nil {
		return nil, reject(err)
	}
	isMember, err := s.membershipRepo.Exists(ctx, in.UserID, in.GroupID)
	if err != nil {
		return nil, reject(err)
	}
	if !isMember {
		return nil, reject(models.NewForbiddenError("User is not a member of this group"))
	}

	post, score, err := s.commit(ctx, in)
	if err != nil {
		return nil, err
	}

	// Committed writes become visible to cached reads immediately.
	cache.InvalidateGroup(ctx, in.GroupID)
	cache.InvalidateLeaderboard(ctx)

	observability.CheckinsAccepted.Inc()

	result := &SubmitResult{Post: post, Score: score}

	// Dispatched after commit, outside the transaction and outside the
	// group lock: a lost or slow broadcast never rolls back a committed
	// check-in and never delays the next writer.
	if s.notifier != nil {
		event := notifications.ScoreEvent{
			GroupID: in.GroupID,
			Score:   score,
			PostID:  post.ID,
			At:      post.CreatedAt,
		}
		if err := s.notifier.PublishScore(ctx, event); err != nil {
			observability.BroadcastFailures.Inc()
			observability.GlobalLogger.WarnContext(ctx, "score broadcast failed",
				slog.Uint64("group_id", uint64(in.GroupID)),
				slog.String("error", err.Error()),
			)
			result.Degraded = true
		}
	}

	return result, nil
}

// commit runs the per-group critical section: cooldown check, post insert,
// score recompute and score persist. The group lock is released when the
// transaction has committed or rolled back, before any broadcast.
func (s *CheckinService) commit(ctx context.Context, in SubmitInput) (*models.Post, float64, error) {
	unlock := s.locks.lock(in.GroupID)
	defer unlock()

	if err := s.cooldown.Check(ctx, in.UserID, in.GroupID); err != nil {
		return nil, 0, reject(err)
	}

	post := &models.Post{
		UserID:  in.UserID,
		GroupID: in.GroupID,
		Content: in.Content,
	}
	var score float64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewPostRepository(tx).Create(ctx, post); err != nil {
			return err
		}

		start := time.Now()
		sc, err := s.calc.Score(ctx, repository.NewScoringStore(tx), in.GroupID)
		observability.ObserveRecompute(start)
		if err != nil {
			return err
		}
		score = sc

		return repository.NewGroupRepository(tx).SetScore(ctx, in.GroupID, sc)
	})
	if err != nil {
		return nil, 0, reject(asStorageError(err))
	}

	return post, score, nil
}

// reject counts the rejection and passes the error through.
func reject(err error) error {
	reason := "internal"
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		reason = appErr.Code
	}
	observability.CheckinsRejected.WithLabelValues(reason).Inc()
	return err
}

// asStorageError wraps raw transaction errors; AppErrors pass through.
func asStorageError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStorageError(err)
}
