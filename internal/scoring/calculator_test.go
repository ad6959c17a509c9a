package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeStub is a stub for Store.
type storeStub struct {
	members      []string
	groupCounts  map[string]int64
	firstPost    *time.Time
	lastPost     *time.Time
	joinedSince  int64
	sinceArg     time.Time
	membersErr   error
	countErr     error
	postTimesErr error
}

func (s *storeStub) ListMembers(_ context.Context, _ uint) ([]string, error) {
	return s.members, s.membersErr
}

func (s *storeStub) CountForUser(_ context.Context, userID string) (int64, error) {
	return s.groupCounts[userID], s.countErr
}

func (s *storeStub) FirstAndLastPostTime(_ context.Context, _ uint) (*time.Time, *time.Time, error) {
	return s.firstPost, s.lastPost, s.postTimesErr
}

func (s *storeStub) CountJoinedSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	s.sinceArg = since
	return s.joinedSince, nil
}

func defaultConfig() Config {
	return Config{Alpha: 1, Beta: 0.01}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestScoreEmptyGroup(t *testing.T) {
	calc := New(defaultConfig())
	st := &storeStub{groupCounts: map[string]int64{}}

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScoreReferenceScenario(t *testing.T) {
	// Group with members A (in 1 group) and B (in 2 groups); A posts at t=0,
	// B posts at t=100s. T = 1.5, S = 100, N = 0:
	// score = 1.5/101.
	first := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	last := first.Add(100 * time.Second)
	st := &storeStub{
		members:     []string{"user-a", "user-b"},
		groupCounts: map[string]int64{"user-a": 1, "user-b": 2},
		firstPost:   &first,
		lastPost:    &last,
	}
	calc := New(defaultConfig())

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.5/101.0, score, 1e-9)
	assert.InDelta(t, 0.01485, score, 1e-5)
}

func TestScoreZeroGroupCountMemberContributesNothing(t *testing.T) {
	st := &storeStub{
		members:     []string{"ghost"},
		groupCounts: map[string]int64{"ghost": 0},
	}
	calc := New(defaultConfig())

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScoreSingleCheckinHasZeroSpan(t *testing.T) {
	// First and last post are the same timestamp: S = 0, denominator is 1.
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	st := &storeStub{
		members:     []string{"solo"},
		groupCounts: map[string]int64{"solo": 1},
		firstPost:   &at,
		lastPost:    &at,
	}
	calc := New(defaultConfig())

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreMonotonicInParticipation(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	last := first.Add(50 * time.Second)

	base := &storeStub{
		members:     []string{"a"},
		groupCounts: map[string]int64{"a": 1},
		firstPost:   &first,
		lastPost:    &last,
	}
	bigger := &storeStub{
		members:     []string{"a", "b"},
		groupCounts: map[string]int64{"a": 1, "b": 1},
		firstPost:   &first,
		lastPost:    &last,
	}
	calc := New(defaultConfig())

	baseScore, err := calc.Score(context.Background(), base, 1)
	require.NoError(t, err)
	biggerScore, err := calc.Score(context.Background(), bigger, 1)
	require.NoError(t, err)
	assert.Greater(t, biggerScore, baseScore)
}

func TestScoreNonIncreasingInSpan(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	short := first.Add(10 * time.Second)
	long := first.Add(1000 * time.Second)

	calc := New(defaultConfig())
	mk := func(last time.Time) *storeStub {
		return &storeStub{
			members:     []string{"a"},
			groupCounts: map[string]int64{"a": 1},
			firstPost:   &first,
			lastPost:    &last,
		}
	}

	fast, err := calc.Score(context.Background(), mk(short), 1)
	require.NoError(t, err)
	slow, err := calc.Score(context.Background(), mk(long), 1)
	require.NoError(t, err)
	assert.Greater(t, fast, slow)
}

func TestScoreSameDayJoinBonus(t *testing.T) {
	st := &storeStub{
		members:     []string{"a"},
		groupCounts: map[string]int64{"a": 1},
		joinedSince: 3,
	}
	calc := New(defaultConfig())

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	// T=1, S=0, N=3: 1/1 + 0.01*3
	assert.InDelta(t, 1.03, score, 1e-9)
}

func TestScoreUsesLocalMidnightAsDayBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 3, 14, 22, 45, 0, 0, loc)
	st := &storeStub{groupCounts: map[string]int64{}}
	calc := NewWithClock(defaultConfig(), fixedClock(now))

	_, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)

	want := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	assert.True(t, st.sinceArg.Equal(want), "since = %v, want %v", st.sinceArg, want)
}

func TestScoreMemberContributionSumsToOneAcrossGroups(t *testing.T) {
	// A member in k groups contributes 1/k per group; across their k groups
	// the contributions sum to 1.
	const k = 4
	calc := New(defaultConfig())

	var total float64
	for i := 0; i < k; i++ {
		st := &storeStub{
			members:     []string{"spread"},
			groupCounts: map[string]int64{"spread": k},
		}
		score, err := calc.Score(context.Background(), st, uint(i+1))
		require.NoError(t, err)
		total += score
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestScoreAlphaBetaConfigurable(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	last := first.Add(99 * time.Second)
	st := &storeStub{
		members:     []string{"a"},
		groupCounts: map[string]int64{"a": 1},
		firstPost:   &first,
		lastPost:    &last,
		joinedSince: 2,
	}
	calc := New(Config{Alpha: 2, Beta: 0.5})

	score, err := calc.Score(context.Background(), st, 1)
	require.NoError(t, err)
	// 1/(2*100) + 0.5*2
	assert.InDelta(t, 1.005, score, 1e-9)
}

func TestScorePropagatesStoreErrors(t *testing.T) {
	calc := New(defaultConfig())
	st := &storeStub{membersErr: assert.AnError}

	_, err := calc.Score(context.Background(), st, 1)
	assert.Error(t, err)
}
