package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/gamify"
	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/repository"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

const leaderboardCacheKey = "leaderboard:v1"

type activityReader interface {
	ListByParticipant(ctx context.Context, participantID string) ([]models.ActivityEntry, error)
	LeaderboardTotals(ctx context.Context, limit int) ([]models.LeaderboardRow, error)
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScoringService derives gamification state from the activity log. Nothing is
// persisted: a participant's snapshot is recomputed on every query, and the
// leaderboard is the only derived value cached, with a short TTL.
type ScoringService struct {
	activities activityReader
	cache      leaderboardCache
	cacheTTL   time.Duration
	size       int
	logger     *zap.Logger
}

// NewScoringService constructs ScoringService. size bounds the leaderboard.
func NewScoringService(activities activityReader, cache leaderboardCache, cacheTTL time.Duration, size int, logger *zap.Logger) *ScoringService {
	if size <= 0 {
		size = 10
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{activities: activities, cache: cache, cacheTTL: cacheTTL, size: size, logger: logger}
}

// Snapshot recomputes the participant's full gamification state. An empty
// activity log yields the zero snapshot, not an error.
func (s *ScoringService) Snapshot(ctx context.Context, participantID string) (*gamify.Snapshot, error) {
	entries, err := s.activities.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity log")
	}
	snap := gamify.Score(entries)
	return &snap, nil
}

// Leaderboard returns the top participants by total XP. Results are served
// from cache when fresh; a cache failure falls through to the database.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	if s.cache != nil {
		var cached []models.LeaderboardRow
		err := s.cache.Get(ctx, leaderboardCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	rows, err := s.activities.LeaderboardTotals(ctx, s.size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}
	for i := range rows {
		rows[i].Level = gamify.LevelForXP(rows[i].TotalXP)
	}
	if rows == nil {
		rows = []models.LeaderboardRow{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, rows, s.cacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}
