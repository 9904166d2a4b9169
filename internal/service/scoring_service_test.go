package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/repository"
)

type fakeActivityReader struct {
	entries map[string][]models.ActivityEntry
	totals  []models.LeaderboardRow

	totalsCalls int
}

func (f *fakeActivityReader) ListByParticipant(_ context.Context, participantID string) ([]models.ActivityEntry, error) {
	return f.entries[participantID], nil
}

func (f *fakeActivityReader) LeaderboardTotals(_ context.Context, limit int) ([]models.LeaderboardRow, error) {
	f.totalsCalls++
	if len(f.totals) > limit {
		return f.totals[:limit], nil
	}
	return f.totals, nil
}

type fakeCache struct {
	store map[string][]models.LeaderboardRow
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	rows, ok := f.store[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	*dest.(*[]models.LeaderboardRow) = rows
	return nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.store[key] = value.([]models.LeaderboardRow)
	return nil
}

func TestScoringServiceSnapshotEmptyLog(t *testing.T) {
	reader := &fakeActivityReader{entries: map[string][]models.ActivityEntry{}}
	svc := NewScoringService(reader, nil, 0, 0, zap.NewNop())

	snap, err := svc.Snapshot(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Equal(t, 0, snap.TotalXP)
	require.Equal(t, 1, snap.Level)
	require.Empty(t, snap.EarnedBadges)
}

func TestScoringServiceSnapshot(t *testing.T) {
	reader := &fakeActivityReader{entries: map[string][]models.ActivityEntry{
		"usr-1": {
			{EventID: "evt-1", XPEarned: 120, WasteQuantityKg: 3},
			{EventID: "evt-2", XPEarned: 60, WasteQuantityKg: 2.5},
		},
	}}
	svc := NewScoringService(reader, nil, 0, 0, zap.NewNop())

	snap, err := svc.Snapshot(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Equal(t, 180, snap.TotalXP)
	require.Equal(t, 2, snap.Level)
	require.Equal(t, 2, snap.EventsAttended)
	require.Contains(t, snap.EarnedBadges, "first-step")
	require.Contains(t, snap.EarnedBadges, "waste-warrior")
}

func TestScoringServiceLeaderboardFillsLevels(t *testing.T) {
	reader := &fakeActivityReader{totals: []models.LeaderboardRow{
		{ParticipantID: "usr-1", TotalXP: 520},
		{ParticipantID: "usr-2", TotalXP: 260},
		{ParticipantID: "usr-3", TotalXP: 40},
	}}
	svc := NewScoringService(reader, nil, 0, 10, zap.NewNop())

	rows, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 4, rows[0].Level)
	require.Equal(t, 3, rows[1].Level)
	require.Equal(t, 1, rows[2].Level)
}

func TestScoringServiceLeaderboardUsesCache(t *testing.T) {
	reader := &fakeActivityReader{totals: []models.LeaderboardRow{
		{ParticipantID: "usr-1", TotalXP: 100},
	}}
	cache := &fakeCache{store: make(map[string][]models.LeaderboardRow)}
	svc := NewScoringService(reader, cache, time.Minute, 10, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	second, err := svc.Leaderboard(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, reader.totalsCalls)
}

func TestScoringServiceLeaderboardRespectsSize(t *testing.T) {
	reader := &fakeActivityReader{totals: []models.LeaderboardRow{
		{ParticipantID: "usr-1", TotalXP: 300},
		{ParticipantID: "usr-2", TotalXP: 200},
		{ParticipantID: "usr-3", TotalXP: 100},
	}}
	svc := NewScoringService(reader, nil, 0, 2, zap.NewNop())

	rows, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
