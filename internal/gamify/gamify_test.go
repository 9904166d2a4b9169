package gamify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cleanwave-api/internal/models"
)

func entry(eventID string, xp int, wasteKg float64) models.ActivityEntry {
	return models.ActivityEntry{
		ID:              "act-" + eventID,
		ParticipantID:   "p1",
		EventID:         eventID,
		XPEarned:        xp,
		WasteQuantityKg: wasteKg,
		OccurredAt:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestScoreEmptyLog(t *testing.T) {
	snap := Score(nil)

	assert.Equal(t, 0, snap.TotalXP)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.EventsAttended)
	assert.Empty(t, snap.EarnedBadges)
	assert.Equal(t, 100, snap.XPToNextLevel)
	for _, rp := range snap.RewardProgress {
		assert.False(t, rp.Unlocked)
		assert.Zero(t, rp.ProgressPercent)
	}
}

func TestScoreLevelBoundaries(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{750, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestScoreExactLevelTwoBoundary(t *testing.T) {
	snap := Score([]models.ActivityEntry{entry("e1", 100, 0)})
	assert.Equal(t, 2, snap.Level)

	snap = Score([]models.ActivityEntry{entry("e1", 99, 0)})
	assert.Equal(t, 1, snap.Level)
}

func TestScoreMaxLevelRewardProgress(t *testing.T) {
	snap := Score([]models.ActivityEntry{entry("e1", 500, 0)})

	assert.Equal(t, 4, snap.Level)
	assert.Equal(t, float64(100), snap.LevelProgressPercent)
	assert.Equal(t, 0, snap.XPToNextLevel)

	var top10 RewardProgress
	for _, rp := range snap.RewardProgress {
		if rp.Key == "top-10" {
			top10 = rp
		}
	}
	require.Equal(t, "top-10", top10.Key)
	assert.True(t, top10.Unlocked)
	assert.Equal(t, float64(100), top10.ProgressPercent)
}

func TestScoreRewardProgressPartial(t *testing.T) {
	snap := Score([]models.ActivityEntry{entry("e1", 75, 0)})

	require.Len(t, snap.RewardProgress, 3)
	assert.Equal(t, "certificate", snap.RewardProgress[0].Key)
	assert.False(t, snap.RewardProgress[0].Unlocked)
	assert.InDelta(t, 50, snap.RewardProgress[0].ProgressPercent, 0.001)
	assert.InDelta(t, 25, snap.RewardProgress[1].ProgressPercent, 0.001)
	assert.InDelta(t, 15, snap.RewardProgress[2].ProgressPercent, 0.001)
}

func TestScoreBadgePredicateIndependence(t *testing.T) {
	// One attended event, zero waste, zero XP: only first-step unlocks.
	snap := Score([]models.ActivityEntry{entry("e1", 0, 0)})

	assert.Equal(t, []string{"first-step"}, snap.EarnedBadges)
}

func TestScoreAllBadges(t *testing.T) {
	log := []models.ActivityEntry{
		entry("e1", 100, 2),
		entry("e2", 100, 2),
		entry("e3", 150, 2),
	}
	snap := Score(log)

	assert.Equal(t, 350, snap.TotalXP)
	assert.Equal(t, 3, snap.EventsAttended)
	assert.InDelta(t, 6, snap.TotalWasteKg, 0.001)
	assert.ElementsMatch(t, []string{"first-step", "waste-warrior", "eco-legend", "consistency-champ"}, snap.EarnedBadges)
}

func TestScoreDistinctEventCount(t *testing.T) {
	// Two entries against the same event count as one attendance.
	log := []models.ActivityEntry{
		entry("e1", 10, 1),
		entry("e1", 10, 1),
	}
	snap := Score(log)

	assert.Equal(t, 1, snap.EventsAttended)
	assert.Equal(t, 20, snap.TotalXP)
}

func TestScoreConsecutivePlaceholderRule(t *testing.T) {
	// Consecutive attendance is min(entries, 3); the rule tracks no real
	// adjacency, so the fourth entry does not grow the counter.
	snap := Score([]models.ActivityEntry{
		entry("e1", 1, 0), entry("e2", 1, 0),
	})
	assert.Equal(t, 2, snap.ConsecutiveEvents)
	assert.NotContains(t, snap.EarnedBadges, "consistency-champ")

	snap = Score([]models.ActivityEntry{
		entry("e1", 1, 0), entry("e2", 1, 0), entry("e3", 1, 0), entry("e4", 1, 0),
	})
	assert.Equal(t, 3, snap.ConsecutiveEvents)
	assert.Contains(t, snap.EarnedBadges, "consistency-champ")
}

func TestScoreDeterminism(t *testing.T) {
	log := []models.ActivityEntry{
		entry("e1", 120, 3.5),
		entry("e2", 80, 1.25),
		entry("e3", 45, 0.75),
	}

	first := Score(log)
	second := Score(log)

	assert.Equal(t, first, second)
}

func TestLevelProgressMidTier(t *testing.T) {
	snap := Score([]models.ActivityEntry{entry("e1", 175, 0)})

	assert.Equal(t, 2, snap.Level)
	// 175 sits halfway between the level 2 floor (100) and level 3 floor (250).
	assert.InDelta(t, 50, snap.LevelProgressPercent, 0.001)
	assert.Equal(t, 75, snap.XPToNextLevel)
}
