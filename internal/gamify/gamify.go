// Package gamify derives experience points, levels, badges, and reward
// progress from a participant's activity log. Every function is pure: output
// is fully determined by the input entries, so concurrent use needs no
// locking and repeated calls on the same log return identical results.
package gamify

import (
	"math"

	"github.com/noah-isme/cleanwave-api/internal/models"
)

// MaxLevel is the highest reachable level.
const MaxLevel = 4

// levelFloors holds the closed-inclusive XP lower bound of each level tier.
var levelFloors = [MaxLevel]int{0, 100, 250, 500}

// Badge describes one earnable badge and its unlock predicate.
type Badge struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`

	predicate func(Snapshot) bool
}

// Reward describes one unlockable reward gated by an XP threshold.
type Reward struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	XPThreshold int    `json:"xp_threshold"`
}

// RewardProgress reports a participant's standing against one reward.
type RewardProgress struct {
	Reward
	Unlocked        bool    `json:"unlocked"`
	ProgressPercent float64 `json:"progress_percent"`
}

// Snapshot is the derived, non-persisted summary of a participant's
// gamification state. It is recomputed from the activity log on every query
// and never stored, so it is always consistent with the log.
type Snapshot struct {
	TotalXP              int              `json:"total_xp"`
	Level                int              `json:"level"`
	LevelProgressPercent float64          `json:"level_progress_percent"`
	XPToNextLevel        int              `json:"xp_to_next_level"`
	EventsAttended       int              `json:"events_attended"`
	TotalWasteKg         float64          `json:"total_waste_kg"`
	ConsecutiveEvents    int              `json:"consecutive_events"`
	EarnedBadges         []string         `json:"earned_badges"`
	RewardProgress       []RewardProgress `json:"reward_progress"`
}

// Badges is the badge catalog. Predicates are independent; a participant may
// hold any subset.
var Badges = []Badge{
	{
		Key:         "first-step",
		Name:        "First Step",
		Description: "Attended your first event",
		predicate:   func(s Snapshot) bool { return s.EventsAttended >= 1 },
	},
	{
		Key:         "waste-warrior",
		Name:        "Waste Warrior",
		Description: "Logged 5+ kg waste",
		predicate:   func(s Snapshot) bool { return s.TotalWasteKg >= 5 },
	},
	{
		Key:         "eco-legend",
		Name:        "Eco Legend",
		Description: "Reached 300 XP",
		predicate:   func(s Snapshot) bool { return s.TotalXP >= 300 },
	},
	{
		Key:         "consistency-champ",
		Name:        "Consistency Champ",
		Description: "Attended 3 events in a row",
		predicate:   func(s Snapshot) bool { return s.ConsecutiveEvents >= 3 },
	},
}

// Rewards is the reward catalog, ordered by threshold.
var Rewards = []Reward{
	{Key: "certificate", Name: "Certificate of Contribution", XPThreshold: 150},
	{Key: "hall-of-fame", Name: "Volunteer Hall of Fame", XPThreshold: 300},
	{Key: "top-10", Name: "Top 10 Leaderboard Feature", XPThreshold: 500},
}

// LevelForXP maps total XP onto a level tier. Bounds are closed-inclusive at
// the lower end of each tier; level 4 has no upper bound.
func LevelForXP(xp int) int {
	switch {
	case xp >= levelFloors[3]:
		return 4
	case xp >= levelFloors[2]:
		return 3
	case xp >= levelFloors[1]:
		return 2
	default:
		return 1
	}
}

// Score computes the full snapshot for one participant's activity log.
func Score(entries []models.ActivityEntry) Snapshot {
	snap := Snapshot{}

	events := make(map[string]struct{})
	for _, entry := range entries {
		snap.TotalXP += entry.XPEarned
		snap.TotalWasteKg += entry.WasteQuantityKg
		events[entry.EventID] = struct{}{}
	}
	snap.EventsAttended = len(events)

	// Consecutive attendance is approximated as min(len(entries), 3): the
	// consistency-champ predicate only needs "three or more", and true
	// temporal adjacency is not tracked in the activity log.
	snap.ConsecutiveEvents = len(entries)
	if snap.ConsecutiveEvents > 3 {
		snap.ConsecutiveEvents = 3
	}

	snap.Level = LevelForXP(snap.TotalXP)
	snap.LevelProgressPercent, snap.XPToNextLevel = levelProgress(snap.TotalXP, snap.Level)

	snap.EarnedBadges = make([]string, 0, len(Badges))
	for _, badge := range Badges {
		if badge.predicate(snap) {
			snap.EarnedBadges = append(snap.EarnedBadges, badge.Key)
		}
	}

	snap.RewardProgress = make([]RewardProgress, 0, len(Rewards))
	for _, reward := range Rewards {
		progress := RewardProgress{Reward: reward, Unlocked: snap.TotalXP >= reward.XPThreshold}
		progress.ProgressPercent = math.Min(100, float64(snap.TotalXP)/float64(reward.XPThreshold)*100)
		snap.RewardProgress = append(snap.RewardProgress, progress)
	}

	return snap
}

// levelProgress returns the percentage toward the next level floor, clamped
// to [0,100], and the XP still missing. At max level both are fixed.
func levelProgress(xp, level int) (float64, int) {
	if level >= MaxLevel {
		return 100, 0
	}
	floor := levelFloors[level-1]
	next := levelFloors[level]
	percent := float64(xp-floor) / float64(next-floor) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, next - xp
}
