package models

import "time"

// ActivityEntry is an immutable record of a participant's measured
// contribution to one event. Entries are append-only.
type ActivityEntry struct {
	ID              string    `db:"id" json:"id"`
	ParticipantID   string    `db:"participant_id" json:"participant_id"`
	EventID         string    `db:"event_id" json:"event_id"`
	WasteQuantityKg float64   `db:"waste_quantity_kg" json:"waste_quantity_kg"`
	XPEarned        int       `db:"xp_earned" json:"xp_earned"`
	OccurredAt      time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardRow is one aggregated standing on the volunteer leaderboard.
type LeaderboardRow struct {
	ParticipantID  string  `db:"participant_id" json:"participant_id"`
	TotalXP        int     `db:"total_xp" json:"total_xp"`
	TotalWasteKg   float64 `db:"total_waste_kg" json:"total_waste_kg"`
	EventsAttended int     `db:"events_attended" json:"events_attended"`
	Level          int     `db:"-" json:"level"`
}
