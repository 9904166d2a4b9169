package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cleanwave-api/internal/models"
)

// ActivityRepository handles the append-only activity log.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity entry. Entries are never updated or deleted.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO activity_entries (id, participant_id, event_id, waste_quantity_kg, xp_earned, occurred_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ParticipantID, entry.EventID, entry.WasteQuantityKg, entry.XPEarned, entry.OccurredAt, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("create activity entry: %w", err)
	}
	return nil
}

// ListByParticipant returns a participant's full log, oldest first.
func (r *ActivityRepository) ListByParticipant(ctx context.Context, participantID string) ([]models.ActivityEntry, error) {
	const query = `SELECT id, participant_id, event_id, waste_quantity_kg, xp_earned, occurred_at, created_at
        FROM activity_entries WHERE participant_id = $1 ORDER BY occurred_at ASC`
	var entries []models.ActivityEntry
	if err := r.db.SelectContext(ctx, &entries, query, participantID); err != nil {
		return nil, fmt.Errorf("list activity by participant: %w", err)
	}
	return entries, nil
}

// ListByEvent returns all contributions recorded against one event.
func (r *ActivityRepository) ListByEvent(ctx context.Context, eventID string) ([]models.ActivityEntry, error) {
	const query = `SELECT id, participant_id, event_id, waste_quantity_kg, xp_earned, occurred_at, created_at
        FROM activity_entries WHERE event_id = $1 ORDER BY occurred_at ASC`
	var entries []models.ActivityEntry
	if err := r.db.SelectContext(ctx, &entries, query, eventID); err != nil {
		return nil, fmt.Errorf("list activity by event: %w", err)
	}
	return entries, nil
}

// LeaderboardTotals aggregates the log per participant, highest XP first.
func (r *ActivityRepository) LeaderboardTotals(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT participant_id, COALESCE(SUM(xp_earned), 0) AS total_xp,
        COALESCE(SUM(waste_quantity_kg), 0) AS total_waste_kg,
        COUNT(DISTINCT event_id) AS events_attended
        FROM activity_entries GROUP BY participant_id ORDER BY total_xp DESC LIMIT $1`
	var rows []models.LeaderboardRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("leaderboard totals: %w", err)
	}
	return rows, nil
}
