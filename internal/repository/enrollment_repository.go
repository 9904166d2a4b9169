package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

// EnrollmentRepository handles persistence of the enrollment ledger.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll attaches a participant to an event. The four join invariants
// (activity, schedule, capacity, uniqueness) are re-checked inside one
// transaction with the event row locked, so two clients racing for the last
// slot cannot both win. A tombstoned enrollment for the same pair is
// reactivated instead of inserting a duplicate row.
func (r *EnrollmentRepository) Enroll(ctx context.Context, eventID, participantID, message string, now time.Time) (*models.Enrollment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enroll tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var event models.Event
	const lockQuery = `SELECT id, scheduled_at, max_participants, status FROM events WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &event, lockQuery, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if !event.IsOpenForEnrollment(now) {
		if event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCancelled {
			return nil, appErrors.ErrInactiveEvent
		}
		return nil, appErrors.ErrPastEvent
	}

	const countQuery = `SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status = $2`
	if err := tx.GetContext(ctx, &event.CurrentParticipants, countQuery, eventID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	if event.IsFull() {
		return nil, appErrors.ErrEventFull
	}

	var existing models.Enrollment
	const findQuery = `SELECT id, event_id, participant_id, status, message, enrolled_at, cancelled_at
        FROM enrollments WHERE event_id = $1 AND participant_id = $2`
	err = tx.GetContext(ctx, &existing, findQuery, eventID, participantID)
	switch {
	case err == nil && existing.Status == models.EnrollmentStatusEnrolled:
		return nil, appErrors.ErrAlreadyEnrolled
	case err == nil:
		// Cancelled tombstone: reactivate it.
		existing.Status = models.EnrollmentStatusEnrolled
		existing.Message = message
		existing.EnrolledAt = now
		existing.CancelledAt = nil
		const reactivate = `UPDATE enrollments SET status = $2, message = $3, enrolled_at = $4, cancelled_at = NULL WHERE id = $1`
		if _, err := tx.ExecContext(ctx, reactivate, existing.ID, existing.Status, existing.Message, existing.EnrolledAt); err != nil {
			return nil, fmt.Errorf("reactivate enrollment: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		existing = models.Enrollment{
			ID:            uuid.NewString(),
			EventID:       eventID,
			ParticipantID: participantID,
			Status:        models.EnrollmentStatusEnrolled,
			Message:       message,
			EnrolledAt:    now,
		}
		const insert = `INSERT INTO enrollments (id, event_id, participant_id, status, message, enrolled_at)
            VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := tx.ExecContext(ctx, insert, existing.ID, existing.EventID, existing.ParticipantID, existing.Status, existing.Message, existing.EnrolledAt); err != nil {
			return nil, fmt.Errorf("insert enrollment: %w", err)
		}
	default:
		return nil, fmt.Errorf("find enrollment: %w", err)
	}

	if err := r.recount(ctx, tx, eventID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enroll tx: %w", err)
	}
	return &existing, nil
}

// Cancel tombstones the participant's active enrollment. Historical rows are
// preserved; only the counter changes, via recount.
func (r *EnrollmentRepository) Cancel(ctx context.Context, eventID, participantID string, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE enrollments SET status = $3, cancelled_at = $4
        WHERE event_id = $1 AND participant_id = $2 AND status = $5`
	res, err := tx.ExecContext(ctx, query, eventID, participantID,
		models.EnrollmentStatusCancelled, now, models.EnrollmentStatusEnrolled)
	if err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.ErrNotEnrolled
	}

	if err := r.recount(ctx, tx, eventID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel tx: %w", err)
	}
	return nil
}

// FindActive returns the participant's active enrollment for an event.
func (r *EnrollmentRepository) FindActive(ctx context.Context, eventID, participantID string) (*models.Enrollment, error) {
	const query = `SELECT id, event_id, participant_id, status, message, enrolled_at, cancelled_at
        FROM enrollments WHERE event_id = $1 AND participant_id = $2 AND status = $3`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, eventID, participantID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByEvent returns the roster for an event, newest enrollment first.
func (r *EnrollmentRepository) ListByEvent(ctx context.Context, eventID string) ([]models.ParticipantSummary, error) {
	const query = `SELECT participant_id, status, message, enrolled_at
        FROM enrollments WHERE event_id = $1 ORDER BY enrolled_at DESC`
	var roster []models.ParticipantSummary
	if err := r.db.SelectContext(ctx, &roster, query, eventID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return roster, nil
}

// CountEnrolled returns the number of active enrollments for an event.
func (r *EnrollmentRepository) CountEnrolled(ctx context.Context, eventID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, eventID, models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return count, nil
}

// recount refreshes the denormalised participant counter from the ledger.
// The ledger count is the source of truth; the column exists only so event
// listings avoid a join.
func (r *EnrollmentRepository) recount(ctx context.Context, tx *sqlx.Tx, eventID string) error {
	const query = `UPDATE events SET current_participants = (
            SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status = $2
        ), updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, eventID, models.EnrollmentStatusEnrolled, time.Now().UTC()); err != nil {
		return fmt.Errorf("recount participants: %w", err)
	}
	return nil
}
