package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cleanwave-api/internal/models"
)

func TestActivityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec("INSERT INTO activity_entries").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.ActivityEntry{
		ParticipantID:   "usr-1",
		EventID:         "evt-1",
		WasteQuantityKg: 3.5,
		XPEarned:        70,
		OccurredAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListByParticipant(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "participant_id", "event_id", "waste_quantity_kg", "xp_earned", "occurred_at", "created_at"}).
		AddRow("act-1", "usr-1", "evt-1", 2.0, 40, now, now).
		AddRow("act-2", "usr-1", "evt-2", 1.5, 30, now.Add(time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_entries WHERE participant_id = $1")).
		WithArgs("usr-1").
		WillReturnRows(rows)

	entries, err := repo.ListByParticipant(context.Background(), "usr-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryLeaderboardTotals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	rows := sqlmock.NewRows([]string{"participant_id", "total_xp", "total_waste_kg", "events_attended"}).
		AddRow("usr-1", 320, 12.5, 4).
		AddRow("usr-2", 150, 6.0, 2)
	mock.ExpectQuery("SELECT participant_id, COALESCE").
		WithArgs(10).
		WillReturnRows(rows)

	totals, err := repo.LeaderboardTotals(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	require.Equal(t, 320, totals[0].TotalXP)
	require.NoError(t, mock.ExpectationsWereMet())
}
