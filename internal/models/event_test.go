package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventIsUpcomingBoundary(t *testing.T) {
	now := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)

	event := Event{ScheduledAt: now, Status: EventStatusUpcoming}
	require.False(t, event.IsUpcoming(now), "an event scheduled exactly now is no longer upcoming")

	event.ScheduledAt = now.Add(time.Nanosecond)
	require.True(t, event.IsUpcoming(now))

	event.Status = EventStatusCancelled
	require.False(t, event.IsUpcoming(now), "cancelled events are never upcoming")
}

func TestEventDisplayStatusPrefersFutureSchedule(t *testing.T) {
	now := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"active but still ahead", Event{ScheduledAt: future, Status: EventStatusActive}, "Upcoming"},
		{"active and underway", Event{ScheduledAt: past, Status: EventStatusActive}, "Active"},
		{"completed", Event{ScheduledAt: past, Status: EventStatusCompleted}, "Completed"},
		{"cancelled future", Event{ScheduledAt: future, Status: EventStatusCancelled}, "Cancelled"},
		{"cancelled past", Event{ScheduledAt: past, Status: EventStatusCancelled}, "Cancelled"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.event.DisplayStatus(now))
		})
	}
}

func TestEventIsOpenForEnrollment(t *testing.T) {
	now := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	require.True(t, Event{ScheduledAt: future, Status: EventStatusUpcoming}.IsOpenForEnrollment(now))
	require.True(t, Event{ScheduledAt: future, Status: EventStatusActive}.IsOpenForEnrollment(now))
	require.False(t, Event{ScheduledAt: future, Status: EventStatusCompleted}.IsOpenForEnrollment(now))
	require.False(t, Event{ScheduledAt: future, Status: EventStatusCancelled}.IsOpenForEnrollment(now))
	require.False(t, Event{ScheduledAt: now, Status: EventStatusUpcoming}.IsOpenForEnrollment(now))
}

func TestEventIsFull(t *testing.T) {
	require.False(t, Event{MaxParticipants: 0, CurrentParticipants: 500}.IsFull(), "unlimited capacity never fills")
	require.False(t, Event{MaxParticipants: 2, CurrentParticipants: 1}.IsFull())
	require.True(t, Event{MaxParticipants: 2, CurrentParticipants: 2}.IsFull())
	require.True(t, Event{MaxParticipants: 2, CurrentParticipants: 3}.IsFull())
}

func TestEventFormatOccurrenceIsZoneIndependent(t *testing.T) {
	utc := time.Date(2026, 9, 5, 23, 30, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("UTC-5", -5*60*60))

	require.Equal(t, "Sat, Sep 5, 2026 11:30 PM", Event{ScheduledAt: utc}.FormatOccurrence())
	require.Equal(t, Event{ScheduledAt: utc}.FormatOccurrence(), Event{ScheduledAt: shifted}.FormatOccurrence())
}

func TestCanTransitionTerminalStates(t *testing.T) {
	require.False(t, CanTransition(EventStatusCompleted, EventStatusActive))
	require.False(t, CanTransition(EventStatusCancelled, EventStatusUpcoming))
	require.False(t, CanTransition(EventStatusActive, EventStatusActive))
	require.True(t, CanTransition(EventStatusUpcoming, EventStatusCancelled))
	require.True(t, CanTransition(EventStatusActive, EventStatusCompleted))
}
