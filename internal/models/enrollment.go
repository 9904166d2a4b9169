package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment. Cancellation is
// a tombstone, not a deletion, so audit history survives.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment captures a participant's registration to an event. A participant
// holds at most one active enrollment per event.
type Enrollment struct {
	ID            string           `db:"id" json:"id"`
	EventID       string           `db:"event_id" json:"event_id"`
	ParticipantID string           `db:"participant_id" json:"participant_id"`
	Status        EnrollmentStatus `db:"status" json:"status"`
	Message       string           `db:"message" json:"message,omitempty"`
	EnrolledAt    time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CancelledAt   *time.Time       `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// ParticipantSummary is the roster view of an enrollment. Profile data lives
// in the identity service; this API only knows participant IDs.
type ParticipantSummary struct {
	ParticipantID string           `db:"participant_id" json:"participant_id"`
	Status        EnrollmentStatus `db:"status" json:"status"`
	Message       string           `db:"message" json:"message,omitempty"`
	EnrolledAt    time.Time        `db:"enrolled_at" json:"enrolled_at"`
}
