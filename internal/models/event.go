package models

import "time"

// EventStatus represents the lifecycle of a cleanup event.
type EventStatus string

// Possible event statuses. Transitions are monotonic: UPCOMING → ACTIVE →
// COMPLETED, with CANCELLED reachable from UPCOMING or ACTIVE only.
const (
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusActive    EventStatus = "ACTIVE"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// OccurrenceLayout is the locale-stable layout used to render event schedules.
const OccurrenceLayout = "Mon, Jan 2, 2006 3:04 PM"

// Event describes a single cleanup event.
type Event struct {
	ID                  string      `db:"id" json:"id"`
	OrganizerID         string      `db:"organizer_id" json:"organizer_id"`
	Title               string      `db:"title" json:"title"`
	Description         string      `db:"description" json:"description"`
	Location            string      `db:"location" json:"location"`
	ScheduledAt         time.Time   `db:"scheduled_at" json:"scheduled_at"`
	MaxParticipants     int         `db:"max_participants" json:"max_participants"`
	CurrentParticipants int         `db:"current_participants" json:"current_participants"`
	Status              EventStatus `db:"status" json:"status"`
	ContactEmail        string      `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone        string      `db:"contact_phone" json:"contact_phone,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// CanTransition reports whether the status change is allowed. The lifecycle
// never moves backward and terminal states accept no transition.
func CanTransition(from, to EventStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case EventStatusUpcoming:
		return to == EventStatusActive || to == EventStatusCompleted || to == EventStatusCancelled
	case EventStatusActive:
		return to == EventStatusCompleted || to == EventStatusCancelled
	default:
		return false
	}
}

// IsUpcoming reports whether the event is still ahead of now and not cancelled.
func (e Event) IsUpcoming(now time.Time) bool {
	return e.ScheduledAt.After(now) && e.Status != EventStatusCancelled
}

// IsOpenForEnrollment reports whether the event can accept new volunteers.
func (e Event) IsOpenForEnrollment(now time.Time) bool {
	if e.Status == EventStatusCompleted || e.Status == EventStatusCancelled {
		return false
	}
	return e.ScheduledAt.After(now)
}

// IsFull reports whether the enrollment capacity has been reached.
func (e Event) IsFull() bool {
	return e.MaxParticipants > 0 && e.CurrentParticipants >= e.MaxParticipants
}

// DisplayStatus maps the stored status to a user-facing label. A future
// schedule takes display precedence over the literal status field.
func (e Event) DisplayStatus(now time.Time) string {
	if e.IsUpcoming(now) {
		return "Upcoming"
	}
	switch e.Status {
	case EventStatusActive:
		return "Active"
	case EventStatusCompleted:
		return "Completed"
	case EventStatusCancelled:
		return "Cancelled"
	default:
		return "Upcoming"
	}
}

// FormatOccurrence renders the schedule deterministically in UTC.
func (e Event) FormatOccurrence() string {
	return e.ScheduledAt.UTC().Format(OccurrenceLayout)
}

// EventFilter provides filters for listing events.
type EventFilter struct {
	Status      EventStatus
	Location    string
	OrganizerID string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
