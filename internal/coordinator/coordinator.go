// Package coordinator is a client-side orchestrator for callers that talk to
// a remote event API instead of the database: CLI tooling, test harnesses,
// kiosk displays. It keeps a local snapshot of the event list, serializes
// operations per event, and fails safe to an empty view when the remote
// cannot be reached.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

// DefaultMaxParticipants is applied when a draft leaves capacity unset.
const DefaultMaxParticipants = 50

// EventAPI is the remote event persistence surface the coordinator drives.
type EventAPI interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, draft EventDraft) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, draft EventDraft) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	JoinEvent(ctx context.Context, id, message string) (*models.Enrollment, error)
	LeaveEvent(ctx context.Context, id string) error
}

// EventDraft is the payload for creating or updating an event.
type EventDraft struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	MaxParticipants int       `json:"max_participants"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
}

// Coordinator wraps an EventAPI with a cached snapshot and per-event
// serialization. Operations on different events run concurrently; two
// operations on the same event are ordered.
type Coordinator struct {
	api    EventAPI
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot []models.Event

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New constructs a Coordinator over the provided API.
func New(api EventAPI, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		api:    api,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) eventLock(eventID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	lock, ok := c.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[eventID] = lock
	}
	return lock
}

// Events returns a copy of the current snapshot without touching the remote.
func (c *Coordinator) Events() []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Event, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// ListEvents refreshes the snapshot from the remote. On transport failure
// the previous snapshot is discarded and an empty set is surfaced alongside
// the retrieval error: a stale event list is worse than an empty one, since
// it invites joins against events that may no longer exist.
func (c *Coordinator) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := c.api.ListEvents(ctx)
	if err != nil {
		c.mu.Lock()
		c.snapshot = nil
		c.mu.Unlock()
		c.logger.Warn("event list retrieval failed", zap.Error(err))
		return []models.Event{}, appErrors.Wrap(err, appErrors.ErrRetrieval.Code, appErrors.ErrRetrieval.Status, appErrors.ErrRetrieval.Message)
	}
	if events == nil {
		events = []models.Event{}
	}
	c.mu.Lock()
	c.snapshot = events
	c.mu.Unlock()
	return c.Events(), nil
}

// CreateEvent validates the draft locally and submits it. Validation failures
// never reach the network. A failed submission or reload leaves the snapshot
// unchanged.
func (c *Coordinator) CreateEvent(ctx context.Context, draft EventDraft) (*models.Event, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if draft.MaxParticipants <= 0 {
		draft.MaxParticipants = DefaultMaxParticipants
	}

	event, err := c.api.CreateEvent(ctx, draft)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}
	c.reload(ctx)
	return event, nil
}

// UpdateEvent submits the new shape of an event and reloads on success.
func (c *Coordinator) UpdateEvent(ctx context.Context, id string, draft EventDraft) (*models.Event, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	lock := c.eventLock(id)
	lock.Lock()
	defer lock.Unlock()

	event, err := c.api.UpdateEvent(ctx, id, draft)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}
	c.reload(ctx)
	return event, nil
}

// DeleteEvent removes an event remotely and reloads on success.
func (c *Coordinator) DeleteEvent(ctx context.Context, id string) error {
	lock := c.eventLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := c.api.DeleteEvent(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSubmission.Code, appErrors.ErrSubmission.Status, appErrors.ErrSubmission.Message)
	}
	c.reload(ctx)
	return nil
}

// JoinEvent enrolls the caller and returns the confirmed enrollment record.
// Invariant enforcement (capacity, schedule, uniqueness) belongs to the
// remote; its typed errors pass through untouched so callers can distinguish
// a full event from a past one.
func (c *Coordinator) JoinEvent(ctx context.Context, id, message string) (*models.Enrollment, error) {
	lock := c.eventLock(id)
	lock.Lock()
	defer lock.Unlock()

	enrollment, err := c.api.JoinEvent(ctx, id, message)
	if err != nil {
		return nil, err
	}
	c.reload(ctx)
	return enrollment, nil
}

// LeaveEvent cancels the caller's enrollment. The remote ledger is the
// authority on whether an active enrollment exists: the same participant may
// have joined through another client, so the request always goes out and the
// remote's typed not-enrolled error passes through untouched.
func (c *Coordinator) LeaveEvent(ctx context.Context, id string) error {
	lock := c.eventLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := c.api.LeaveEvent(ctx, id); err != nil {
		return err
	}
	c.reload(ctx)
	return nil
}

// reload refreshes the snapshot after a successful mutation so counters
// reflect the remote's authoritative recount. Unlike ListEvents, a failed
// reload keeps the previous snapshot: the mutation itself succeeded.
func (c *Coordinator) reload(ctx context.Context) {
	events, err := c.api.ListEvents(ctx)
	if err != nil {
		c.logger.Warn("snapshot reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.snapshot = events
	c.mu.Unlock()
}

func validateDraft(draft EventDraft) error {
	switch {
	case draft.Title == "":
		return appErrors.Clone(appErrors.ErrValidation, "title is required")
	case draft.Description == "":
		return appErrors.Clone(appErrors.ErrValidation, "description is required")
	case draft.Location == "":
		return appErrors.Clone(appErrors.ErrValidation, "location is required")
	case draft.ScheduledAt.IsZero():
		return appErrors.Clone(appErrors.ErrValidation, "scheduled_at is required")
	}
	return nil
}
