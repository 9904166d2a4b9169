package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

type fakeEventAPI struct {
	mu sync.Mutex

	events   []models.Event
	enrolled map[string]bool

	listErr   error
	createErr error
	joinErr   error
	leaveErr  error

	listCalls   int
	createCalls int
	joinCalls   int
	leaveCalls  int
}

func (f *fakeEventAPI) ListEvents(_ context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeEventAPI) CreateEvent(_ context.Context, draft EventDraft) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	event := models.Event{
		ID:              "evt-new",
		Title:           draft.Title,
		Description:     draft.Description,
		Location:        draft.Location,
		ScheduledAt:     draft.ScheduledAt,
		MaxParticipants: draft.MaxParticipants,
		Status:          models.EventStatusUpcoming,
	}
	f.events = append(f.events, event)
	return &event, nil
}

func (f *fakeEventAPI) UpdateEvent(_ context.Context, id string, draft EventDraft) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Title = draft.Title
			return &f.events[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeEventAPI) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeEventAPI) JoinEvent(_ context.Context, id, message string) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinCalls++
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	if f.enrolled == nil {
		f.enrolled = make(map[string]bool)
	}
	f.enrolled[id] = true
	return &models.Enrollment{
		ID:            "enr-" + id,
		EventID:       id,
		ParticipantID: "usr-self",
		Status:        models.EnrollmentStatusEnrolled,
		Message:       message,
		EnrolledAt:    time.Now().UTC(),
	}, nil
}

func (f *fakeEventAPI) LeaveEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaveCalls++
	if f.leaveErr != nil {
		return f.leaveErr
	}
	if !f.enrolled[id] {
		return appErrors.ErrNotEnrolled
	}
	delete(f.enrolled, id)
	return nil
}

func sampleEvent(id string) models.Event {
	return models.Event{
		ID:          id,
		Title:       "Beach Cleanup",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Status:      models.EventStatusUpcoming,
	}
}

func validDraft() EventDraft {
	return EventDraft{
		Title:       "River Cleanup",
		Description: "Morning shift",
		Location:    "East Bank",
		ScheduledAt: time.Now().Add(72 * time.Hour),
	}
}

func TestCoordinatorListEvents(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())

	events, err := coord.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, events, coord.Events())
}

func TestCoordinatorListEventsFailsSafeToEmpty(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())
	ctx := context.Background()

	_, err := coord.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, coord.Events(), 1)

	api.mu.Lock()
	api.listErr = errors.New("connection refused")
	api.mu.Unlock()

	events, err := coord.ListEvents(ctx)
	require.ErrorIs(t, err, appErrors.ErrRetrieval)
	require.Empty(t, events)
	require.Empty(t, coord.Events())
}

func TestCoordinatorCreateEventValidatesLocally(t *testing.T) {
	api := &fakeEventAPI{}
	coord := New(api, zap.NewNop())

	draft := validDraft()
	draft.Title = ""
	_, err := coord.CreateEvent(context.Background(), draft)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Zero(t, api.createCalls)
}

func TestCoordinatorCreateEventDefaultsCapacity(t *testing.T) {
	api := &fakeEventAPI{}
	coord := New(api, zap.NewNop())

	event, err := coord.CreateEvent(context.Background(), validDraft())
	require.NoError(t, err)
	require.Equal(t, DefaultMaxParticipants, event.MaxParticipants)
}

func TestCoordinatorCreateEventSubmissionFailure(t *testing.T) {
	api := &fakeEventAPI{createErr: errors.New("500")}
	coord := New(api, zap.NewNop())

	_, err := coord.CreateEvent(context.Background(), validDraft())
	require.ErrorIs(t, err, appErrors.ErrSubmission)
}

func TestCoordinatorJoinReturnsEnrollment(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())

	enrollment, err := coord.JoinEvent(context.Background(), "evt-1", "count me in")
	require.NoError(t, err)
	require.Equal(t, "evt-1", enrollment.EventID)
	require.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	require.Equal(t, "count me in", enrollment.Message)
}

func TestCoordinatorJoinSurfacesRemoteErrors(t *testing.T) {
	api := &fakeEventAPI{joinErr: appErrors.ErrEventFull}
	coord := New(api, zap.NewNop())

	_, err := coord.JoinEvent(context.Background(), "evt-1", "")
	require.ErrorIs(t, err, appErrors.ErrEventFull)
}

func TestCoordinatorJoinReloadsSnapshot(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())

	before := api.listCalls
	_, err := coord.JoinEvent(context.Background(), "evt-1", "hello")
	require.NoError(t, err)
	require.Greater(t, api.listCalls, before)
	require.Len(t, coord.Events(), 1)
}

func TestCoordinatorLeaveConsultsRemote(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())

	err := coord.LeaveEvent(context.Background(), "evt-1")
	require.ErrorIs(t, err, appErrors.ErrNotEnrolled)
	require.Equal(t, 1, api.leaveCalls)
}

func TestCoordinatorLeaveEnrollmentFromAnotherClient(t *testing.T) {
	api := &fakeEventAPI{
		events:   []models.Event{sampleEvent("evt-1")},
		enrolled: map[string]bool{"evt-1": true},
	}
	coord := New(api, zap.NewNop())

	require.NoError(t, coord.LeaveEvent(context.Background(), "evt-1"))
	require.Equal(t, 1, api.leaveCalls)
}

func TestCoordinatorJoinThenLeave(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())
	ctx := context.Background()

	_, err := coord.JoinEvent(ctx, "evt-1", "")
	require.NoError(t, err)
	require.NoError(t, coord.LeaveEvent(ctx, "evt-1"))
	require.ErrorIs(t, coord.LeaveEvent(ctx, "evt-1"), appErrors.ErrNotEnrolled)
}

func TestCoordinatorReloadFailureKeepsSnapshot(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1")}}
	coord := New(api, zap.NewNop())
	ctx := context.Background()

	_, err := coord.ListEvents(ctx)
	require.NoError(t, err)

	api.mu.Lock()
	api.listErr = errors.New("connection refused")
	api.mu.Unlock()

	_, err = coord.JoinEvent(ctx, "evt-1", "")
	require.NoError(t, err)
	require.Len(t, coord.Events(), 1)
}

func TestCoordinatorConcurrentJoinsDifferentEvents(t *testing.T) {
	api := &fakeEventAPI{events: []models.Event{sampleEvent("evt-1"), sampleEvent("evt-2")}}
	coord := New(api, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, id := range []string{"evt-1", "evt-2"} {
		wg.Add(1)
		go func(eventID string) {
			defer wg.Done()
			_, err := coord.JoinEvent(ctx, eventID, "")
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 2, api.joinCalls)
}
