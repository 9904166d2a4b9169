package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/repository"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

type fakeEventRepo struct {
	events map[string]*models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[string]*models.Event)}
	for _, event := range events {
		repo.events[event.ID] = event
	}
	return repo
}

func (f *fakeEventRepo) List(_ context.Context, _ models.EventFilter) ([]models.Event, int, error) {
	var out []models.Event
	for _, event := range f.events {
		out = append(out, *event)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = "evt-generated"
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return repository.ErrNoRowsAffected
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) UpdateStatus(_ context.Context, id string, status models.EventStatus) error {
	event, ok := f.events[id]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	event.Status = status
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(f.events, id)
	return nil
}

type fakeCounter struct{ count int }

func (f *fakeCounter) CountEnrolled(_ context.Context, _ string) (int, error) {
	return f.count, nil
}

func organizerClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleOrganizer}
}

func validCreateRequest() CreateEventRequest {
	return CreateEventRequest{
		Title:       "River Cleanup",
		Description: "Morning shift along the east bank",
		Location:    "East Bank",
		ScheduledAt: time.Now().UTC().Add(72 * time.Hour),
	}
}

func TestEventServiceCreateAppliesDefaultCapacity(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, &fakeCounter{}, nil, zap.NewNop())

	event, err := svc.Create(context.Background(), "org-1", validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, DefaultMaxParticipants, event.MaxParticipants)
	require.Equal(t, models.EventStatusUpcoming, event.Status)
	require.Equal(t, "org-1", event.OrganizerID)
}

func TestEventServiceCreateRejectsInvalidPayload(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, &fakeCounter{}, nil, zap.NewNop())

	req := validCreateRequest()
	req.Title = ""
	_, err := svc.Create(context.Background(), "org-1", req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, repo.events)
}

func TestEventServiceGetMissing(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), &fakeCounter{}, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEventServiceUpdateRequiresOwnership(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	svc := NewEventService(newFakeEventRepo(event), &fakeCounter{}, nil, zap.NewNop())

	req := UpdateEventRequest{
		Title:       event.Title,
		Description: "updated",
		Location:    "North Shore",
		ScheduledAt: event.ScheduledAt,
	}
	_, err := svc.Update(context.Background(), "evt-1", organizerClaims("someone-else"), req)
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestEventServiceUpdateAllowsAdmin(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	svc := NewEventService(newFakeEventRepo(event), &fakeCounter{}, nil, zap.NewNop())

	req := UpdateEventRequest{
		Title:       "Renamed Cleanup",
		Description: "updated",
		Location:    "North Shore",
		ScheduledAt: event.ScheduledAt,
	}
	updated, err := svc.Update(context.Background(), "evt-1",
		&models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}, req)
	require.NoError(t, err)
	require.Equal(t, "Renamed Cleanup", updated.Title)
}

func TestEventServiceUpdateRejectsBackwardTransition(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	event.Status = models.EventStatusCompleted
	svc := NewEventService(newFakeEventRepo(event), &fakeCounter{}, nil, zap.NewNop())

	upcoming := models.EventStatusUpcoming
	req := UpdateEventRequest{
		Title:       event.Title,
		Description: "updated",
		Location:    "North Shore",
		ScheduledAt: event.ScheduledAt,
		Status:      &upcoming,
	}
	_, err := svc.Update(context.Background(), "evt-1", organizerClaims("org-1"), req)
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestEventServiceCancelCompletedEvent(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	event.Status = models.EventStatusCompleted
	svc := NewEventService(newFakeEventRepo(event), &fakeCounter{}, nil, zap.NewNop())

	err := svc.Cancel(context.Background(), "evt-1", organizerClaims("org-1"))
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestEventServiceDeleteBlockedByEnrollments(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	svc := NewEventService(newFakeEventRepo(event), &fakeCounter{count: 3}, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "evt-1", organizerClaims("org-1"))
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestEventServiceDelete(t *testing.T) {
	event := upcomingEvent("evt-1", 20)
	repo := newFakeEventRepo(event)
	svc := NewEventService(repo, &fakeCounter{}, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "evt-1", organizerClaims("org-1")))
	require.Empty(t, repo.events)
}
