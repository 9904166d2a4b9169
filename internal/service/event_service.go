package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/repository"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

// DefaultMaxParticipants is applied when a draft leaves capacity unset.
const DefaultMaxParticipants = 50

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) error
	Delete(ctx context.Context, id string) error
}

type enrollmentCounter interface {
	CountEnrolled(ctx context.Context, eventID string) (int, error)
}

// CreateEventRequest describes an event draft.
type CreateEventRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	MaxParticipants int       `json:"max_participants" validate:"omitempty,gt=0"`
	ContactEmail    string    `json:"contact_email" validate:"omitempty,email"`
	ContactPhone    string    `json:"contact_phone"`
}

// UpdateEventRequest describes an event patch.
type UpdateEventRequest struct {
	Title           string              `json:"title" validate:"required"`
	Description     string              `json:"description" validate:"required"`
	Location        string              `json:"location" validate:"required"`
	ScheduledAt     time.Time           `json:"scheduled_at" validate:"required"`
	MaxParticipants int                 `json:"max_participants" validate:"omitempty,gt=0"`
	ContactEmail    string              `json:"contact_email" validate:"omitempty,email"`
	ContactPhone    string              `json:"contact_phone"`
	Status          *models.EventStatus `json:"status"`
}

// EventService orchestrates event CRUD and lifecycle transitions.
type EventService struct {
	repo        eventRepository
	enrollments enrollmentCounter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, enrollments enrollmentCounter, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns events with pagination metadata.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return events, pagination, nil
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create validates the draft locally and persists a new upcoming event.
// Validation failures never reach the repository.
func (s *EventService) Create(ctx context.Context, organizerID string, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.MaxParticipants <= 0 {
		req.MaxParticipants = DefaultMaxParticipants
	}

	event := &models.Event{
		OrganizerID:     organizerID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		ScheduledAt:     req.ScheduledAt,
		MaxParticipants: req.MaxParticipants,
		Status:          models.EventStatusUpcoming,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("organizer_id", organizerID))
	return event, nil
}

// Update rewrites an event owned by the caller. Lifecycle status changes are
// validated against the monotonic transition table.
func (s *EventService) Update(ctx context.Context, id string, claims *models.JWTClaims, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOrganizer(event, claims); err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != event.Status {
		if !models.CanTransition(event.Status, *req.Status) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "invalid status transition")
		}
		event.Status = *req.Status
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.ScheduledAt = req.ScheduledAt
	if req.MaxParticipants > 0 {
		event.MaxParticipants = req.MaxParticipants
	}
	event.ContactEmail = req.ContactEmail
	event.ContactPhone = req.ContactPhone

	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Cancel marks an event cancelled. Completed events cannot be cancelled.
func (s *EventService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOrganizer(event, claims); err != nil {
		return err
	}
	if !models.CanTransition(event.Status, models.EventStatusCancelled) {
		return appErrors.Clone(appErrors.ErrConflict, "event cannot be cancelled")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.EventStatusCancelled); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel event")
	}
	s.logger.Info("event cancelled", zap.String("event_id", id))
	return nil
}

// Delete removes an event. Events holding active enrollments are protected;
// the caller must wait for participants to leave or cancel the event instead.
func (s *EventService) Delete(ctx context.Context, id string, claims *models.JWTClaims) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOrganizer(event, claims); err != nil {
		return err
	}

	enrolled, err := s.enrollments.CountEnrolled(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
	}
	if enrolled > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "event has active enrollments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.logger.Info("event deleted", zap.String("event_id", id))
	return nil
}

func (s *EventService) authorizeOrganizer(event *models.Event, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleAdmin {
		return nil
	}
	if claims.Role == models.RoleOrganizer && event.OrganizerID == claims.UserID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only the organizer can modify this event")
}
