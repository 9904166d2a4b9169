package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, eventID, participantID, message string, now time.Time) (*models.Enrollment, error)
	Cancel(ctx context.Context, eventID, participantID string, now time.Time) error
	ListByEvent(ctx context.Context, eventID string) ([]models.ParticipantSummary, error)
	CountEnrolled(ctx context.Context, eventID string) (int, error)
}

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// EnrollmentService mediates joining and leaving events. The repository
// re-checks every join invariant under a row lock; the pre-checks here exist
// to fail fast with a precise error before a transaction is opened.
type EnrollmentService struct {
	repo   enrollmentRepository
	events eventFinder
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, events eventFinder, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, events: events, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Join enrolls the participant in an event. Checks run in a fixed order so a
// request failing several invariants always reports the same one: existence,
// activity, schedule, capacity, uniqueness.
func (s *EnrollmentService) Join(ctx context.Context, eventID, participantID, message string) (*models.Enrollment, error) {
	now := s.now()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, mapEventLookupErr(err)
	}
	if !event.IsOpenForEnrollment(now) {
		if event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCancelled {
			return nil, appErrors.ErrInactiveEvent
		}
		return nil, appErrors.ErrPastEvent
	}

	enrollment, err := s.repo.Enroll(ctx, eventID, participantID, message, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("participant enrolled",
		zap.String("event_id", eventID),
		zap.String("participant_id", participantID))
	return enrollment, nil
}

// Leave cancels the participant's active enrollment. The ledger row is
// tombstoned, never removed, so re-joining later reactivates it.
func (s *EnrollmentService) Leave(ctx context.Context, eventID, participantID string) error {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return mapEventLookupErr(err)
	}
	if err := s.repo.Cancel(ctx, eventID, participantID, s.now()); err != nil {
		return err
	}
	s.logger.Info("participant left event",
		zap.String("event_id", eventID),
		zap.String("participant_id", participantID))
	return nil
}

// Roster returns every enrollment for an event, tombstones included, so
// organizers can see who joined and who backed out.
func (s *EnrollmentService) Roster(ctx context.Context, eventID string) ([]models.ParticipantSummary, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, mapEventLookupErr(err)
	}
	roster, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

func mapEventLookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
}
