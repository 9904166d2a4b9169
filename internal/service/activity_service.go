package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

type activityRepository interface {
	Create(ctx context.Context, entry *models.ActivityEntry) error
	ListByParticipant(ctx context.Context, participantID string) ([]models.ActivityEntry, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.ActivityEntry, error)
}

// RecordActivityRequest captures one measured contribution, recorded by the
// event organizer after the cleanup.
type RecordActivityRequest struct {
	ParticipantID   string    `json:"participant_id" validate:"required"`
	WasteQuantityKg float64   `json:"waste_quantity_kg" validate:"gte=0"`
	XPEarned        int       `json:"xp_earned" validate:"gte=0"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ActivityService appends to and reads the append-only activity log.
// Entries are never updated or deleted; corrections are compensating entries.
type ActivityService struct {
	repo      activityRepository
	events    eventFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs ActivityService.
func NewActivityService(repo activityRepository, events eventFinder, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, events: events, validator: validate, logger: logger}
}

// Record appends one activity entry against an event.
func (s *ActivityService) Record(ctx context.Context, eventID string, req RecordActivityRequest) (*models.ActivityEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, mapEventLookupErr(err)
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	entry := &models.ActivityEntry{
		ParticipantID:   req.ParticipantID,
		EventID:         eventID,
		WasteQuantityKg: req.WasteQuantityKg,
		XPEarned:        req.XPEarned,
		OccurredAt:      occurredAt,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record activity")
	}
	s.logger.Info("activity recorded",
		zap.String("participant_id", req.ParticipantID),
		zap.String("event_id", eventID),
		zap.Int("xp_earned", req.XPEarned))
	return entry, nil
}

// History returns the participant's activity log, oldest first.
func (s *ActivityService) History(ctx context.Context, participantID string) ([]models.ActivityEntry, error) {
	entries, err := s.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity log")
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	return entries, nil
}
