package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cleanwave-api/internal/middleware"
	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/service"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

type enrollmentRepoStub struct {
	event      *models.Event
	enrollment *models.Enrollment
	enrollErr  error
	cancelErr  error
}

func (s *enrollmentRepoStub) FindByID(_ context.Context, id string) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.event, nil
}

func (s *enrollmentRepoStub) Enroll(_ context.Context, eventID, participantID, message string, now time.Time) (*models.Enrollment, error) {
	if s.enrollErr != nil {
		return nil, s.enrollErr
	}
	s.enrollment = &models.Enrollment{
		ID:            "enr-1",
		EventID:       eventID,
		ParticipantID: participantID,
		Status:        models.EnrollmentStatusEnrolled,
		Message:       message,
		EnrolledAt:    now,
	}
	return s.enrollment, nil
}

func (s *enrollmentRepoStub) Cancel(_ context.Context, _, _ string, _ time.Time) error {
	return s.cancelErr
}

func (s *enrollmentRepoStub) ListByEvent(_ context.Context, _ string) ([]models.ParticipantSummary, error) {
	return []models.ParticipantSummary{}, nil
}

func (s *enrollmentRepoStub) CountEnrolled(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func testEvent() *models.Event {
	return &models.Event{
		ID:              "evt-1",
		Title:           "Beach Cleanup",
		ScheduledAt:     time.Now().UTC().Add(48 * time.Hour),
		MaxParticipants: 10,
		Status:          models.EventStatusUpcoming,
	}
}

func newJoinContext(t *testing.T, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(map[string]string{"message": "count me in"})
	req, _ := http.NewRequest(http.MethodPost, "/events/evt-1/enroll", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "evt-1"}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestEnrollmentHandlerJoinRequiresAuth(t *testing.T) {
	stub := &enrollmentRepoStub{event: testEvent()}
	svc := service.NewEnrollmentService(stub, stub, zap.NewNop())
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJoinContext(t, nil)
	handler.Join(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollmentHandlerJoin(t *testing.T) {
	stub := &enrollmentRepoStub{event: testEvent()}
	svc := service.NewEnrollmentService(stub, stub, zap.NewNop())
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJoinContext(t, &models.JWTClaims{UserID: "usr-1", Role: models.RoleParticipant})
	handler.Join(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "usr-1", stub.enrollment.ParticipantID)
	require.Equal(t, "count me in", stub.enrollment.Message)
}

func TestEnrollmentHandlerJoinFullEvent(t *testing.T) {
	stub := &enrollmentRepoStub{event: testEvent(), enrollErr: appErrors.ErrEventFull}
	svc := service.NewEnrollmentService(stub, stub, zap.NewNop())
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJoinContext(t, &models.JWTClaims{UserID: "usr-9", Role: models.RoleParticipant})
	handler.Join(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "EVENT_FULL", envelope.Error.Code)
}

func TestEnrollmentHandlerLeaveNotEnrolled(t *testing.T) {
	stub := &enrollmentRepoStub{event: testEvent(), cancelErr: appErrors.ErrNotEnrolled}
	svc := service.NewEnrollmentService(stub, stub, zap.NewNop())
	handler := NewEnrollmentHandler(svc, nil)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/events/evt-1/enroll", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "evt-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "usr-1", Role: models.RoleParticipant})

	handler.Leave(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
