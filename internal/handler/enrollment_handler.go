package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cleanwave-api/internal/service"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
	"github.com/noah-isme/cleanwave-api/pkg/response"
)

// EnrollmentHandler exposes join/leave/roster endpoints. Participant identity
// always comes from the validated token, never from the request body.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, metrics: metrics}
}

type joinRequest struct {
	Message string `json:"message"`
}

// Join godoc
// @Summary Enroll the caller in an event
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body joinRequest false "Optional message to the organizer"
// @Success 201 {object} response.Envelope
// @Router /events/{id}/enroll [post]
func (h *EnrollmentHandler) Join(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req joinRequest
	_ = c.ShouldBindJSON(&req)

	enrollment, err := h.enrollments.Join(c.Request.Context(), c.Param("id"), claims.UserID, req.Message)
	if err != nil {
		h.metrics.RecordEnrollment("rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollment("joined")
	response.Created(c, enrollment)
}

// Leave godoc
// @Summary Cancel the caller's enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id}/enroll [delete]
func (h *EnrollmentHandler) Leave(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.enrollments.Leave(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollment("left")
	response.NoContent(c)
}

// Roster godoc
// @Summary List event participants
// @Tags Enrollments
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/participants [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	roster, err := h.enrollments.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
