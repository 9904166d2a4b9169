package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/service"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
	"github.com/noah-isme/cleanwave-api/pkg/response"
)

// ActivityHandler exposes the append-only activity log.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Record godoc
// @Summary Log a participant's contribution to an event
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.RecordActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /events/{id}/activities [post]
func (h *ActivityHandler) Record(c *gin.Context) {
	var req service.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.activities.Record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// History godoc
// @Summary List a participant's activity log
// @Tags Activities
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/activities [get]
func (h *ActivityHandler) History(c *gin.Context) {
	participantID := c.Param("id")
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role == models.RoleParticipant && claims.UserID != participantID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	entries, err := h.activities.History(c.Request.Context(), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
