package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/service"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
	"github.com/noah-isme/cleanwave-api/pkg/response"
)

// ScoringHandler exposes derived gamification state.
type ScoringHandler struct {
	scoring *service.ScoringService
}

// NewScoringHandler constructs ScoringHandler.
func NewScoringHandler(scoring *service.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoring: scoring}
}

// Score godoc
// @Summary Get a participant's gamification snapshot
// @Tags Scoring
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Router /participants/{id}/score [get]
func (h *ScoringHandler) Score(c *gin.Context) {
	participantID := c.Param("id")
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	// Participants may only read their own snapshot; staff may read anyone's.
	if claims.Role == models.RoleParticipant && claims.UserID != participantID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	snapshot, err := h.scoring.Snapshot(c.Request.Context(), participantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Leaderboard godoc
// @Summary Top participants by XP
// @Tags Scoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *ScoringHandler) Leaderboard(c *gin.Context) {
	rows, err := h.scoring.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
