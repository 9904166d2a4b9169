package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/service"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
	"github.com/noah-isme/cleanwave-api/pkg/response"
)

// ReportHandler exposes asynchronous impact-report endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Request godoc
// @Summary Queue an event impact report
// @Tags Reports
// @Produce json
// @Param id path string true "Event ID"
// @Param format query string true "Report format (csv or pdf)"
// @Success 202 {object} response.Envelope
// @Router /events/{id}/report [get]
func (h *ReportHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	job, err := h.reports.Request(c.Request.Context(), c.Param("id"), format, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Get report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	job, token, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if token != "" {
		meta = map[string]interface{}{"download_token": token}
	}
	response.JSON(c, http.StatusOK, job, nil, meta)
}

// Download godoc
// @Summary Download a finished report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Report ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	file, job, err := h.reports.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	if job.ID != c.Param("id") {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token does not match report"))
		return
	}

	filename := fmt.Sprintf("impact-report-%s.%s", job.EventID, job.Format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	contentType := "text/csv"
	if job.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
