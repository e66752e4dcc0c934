package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/models"
	"github.com/hexfit/gymops-api/internal/service"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
	"github.com/hexfit/gymops-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	List(ctx context.Context, query dto.ScheduleQuery) ([]models.GeneratedSchedule, error)
	GetSlots(ctx context.Context, scheduleID string) ([]models.ClassSlot, *models.StaffingSummary, error)
	Publish(ctx context.Context, scheduleID string) error
	Delete(ctx context.Context, scheduleID string) error
}

type staffingExporter interface {
	StaffingSheet(ctx context.Context, scheduleID string, format service.ExportFormat) (*service.ExportResult, error)
}

// ScheduleGeneratorHandler exposes schedule generation and lifecycle endpoints.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
	exports staffingExporter
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService, exports *service.ExportService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc, exports: exports}
}

// Generate godoc
// @Summary Generate a weekly class schedule from a template
// @Description Expands the template into dated class slots and staffs each seat. Seats without an eligible coach stay open; the response reports the unstaffed count.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List generated schedules for a team and location
// @Tags Scheduler
// @Produce json
// @Param teamId query string true "Team ID"
// @Param locationId query string true "Location ID"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleGeneratorHandler) List(c *gin.Context) {
	query := dto.ScheduleQuery{
		TeamID:     c.Query("teamId"),
		LocationID: c.Query("locationId"),
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Slots godoc
// @Summary Get slots for a generated schedule
// @Description Returns all class slots plus a staffing summary in the response meta.
// @Tags Scheduler
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/slots [get]
func (h *ScheduleGeneratorHandler) Slots(c *gin.Context) {
	slots, summary, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"staffing": summary}
	response.JSON(c, http.StatusOK, slots, nil, meta)
}

// Publish godoc
// @Summary Publish a draft schedule
// @Tags Scheduler
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id}/publish [post]
func (h *ScheduleGeneratorHandler) Publish(c *gin.Context) {
	if err := h.service.Publish(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a draft schedule
// @Tags Scheduler
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleGeneratorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a schedule's staffing sheet
// @Tags Scheduler
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Schedule ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} binary
// @Router /schedules/{id}/export [get]
func (h *ScheduleGeneratorHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.StaffingSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
