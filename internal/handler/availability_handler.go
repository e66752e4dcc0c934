package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/service"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
	"github.com/hexfit/gymops-api/pkg/response"
)

type reassigner interface {
	CheckAvailability(ctx context.Context, slotID string) (*dto.AvailabilityBreakdown, error)
	Reassign(ctx context.Context, slotID string, req dto.ReassignSlotRequest) (*dto.ReassignSlotResponse, error)
}

// AvailabilityHandler exposes per-slot availability checks and manual
// reassignment.
type AvailabilityHandler struct {
	service reassigner
	metrics *service.MetricsService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.ReassignmentService, metrics *service.MetricsService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc, metrics: metrics}
}

// Availability godoc
// @Summary List coach availability for a class slot
// @Description Partitions the team roster into available and unavailable coaches for the slot, each unavailable entry carrying a reason.
// @Tags Scheduler
// @Produce json
// @Param id path string true "Class slot ID"
// @Success 200 {object} response.Envelope
// @Router /slots/{id}/availability [get]
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	breakdown, err := h.service.CheckAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}

// Reassign godoc
// @Summary Set or clear a class slot's assigned coach
// @Description Re-validates the chosen coach server-side before writing. An ineligible coach returns applied=false with the verdict; a stale version returns 409.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Class slot ID"
// @Param payload body dto.ReassignSlotRequest true "Reassignment payload"
// @Success 200 {object} response.Envelope
// @Router /slots/{id}/assignee [patch]
func (h *AvailabilityHandler) Reassign(c *gin.Context) {
	var req dto.ReassignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reassignment payload"))
		return
	}
	result, err := h.service.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReassignment(result.Applied)
	response.JSON(c, http.StatusOK, result, nil)
}
