package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hexfit/gymops-api/internal/models"
	"github.com/hexfit/gymops-api/internal/service"
	"github.com/hexfit/gymops-api/pkg/response"
)

type coachProvider interface {
	List(ctx context.Context, filter models.CoachFilter) ([]models.Coach, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Coach, error)
}

// CoachHandler exposes read-only roster endpoints.
type CoachHandler struct {
	service coachProvider
}

// NewCoachHandler constructs the handler.
func NewCoachHandler(svc *service.CoachService) *CoachHandler {
	return &CoachHandler{service: svc}
}

// List godoc
// @Summary List coaches
// @Tags Coaches
// @Produce json
// @Param teamId query string false "Filter by team"
// @Param search query string false "Search by name"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /coaches [get]
func (h *CoachHandler) List(c *gin.Context) {
	filter := models.CoachFilter{
		TeamID:    c.Query("teamId"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	coaches, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coaches, pagination)
}

// Get godoc
// @Summary Get a coach
// @Tags Coaches
// @Produce json
// @Param id path string true "Coach ID"
// @Success 200 {object} response.Envelope
// @Router /coaches/{id} [get]
func (h *CoachHandler) Get(c *gin.Context) {
	coach, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coach, nil)
}
