package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/service"
	"github.com/gaitlab/gait-backend-go/pkg/response"
)

// TrialHandler handles HTTP requests for trials
type TrialHandler struct {
	service *service.TrialService
}

// NewTrialHandler creates a new trial handler
func NewTrialHandler(service *service.TrialService) *TrialHandler {
	return &TrialHandler{service: service}
}

// CreateTrial handles POST /api/v1/trials
func (h *TrialHandler) CreateTrial(c *gin.Context) {
	var payload models.TrialPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "Invalid trial payload: "+err.Error())
		return
	}

	trial, err := h.service.Ingest(&payload)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	response.Created(c, trial)
}

// GetTrials handles GET /api/v1/trials
func (h *TrialHandler) GetTrials(c *gin.Context) {
	var filter models.TrialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	trials, total, err := h.service.ListTrials(filter)
	if err != nil {
		response.InternalError(c, "Failed to list trials")
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       trials,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetTrialByID handles GET /api/v1/trials/:id
func (h *TrialHandler) GetTrialByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	trial, err := h.service.GetTrial(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(c, "Trial not found")
			return
		}
		response.InternalError(c, "Failed to get trial")
		return
	}
	response.Success(c, trial)
}

// DeleteTrial handles DELETE /api/v1/trials/:id
func (h *TrialHandler) DeleteTrial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTrial(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(c, "Trial not found")
			return
		}
		response.InternalError(c, "Failed to delete trial")
		return
	}
	response.Success(c, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid trial ID")
		return 0, false
	}
	return id, true
}
