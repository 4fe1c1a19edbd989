package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gaitlab/gait-backend-go/internal/detect"
	"github.com/gaitlab/gait-backend-go/internal/emg"
	"github.com/gaitlab/gait-backend-go/internal/models"
	"github.com/gaitlab/gait-backend-go/internal/service"
	"github.com/gaitlab/gait-backend-go/pkg/response"
)

// AnalysisHandler handles HTTP requests for trial analysis and results
type AnalysisHandler struct {
	service *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// AnalyzeTrial handles POST /api/v1/trials/:id/analyze
func (h *AnalysisHandler) AnalyzeTrial(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.AnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid analyze request: "+err.Error())
			return
		}
	}

	result, err := h.service.AnalyzeTrial(id, req.SideAssignments)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			response.NotFound(c, "Trial not found")
		case errors.Is(err, detect.ErrAmbiguousContact):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, "Analysis failed: "+err.Error())
		}
		return
	}
	response.Success(c, result)
}

// GetEvents handles GET /api/v1/trials/:id/events
func (h *AnalysisHandler) GetEvents(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.GetEvents(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(c, "Trial not found")
			return
		}
		response.InternalError(c, "Failed to get events")
		return
	}
	response.Success(c, result)
}

// GetMetrics handles GET /api/v1/trials/:id/metrics
func (h *AnalysisHandler) GetMetrics(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	stepWidth, contactVel, err := h.service.GetMetrics(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(c, "Trial not analyzed yet")
			return
		}
		response.InternalError(c, "Failed to get metrics")
		return
	}
	response.Success(c, gin.H{
		"step_width":       stepWidth,
		"contact_velocity": contactVel,
	})
}

// GetEMGChannel handles GET /api/v1/trials/:id/emg/:channel
func (h *AnalysisHandler) GetEMGChannel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	channel := c.Param("channel")
	rms := c.Query("rms") == "true"

	data, err := h.service.EMGChannelData(id, channel, rms)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			response.NotFound(c, "Trial not found")
		case errors.Is(err, emg.ErrNoMatchingChannel):
			response.NotFound(c, "No matching EMG channel: "+channel)
		default:
			response.InternalError(c, "Failed to read EMG channel")
		}
		return
	}
	response.Success(c, gin.H{
		"channel": channel,
		"rms":     rms,
		"data":    data,
	})
}
