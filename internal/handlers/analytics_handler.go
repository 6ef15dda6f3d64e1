package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-analytics-service/internal/analyzers"
	"github.com/SAP-F-2025/learning-analytics-service/internal/services"
	"github.com/SAP-F-2025/learning-analytics-service/internal/utils"
	"github.com/SAP-F-2025/learning-analytics-service/internal/validator"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	reportService    services.ReportService
	validator        *validator.Validator
}

// IngestEventRequest is the HTTP shape of a raw interaction event. Fields
// beyond the required two are passed through as-is; normalization owns the
// defaulting rules.
type IngestEventRequest struct {
	StudentID  int64                  `json:"student_id" validate:"required,gt=0"`
	Timestamp  time.Time              `json:"timestamp" validate:"required"`
	Artifact   string                 `json:"artifact_type" validate:"omitempty,artifact_type"`
	Attributes map[string]interface{} `json:"attributes"`
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		reportService:    reportService,
		validator:        validator,
	}
}

// GetStudentAnalysis returns the full analysis snapshot for a student
// @Summary Get student analysis
// @Description Returns the cached or freshly computed analysis for a student
// @Tags analytics
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} models.StudentAnalytics
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /students/{id}/analysis [get]
func (h *AnalyticsHandler) GetStudentAnalysis(c *gin.Context) {
	studentID, ok := h.parseStudentIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Analyzing student", "student_id", studentID)

	result, err := h.analyticsService.AnalyzeStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEngagementProfile returns the raw engagement metrics for a student
// @Summary Get engagement profile
// @Description Returns activity, learning and temporal metrics without clustering or risk
// @Tags analytics
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} models.EngagementProfile
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /students/{id}/engagement [get]
func (h *AnalyticsHandler) GetEngagementProfile(c *gin.Context) {
	studentID, ok := h.parseStudentIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.analyticsService.GetEngagementProfile(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetStoredAnalysis returns the persisted analysis snapshot without recomputing
// @Summary Get stored analysis
// @Description Returns the last persisted snapshot plus the student's current event count
// @Tags analytics
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} services.StoredAnalysis
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /students/{id}/analysis/stored [get]
func (h *AnalyticsHandler) GetStoredAnalysis(c *gin.Context) {
	studentID, ok := h.parseStudentIDParam(c, "id")
	if !ok {
		return
	}

	stored, err := h.analyticsService.GetStoredAnalysis(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stored)
}

// ListAnalyses returns persisted snapshots across the cohort
// @Summary List stored analyses
// @Description Returns persisted snapshots ordered by student id, with pagination
// @Tags analytics
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} ErrorResponse
// @Router /analyses [get]
func (h *AnalyticsHandler) ListAnalyses(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	analyses, total, err := h.analyticsService.ListAnalyses(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": analyses,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetMaterialStats returns effectiveness statistics for all materials
// @Summary Get material effectiveness
// @Description Returns per-material statistics with the course-wide success baseline
// @Tags analytics
// @Produce json
// @Success 200 {object} services.MaterialReport
// @Failure 503 {object} ErrorResponse
// @Router /materials/stats [get]
func (h *AnalyticsHandler) GetMaterialStats(c *gin.Context) {
	report, err := h.analyticsService.GetMaterialEffectiveness(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportMaterialStats streams the material effectiveness report as an Excel file
// @Summary Export material effectiveness
// @Description Downloads per-material statistics as an xlsx workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 503 {object} ErrorResponse
// @Router /materials/stats/export [get]
func (h *AnalyticsHandler) ExportMaterialStats(c *gin.Context) {
	h.LogRequest(c, "Exporting material stats")

	data, err := h.reportService.ExportMaterialStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("material_stats_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// IngestEvent accepts a single raw interaction event over HTTP
// @Summary Ingest interaction event
// @Description Normalizes and stores one interaction event, then schedules recomputation
// @Tags analytics
// @Accept json
// @Produce json
// @Param event body IngestEventRequest true "Raw interaction event"
// @Success 202 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /events [post]
func (h *AnalyticsHandler) IngestEvent(c *gin.Context) {
	var req IngestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	raw := analyzers.RawEvent{
		"student_id": req.StudentID,
		"timestamp":  req.Timestamp.Format(time.RFC3339),
	}
	if req.Artifact != "" {
		raw["artifact_type"] = req.Artifact
	}
	for k, v := range req.Attributes {
		raw[k] = v
	}

	if err := h.analyticsService.IngestRawEvent(c.Request.Context(), raw); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Message: "Event accepted",
	})
}

// RefreshCohort triggers an immediate cohort model refresh
// @Summary Refresh cohort model
// @Description Refits the population risk model over all students
// @Tags analytics
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.CohortModel}
// @Failure 503 {object} ErrorResponse
// @Router /cohort/refresh [post]
func (h *AnalyticsHandler) RefreshCohort(c *gin.Context) {
	h.LogRequest(c, "Refreshing cohort model")

	model, err := h.analyticsService.RefreshCohort(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Cohort model refreshed",
		Data:    model,
	})
}

// GetCohort returns the last refreshed cohort model
// @Summary Get cohort snapshot
// @Description Returns the current population risk model, 404 before the first refresh
// @Tags analytics
// @Produce json
// @Success 200 {object} services.CohortModel
// @Failure 404 {object} ErrorResponse
// @Router /cohort [get]
func (h *AnalyticsHandler) GetCohort(c *gin.Context) {
	model := h.analyticsService.CohortSnapshot()
	if model == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Cohort model not built yet",
		})
		return
	}

	c.JSON(http.StatusOK, model)
}
