package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-analytics-service/internal/services"
	"github.com/SAP-F-2025/learning-analytics-service/internal/utils"
	"github.com/SAP-F-2025/learning-analytics-service/internal/validator"
)

type HandlerManager struct {
	analyticsHandler *AnalyticsHandler
}

func NewHandlerManager(
	analyticsService services.AnalyticsService,
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		analyticsHandler: NewAnalyticsHandler(analyticsService, reportService, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		students := v1.Group("/students")
		{
			students.GET("/:id/analysis", hm.analyticsHandler.GetStudentAnalysis)
			students.GET("/:id/analysis/stored", hm.analyticsHandler.GetStoredAnalysis)
			students.GET("/:id/engagement", hm.analyticsHandler.GetEngagementProfile)
		}

		v1.GET("/analyses", hm.analyticsHandler.ListAnalyses)

		materials := v1.Group("/materials")
		{
			materials.GET("/stats", hm.analyticsHandler.GetMaterialStats)
			materials.GET("/stats/export", hm.analyticsHandler.ExportMaterialStats)
		}

		cohort := v1.Group("/cohort")
		{
			cohort.GET("", hm.analyticsHandler.GetCohort)
			cohort.POST("/refresh", hm.analyticsHandler.RefreshCohort)
		}

		v1.POST("/events", hm.analyticsHandler.IngestEvent)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "learning-analytics-service",
		})
	})
}
