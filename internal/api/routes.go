package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/reports/acquire", handler.AcquireReport)
		v1.GET("/reports/status/:client_id", handler.GetReportStatus)
		v1.POST("/ingestion/run", handler.RunIngestion)
	}
}
