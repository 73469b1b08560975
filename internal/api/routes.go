package api

import (
	"github.com/gin-gonic/gin"

	"github.com/irfndi/prediction-dashboard/internal/api/handlers"
	"github.com/irfndi/prediction-dashboard/internal/dashboard"
	"github.com/irfndi/prediction-dashboard/internal/logging"
)

// SetupRoutes registers the dashboard, its widget endpoints and the health
// probe. The router must already carry the HTML templates.
func SetupRoutes(router *gin.Engine, renderer *dashboard.Renderer, localizer *dashboard.Localizer, dataPath, version string, logger logging.Logger) {
	dashboardHandler := handlers.NewDashboardHandler(renderer, localizer, logger)
	healthHandler := handlers.NewHealthHandler(dataPath, version)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck)

	router.GET("/", dashboardHandler.GetDashboard)
	router.GET("/chart.svg", dashboardHandler.GetChartSVG)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/predictions", dashboardHandler.GetPredictions)
		v1.GET("/chart", dashboardHandler.GetChart)
	}
}
