package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler serves /metrics and
// may be nil when telemetry scraping is disabled.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Audit endpoints
		audit := v1.Group("/audit")
		{
			audit.POST("", handler.Audit)            // POST /api/v1/audit
			audit.POST("/batch", handler.AuditBatch) // POST /api/v1/audit/batch
		}
		v1.GET("/audits/:app_id", handler.GetAuditHistory) // GET /api/v1/audits/:app_id

		// Rule set management endpoints
		ruleSets := v1.Group("/rulesets")
		{
			ruleSets.GET("", handler.ListRuleSets)          // GET /api/v1/rulesets
			ruleSets.POST("", handler.CreateRuleSet)        // POST /api/v1/rulesets
			ruleSets.GET("/:id", handler.GetRuleSet)        // GET /api/v1/rulesets/:id
			ruleSets.PUT("/:id", handler.UpdateRuleSet)     // PUT /api/v1/rulesets/:id
			ruleSets.DELETE("/:id", handler.DeleteRuleSet)  // DELETE /api/v1/rulesets/:id
		}

		// Statistics endpoint
		v1.GET("/stats", handler.GetStats) // GET /api/v1/stats
	}
}
