package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/controllers"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
)

// CommissionRoutes covers the ledger, targets and reporting.
func CommissionRoutes(rg *gin.RouterGroup) {
	// Commissions
	commissions := rg.Group("/commissions")
	{
		commissions.GET("", security.RequireRole(config.DB, "admin", "finance", "team_lead"), controllers.GetCommissions)
		commissions.GET("/employees/:id/breakdown", controllers.GetCommissionBreakdown)
		commissions.POST("/adjustments", security.RequireRole(config.DB, "admin", "finance"), controllers.CreateManualAdjustment)
		commissions.DELETE("", security.RequireRole(config.DB, "admin"), controllers.DeleteAllCommissions)
	}

	// Targets
	targets := rg.Group("/targets")
	{
		targets.POST("", security.RequireRole(config.DB, "admin", "team_lead"), controllers.CreateTarget)
		targets.GET("", controllers.GetTargets)
		targets.GET("/:id", controllers.GetTarget)
		targets.PUT("/:id", security.RequireRole(config.DB, "admin", "team_lead"), controllers.UpdateTarget)
		targets.DELETE("/:id", security.RequireRole(config.DB, "admin", "team_lead"), controllers.DeleteTarget)
		targets.GET("/employees/:id/analysis", controllers.GetTargetAnalysis)
	}

	// Reports & Analytics
	reports := rg.Group("/reports")
	reports.Use(security.RequireRole(config.DB, "admin", "finance", "team_lead"))
	{
		reports.GET("/summary", controllers.GetReportsSummary)
		reports.GET("/teams/:id", controllers.GetTeamAnalysis)
		reports.GET("/summary/export", controllers.ExportSummary)
	}
}
