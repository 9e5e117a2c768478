package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/controllers"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
)

// DirectoryRoutes covers employees, patients and hospitals.
func DirectoryRoutes(rg *gin.RouterGroup) {
	// Employee Management
	employees := rg.Group("/employees")
	{
		employees.POST("", security.RequireRole(config.DB, "admin"), controllers.CreateEmployee)
		employees.GET("", controllers.GetEmployees)
		employees.GET("/:id", controllers.GetEmployee)
		employees.PUT("/:id", security.RequireRole(config.DB, "admin"), controllers.UpdateEmployee)
		employees.DELETE("/:id", security.RequireRole(config.DB, "admin"), controllers.DeleteEmployee)
		employees.GET("/:id/performance", security.RequireRole(config.DB, "admin", "finance", "team_lead"), controllers.GetEmployeePerformance)
	}

	// Patient Management
	patients := rg.Group("/patients")
	{
		patients.POST("", security.RequireRole(config.DB, "admin", "sales", "data_entry"), controllers.CreatePatient)
		patients.GET("", controllers.GetPatients)
		patients.GET("/:id", controllers.GetPatient)
		patients.PUT("/:id", security.RequireRole(config.DB, "admin", "sales", "data_entry"), controllers.UpdatePatient)
		patients.PUT("/:id/assign", security.RequireRole(config.DB, "admin", "team_lead"), controllers.AssignPatient)
	}

	// Hospitals
	hospitals := rg.Group("/hospitals")
	{
		hospitals.POST("", security.RequireRole(config.DB, "admin"), controllers.CreateHospital)
		hospitals.GET("", controllers.GetHospitals)
	}
}
