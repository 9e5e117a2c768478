package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/controllers"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
)

// VisitRoutes covers visits, appointments, follow-up tasks and
// nominations.
func VisitRoutes(rg *gin.RouterGroup) {
	// Visits
	visits := rg.Group("/visits")
	{
		visits.POST("", security.RequireRole(config.DB, "admin", "sales", "coordinator", "data_entry"), controllers.CreateVisit)
		visits.GET("", controllers.GetVisits)
		visits.GET("/:id", controllers.GetVisit)
		visits.POST("/:id/specialities", security.RequireRole(config.DB, "admin", "coordinator", "data_entry"), controllers.AddVisitSpeciality)
	}

	// Appointments
	appointments := rg.Group("/appointments")
	{
		appointments.POST("", security.RequireRole(config.DB, "admin", "sales", "coordinator", "data_entry"), controllers.CreateAppointment)
		appointments.GET("", controllers.GetAppointments)
		appointments.POST("/:id/convert", security.RequireRole(config.DB, "admin", "coordinator", "data_entry"), controllers.ConvertAppointment)
	}

	// Follow-up Tasks
	tasks := rg.Group("/follow-up/tasks")
	{
		tasks.POST("", security.RequireRole(config.DB, "admin", "team_lead", "coordinator"), controllers.CreateFollowUpTask)
		tasks.GET("", controllers.GetFollowUpTasks)
		tasks.PUT("/:id/postpone", security.RequireRole(config.DB, "admin", "coordinator"), controllers.PostponeFollowUpTask)
		tasks.PUT("/:id/approve", security.RequireRole(config.DB, "admin", "coordinator"), controllers.ApproveFollowUpTask)
		tasks.PUT("/:id/reject", security.RequireRole(config.DB, "admin", "coordinator"), controllers.RejectFollowUpTask)
		tasks.PUT("/:id/complete", security.RequireRole(config.DB, "admin", "coordinator", "data_entry"), controllers.CompleteFollowUpTask)
	}

	// Nominations
	nominations := rg.Group("/nominations")
	{
		nominations.POST("", controllers.CreateNomination)
		nominations.GET("", controllers.GetNominations)
		nominations.PUT("/:id/status", security.RequireRole(config.DB, "admin", "sales", "coordinator"), controllers.UpdateNominationStatus)
		nominations.POST("/:id/convert", security.RequireRole(config.DB, "admin", "sales"), controllers.ConvertNomination)
	}
}
