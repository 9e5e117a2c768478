package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Follow-up Task Controllers
type CreateFollowUpTaskInput struct {
	PatientID    string  `json:"patient_id" binding:"required,uuid"`
	HospitalID   string  `json:"hospital_id" binding:"required,uuid"`
	AssignedToID string  `json:"assigned_to_id" binding:"required,uuid"`
	DueDate      string  `json:"due_date" binding:"required"`
	Reason       *string `json:"reason"`
}

type PostponeTaskInput struct {
	NewDueDate string  `json:"new_due_date" binding:"required"`
	Reason     *string `json:"reason"`
}

type ApproveTaskInput struct {
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	Speciality    *string `json:"speciality" binding:"omitempty,max=100"`
	DoctorName    *string `json:"doctor_name" binding:"omitempty,max=100"`
}

type CompleteTaskInput struct {
	VisitDate     *string `json:"visit_date"` // defaults to the appointment's scheduled day
	CoordinatorID *string `json:"coordinator_id" binding:"omitempty,uuid"`
}

func CreateFollowUpTask(c *gin.Context) {
	var input CreateFollowUpTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	dueDate, err := utils.ParseDate(input.DueDate)
	if err != nil {
		security.SendValidationError(c, "Invalid due date format", "Use YYYY-MM-DD format")
		return
	}

	var patientExists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1 AND is_active = true)
	`, input.PatientID).Scan(&patientExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking patient")
		return
	}
	if !patientExists {
		security.SendNotFoundError(c, "patient")
		return
	}

	var assigneeExists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND role = 'coordinator' AND is_active = true)
	`, input.AssignedToID).Scan(&assigneeExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking assignee")
		return
	}
	if !assigneeExists {
		security.SendValidationError(c, "Invalid assignee", "assigned_to_id must reference an active coordinator")
		return
	}

	createdBy := c.GetString("employee_id")

	var task models.FollowUpTask
	err = config.DB.QueryRow(`
		INSERT INTO follow_up_tasks (patient_id, hospital_id, assigned_to_id, due_date, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, patient_id, hospital_id, assigned_to_id, due_date, status, reason, appointment_id, created_by, created_at
	`, input.PatientID, input.HospitalID, input.AssignedToID, dueDate, input.Reason, createdBy).Scan(
		&task.ID, &task.PatientID, &task.HospitalID, &task.AssignedToID, &task.DueDate,
		&task.Status, &task.Reason, &task.AppointmentID, &task.CreatedBy, &task.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create follow-up task")
		return
	}

	c.JSON(http.StatusCreated, task)
}

func GetFollowUpTasks(c *gin.Context) {
	assignedToID := c.Query("assigned_to_id")
	status := c.Query("status")

	query := `
		SELECT t.id, t.patient_id, t.hospital_id, t.assigned_to_id, t.due_date, t.status, t.reason,
		       t.appointment_id, t.created_by, t.created_at, t.updated_at,
		       p.first_name, p.last_name, p.phone, p.national_id,
		       e.name, e.role
		FROM follow_up_tasks t
		JOIN patients p ON p.id = t.patient_id
		JOIN employees e ON e.id = t.assigned_to_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if assignedToID != "" {
		query += fmt.Sprintf(" AND t.assigned_to_id = $%d", argIndex)
		args = append(args, assignedToID)
		argIndex++
	}
	if status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY t.due_date"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var tasks []models.FollowUpTaskWithDetails
	for rows.Next() {
		var task models.FollowUpTaskWithDetails
		err := rows.Scan(
			&task.ID, &task.PatientID, &task.HospitalID, &task.AssignedToID, &task.DueDate,
			&task.Status, &task.Reason, &task.AppointmentID, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
			&task.Patient.FirstName, &task.Patient.LastName, &task.Patient.Phone, &task.Patient.NationalID,
			&task.AssignedTo.Name, &task.AssignedTo.Role,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		task.Patient.ID = task.PatientID
		task.AssignedTo.ID = task.AssignedToID
		tasks = append(tasks, task)
	}

	c.JSON(http.StatusOK, tasks)
}

func PostponeFollowUpTask(c *gin.Context) {
	taskID := c.Param("id")
	var input PostponeTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	newDueDate, err := utils.ParseDate(input.NewDueDate)
	if err != nil {
		security.SendValidationError(c, "Invalid due date format", "Use YYYY-MM-DD format")
		return
	}

	result, err := config.DB.Exec(`
		UPDATE follow_up_tasks SET status = 'postponed', due_date = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('pending', 'postponed')
	`, newDueDate, taskID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to postpone task")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "follow-up task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task postponed successfully"})
}

// ApproveFollowUpTask approves a pending task and spawns the linked
// appointment. The appointment's created_from_follow_up_task_id is what
// later makes the resulting visit classify follow_up_task.
func ApproveFollowUpTask(c *gin.Context) {
	taskID := c.Param("id")
	var input ApproveTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	scheduledDate, err := parseScheduled(input.ScheduledDate)
	if err != nil {
		security.SendValidationError(c, "Invalid scheduled date format", "Use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format")
		return
	}

	var task models.FollowUpTask
	err = config.DB.QueryRow(`
		SELECT id, patient_id, hospital_id, assigned_to_id, status FROM follow_up_tasks WHERE id = $1
	`, taskID).Scan(&task.ID, &task.PatientID, &task.HospitalID, &task.AssignedToID, &task.Status)
	if err != nil {
		security.SendNotFoundError(c, "follow-up task")
		return
	}
	if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusPostponed {
		security.SendValidationError(c, "Task cannot be approved", "Only pending or postponed tasks can be approved")
		return
	}

	isNewPatient, err := isNewPatientNow(task.PatientID, task.HospitalID)
	if err != nil {
		security.SendDatabaseError(c, "Database error while classifying patient")
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var appointment models.Appointment
	err = tx.QueryRow(`
		INSERT INTO appointments (patient_id, hospital_id, scheduled_date, speciality, doctor_name, is_new_patient_at_creation, created_from_follow_up_task_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, patient_id, hospital_id, scheduled_date, speciality, doctor_name, status,
		          is_new_patient_at_creation, created_from_follow_up_task_id, created_at
	`, task.PatientID, task.HospitalID, scheduledDate, input.Speciality, input.DoctorName,
		isNewPatient, task.ID).Scan(
		&appointment.ID, &appointment.PatientID, &appointment.HospitalID, &appointment.ScheduledDate,
		&appointment.Speciality, &appointment.DoctorName, &appointment.Status,
		&appointment.IsNewPatientAtCreation, &appointment.CreatedFromFollowUpTaskID, &appointment.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create appointment")
		return
	}

	_, err = tx.Exec(`
		UPDATE follow_up_tasks SET status = 'approved', appointment_id = $1, updated_at = NOW() WHERE id = $2
	`, appointment.ID, task.ID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update task")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Task approved and appointment created",
		"appointment": appointment,
	})
}

func RejectFollowUpTask(c *gin.Context) {
	taskID := c.Param("id")

	result, err := config.DB.Exec(`
		UPDATE follow_up_tasks SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'postponed')
	`, taskID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to reject task")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "follow-up task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task rejected successfully"})
}

// CompleteFollowUpTask records the visit that resulted from an approved
// task. Classification picks up the same-day follow-up appointment and
// the assignee earns a FOLLOW_UP credit exactly once.
func CompleteFollowUpTask(c *gin.Context) {
	taskID := c.Param("id")
	var input CompleteTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var task models.FollowUpTask
	var appointmentStatus string
	var scheduledDate time.Time
	err := config.DB.QueryRow(`
		SELECT t.id, t.patient_id, t.hospital_id, t.assigned_to_id, t.status, t.appointment_id, a.status, a.scheduled_date
		FROM follow_up_tasks t
		JOIN appointments a ON a.id = t.appointment_id
		WHERE t.id = $1
	`, taskID).Scan(&task.ID, &task.PatientID, &task.HospitalID, &task.AssignedToID,
		&task.Status, &task.AppointmentID, &appointmentStatus, &scheduledDate)
	if err != nil {
		security.SendNotFoundError(c, "follow-up task")
		return
	}
	if task.Status != models.TaskStatusApproved {
		security.SendValidationError(c, "Task cannot be completed", "Only approved tasks with an appointment can be completed")
		return
	}
	if appointmentStatus == "converted" {
		security.SendValidationError(c, "Task already completed", "The linked appointment was already converted to a visit")
		return
	}

	visitDate := scheduledDate
	if input.VisitDate != nil && *input.VisitDate != "" {
		visitDate, err = utils.ParseDate(*input.VisitDate)
		if err != nil {
			security.SendValidationError(c, "Invalid visit date format", "Use YYYY-MM-DD format")
			return
		}
	}

	coordinatorID := input.CoordinatorID
	if coordinatorID == nil {
		coordinatorID = &task.AssignedToID
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var visit models.Visit
	err = tx.QueryRow(`
		INSERT INTO visits (patient_id, hospital_id, visit_date, coordinator_id, appointment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id, status, notes, created_at
	`, task.PatientID, task.HospitalID, visitDate, coordinatorID, task.AppointmentID).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
		&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.Notes, &visit.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create visit")
		return
	}

	_, err = tx.Exec(`UPDATE appointments SET status = 'converted', updated_at = NOW() WHERE id = $1`, *task.AppointmentID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update appointment")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	attribution, err := applyVisitCommissions(visit)
	if err != nil {
		logger.Error("commission recording failed for completed task",
			zap.String("task_id", task.ID), zap.Error(err))
		c.Header("X-Warning", "Visit created but commission recording failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Task completed",
		"visit":         visit,
		"category":      attribution.Category,
		"attributed_to": attribution.EmployeeID,
	})
}
