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

// Appointment Controllers
type CreateAppointmentInput struct {
	PatientID     string  `json:"patient_id" binding:"required,uuid"`
	HospitalID    string  `json:"hospital_id" binding:"required,uuid"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"` // YYYY-MM-DD or YYYY-MM-DD HH:MM:SS
	Speciality    *string `json:"speciality" binding:"omitempty,max=100"`
	DoctorName    *string `json:"doctor_name" binding:"omitempty,max=100"`
	Notes         *string `json:"notes"`
}

type ConvertAppointmentInput struct {
	SalesID       *string `json:"sales_id" binding:"omitempty,uuid"`
	CoordinatorID *string `json:"coordinator_id" binding:"omitempty,uuid"`
	VisitDate     *string `json:"visit_date"` // defaults to the scheduled date
}

func parseScheduled(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, utils.BusinessLocation); err == nil {
		return t, nil
	}
	return utils.ParseDate(s)
}

func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	scheduledDate, err := parseScheduled(input.ScheduledDate)
	if err != nil {
		security.SendValidationError(c, "Invalid scheduled date format", "Use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format")
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

	var hospitalExists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM hospitals WHERE id = $1 AND is_active = true)
	`, input.HospitalID).Scan(&hospitalExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking hospital")
		return
	}
	if !hospitalExists {
		security.SendNotFoundError(c, "hospital")
		return
	}

	// Freeze the new-patient snapshot at booking time. Later reads use
	// live classification; this flag records what was true when booked.
	isNewPatient, err := isNewPatientNow(input.PatientID, input.HospitalID)
	if err != nil {
		security.SendDatabaseError(c, "Database error while classifying patient")
		return
	}

	createdBy := c.GetString("employee_id")

	var appointment models.Appointment
	err = config.DB.QueryRow(`
		INSERT INTO appointments (patient_id, hospital_id, scheduled_date, speciality, doctor_name, is_new_patient_at_creation, created_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, patient_id, hospital_id, scheduled_date, speciality, doctor_name, status,
		          is_new_patient_at_creation, created_from_follow_up_task_id, created_by, notes, created_at
	`, input.PatientID, input.HospitalID, scheduledDate, input.Speciality, input.DoctorName,
		isNewPatient, createdBy, input.Notes).Scan(
		&appointment.ID, &appointment.PatientID, &appointment.HospitalID, &appointment.ScheduledDate,
		&appointment.Speciality, &appointment.DoctorName, &appointment.Status,
		&appointment.IsNewPatientAtCreation, &appointment.CreatedFromFollowUpTaskID,
		&appointment.CreatedBy, &appointment.Notes, &appointment.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// isNewPatientNow reports whether the patient would classify as new
// (no visit anywhere, or none at this hospital) as of now.
func isNewPatientNow(patientID, hospitalID string) (bool, error) {
	var hasVisit, hasVisitAtHospital bool
	err := config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM visits WHERE patient_id = $1),
		       EXISTS(SELECT 1 FROM visits WHERE patient_id = $1 AND hospital_id = $2)
	`, patientID, hospitalID).Scan(&hasVisit, &hasVisitAtHospital)
	if err != nil {
		return false, err
	}
	return !hasVisit || !hasVisitAtHospital, nil
}

func GetAppointments(c *gin.Context) {
	patientID := c.Query("patient_id")
	hospitalID := c.Query("hospital_id")
	status := c.Query("status")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	query := `
		SELECT a.id, a.patient_id, a.hospital_id, a.scheduled_date, a.speciality, a.doctor_name,
		       a.status, a.is_new_patient_at_creation, a.created_from_follow_up_task_id,
		       a.created_by, a.notes, a.created_at, a.updated_at,
		       p.first_name, p.last_name, p.phone, p.national_id,
		       h.code, h.name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN hospitals h ON h.id = a.hospital_id
		WHERE a.scheduled_date >= $1 AND a.scheduled_date < $2
	`
	args := []interface{}{startDate, endDate.AddDate(0, 0, 1)}
	argIndex := 3

	if patientID != "" {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argIndex)
		args = append(args, patientID)
		argIndex++
	}
	if hospitalID != "" {
		query += fmt.Sprintf(" AND a.hospital_id = $%d", argIndex)
		args = append(args, hospitalID)
		argIndex++
	}
	if status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY a.scheduled_date DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var appointments []models.AppointmentWithDetails
	for rows.Next() {
		var appointment models.AppointmentWithDetails
		err := rows.Scan(
			&appointment.ID, &appointment.PatientID, &appointment.HospitalID, &appointment.ScheduledDate,
			&appointment.Speciality, &appointment.DoctorName, &appointment.Status,
			&appointment.IsNewPatientAtCreation, &appointment.CreatedFromFollowUpTaskID,
			&appointment.CreatedBy, &appointment.Notes, &appointment.CreatedAt, &appointment.UpdatedAt,
			&appointment.Patient.FirstName, &appointment.Patient.LastName, &appointment.Patient.Phone, &appointment.Patient.NationalID,
			&appointment.Hospital.Code, &appointment.Hospital.Name,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		appointment.Patient.ID = appointment.PatientID
		appointment.Hospital.ID = appointment.HospitalID
		appointments = append(appointments, appointment)
	}

	c.JSON(http.StatusOK, appointments)
}

// ConvertAppointment records the visit that fulfilled a booked
// appointment. The resulting visit goes through the same classification
// and commission flow as any other.
func ConvertAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	var input ConvertAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var appointment models.Appointment
	err := config.DB.QueryRow(`
		SELECT id, patient_id, hospital_id, scheduled_date, status FROM appointments WHERE id = $1
	`, appointmentID).Scan(&appointment.ID, &appointment.PatientID, &appointment.HospitalID,
		&appointment.ScheduledDate, &appointment.Status)
	if err != nil {
		security.SendNotFoundError(c, "appointment")
		return
	}
	if appointment.Status == "converted" {
		security.SendValidationError(c, "Appointment already converted", nil)
		return
	}

	visitDate := appointment.ScheduledDate
	if input.VisitDate != nil && *input.VisitDate != "" {
		visitDate, err = utils.ParseDate(*input.VisitDate)
		if err != nil {
			security.SendValidationError(c, "Invalid visit date format", "Use YYYY-MM-DD format")
			return
		}
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var visit models.Visit
	err = tx.QueryRow(`
		INSERT INTO visits (patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id, status, notes, created_at
	`, appointment.PatientID, appointment.HospitalID, visitDate, input.SalesID, input.CoordinatorID, appointment.ID).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
		&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.Notes, &visit.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create visit")
		return
	}

	_, err = tx.Exec(`UPDATE appointments SET status = 'converted', updated_at = NOW() WHERE id = $1`, appointment.ID)
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
		logger.Error("commission recording failed for converted appointment",
			zap.String("appointment_id", appointment.ID), zap.Error(err))
		c.Header("X-Warning", "Visit created but commission recording failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"visit":         visit,
		"category":      attribution.Category,
		"attributed_to": attribution.EmployeeID,
	})
}
