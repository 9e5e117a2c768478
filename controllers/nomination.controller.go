package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Nomination Controllers
type CreateNominationInput struct {
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	Phone         string  `json:"phone" binding:"required,min=7,max=20"`
	NominatedByID *string `json:"nominated_by_id" binding:"omitempty,uuid"`
	Notes         *string `json:"notes" binding:"omitempty,max=500"`
}

type UpdateNominationStatusInput struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes" binding:"omitempty,max=500"`
}

type ConvertNominationInput struct {
	FirstName     string  `json:"first_name" binding:"required,min=2,max=100"`
	LastName      string  `json:"last_name" binding:"required,min=1,max=100"`
	NationalID    *string `json:"national_id" binding:"omitempty,max=50"`
	DateOfBirth   *string `json:"date_of_birth"`
	SalesPersonID *string `json:"sales_person_id" binding:"omitempty,uuid"`
}

func CreateNomination(c *gin.Context) {
	var input CreateNominationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	nominatedByID := c.GetString("employee_id")
	if input.NominatedByID != nil {
		nominatedByID = *input.NominatedByID
	}

	var exists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND is_active = true)`, nominatedByID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking nominator")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "employee")
		return
	}

	var nomination models.Nomination
	err = config.DB.QueryRow(`
		INSERT INTO nominations (name, phone, nominated_by_id, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, phone, nominated_by_id, status, converted_patient_id, notes, created_at
	`, input.Name, input.Phone, nominatedByID, input.Notes).Scan(
		&nomination.ID, &nomination.Name, &nomination.Phone, &nomination.NominatedByID,
		&nomination.Status, &nomination.ConvertedPatientID, &nomination.Notes, &nomination.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create nomination")
		return
	}

	c.JSON(http.StatusCreated, nomination)
}

func GetNominations(c *gin.Context) {
	status := c.Query("status")
	nominatedByID := c.Query("nominated_by_id")

	query := `
		SELECT n.id, n.name, n.phone, n.nominated_by_id, n.status, n.converted_patient_id, n.notes, n.created_at, n.updated_at
		FROM nominations n WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" AND n.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}
	if nominatedByID != "" {
		query += fmt.Sprintf(" AND n.nominated_by_id = $%d", argIndex)
		args = append(args, nominatedByID)
		argIndex++
	}

	query += " ORDER BY n.created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var nominations []models.Nomination
	for rows.Next() {
		var nomination models.Nomination
		err := rows.Scan(
			&nomination.ID, &nomination.Name, &nomination.Phone, &nomination.NominatedByID,
			&nomination.Status, &nomination.ConvertedPatientID, &nomination.Notes,
			&nomination.CreatedAt, &nomination.UpdatedAt,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		nominations = append(nominations, nomination)
	}

	c.JSON(http.StatusOK, nominations)
}

func UpdateNominationStatus(c *gin.Context) {
	nominationID := c.Param("id")
	var input UpdateNominationStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	switch input.Status {
	case models.NominationStatusNew, models.NominationStatusContacting, models.NominationStatusContactedRejected:
	case models.NominationStatusContactedApproved:
		security.SendValidationError(c, "Invalid status transition", "Use the convert endpoint to approve a nomination")
		return
	default:
		security.SendValidationError(c, "Invalid status", nil)
		return
	}

	query := `UPDATE nominations SET status = $1, updated_at = NOW()`
	args := []interface{}{input.Status}
	argIndex := 2

	if input.Notes != nil {
		query += fmt.Sprintf(", notes = $%d", argIndex)
		args = append(args, *input.Notes)
		argIndex++
	}

	query += fmt.Sprintf(" WHERE id = $%d AND converted_patient_id IS NULL", argIndex)
	args = append(args, nominationID)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update nomination")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "nomination")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Nomination updated successfully"})
}

// ConvertNomination registers the nominated person as a patient and
// links them back. The NOMINATION_CONVERSION credit is not recorded
// here - it lands when the new patient makes their first visit.
func ConvertNomination(c *gin.Context) {
	nominationID := c.Param("id")
	var input ConvertNominationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var nomination models.Nomination
	err := config.DB.QueryRow(`
		SELECT id, name, phone, nominated_by_id, status, converted_patient_id FROM nominations WHERE id = $1
	`, nominationID).Scan(&nomination.ID, &nomination.Name, &nomination.Phone,
		&nomination.NominatedByID, &nomination.Status, &nomination.ConvertedPatientID)
	if err != nil {
		security.SendNotFoundError(c, "nomination")
		return
	}
	if nomination.ConvertedPatientID != nil {
		security.SendValidationError(c, "Nomination already converted", nil)
		return
	}

	var dateOfBirth *time.Time
	if input.DateOfBirth != nil && *input.DateOfBirth != "" {
		parsed, err := utils.ParseDate(*input.DateOfBirth)
		if err != nil {
			security.SendValidationError(c, "Invalid date of birth format", "Use YYYY-MM-DD format")
			return
		}
		dateOfBirth = &parsed
	}

	salesPersonID := input.SalesPersonID
	if salesPersonID == nil && c.GetString("employee_role") == models.RoleSales {
		id := c.GetString("employee_id")
		salesPersonID = &id
	}

	if input.NationalID != nil {
		var duplicate bool
		err = config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM patients WHERE national_id = $1)`, *input.NationalID).Scan(&duplicate)
		if err != nil {
			security.SendDatabaseError(c, "Database error while checking national ID")
			return
		}
		if duplicate {
			security.SendConflictError(c, "A patient with this national id already exists")
			return
		}
	}

	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	createdBy := c.GetString("employee_id")

	var patient models.Patient
	err = tx.QueryRow(`
		INSERT INTO patients (first_name, last_name, phone, national_id, date_of_birth, sales_person_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, first_name, last_name, phone, national_id, date_of_birth, sales_person_id, is_active, created_at
	`, input.FirstName, input.LastName, nomination.Phone, input.NationalID, dateOfBirth, salesPersonID, createdBy).Scan(
		&patient.ID, &patient.FirstName, &patient.LastName, &patient.Phone, &patient.NationalID,
		&patient.DateOfBirth, &patient.SalesPersonID, &patient.IsActive, &patient.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create patient")
		return
	}

	_, err = tx.Exec(`
		UPDATE nominations SET status = 'contacted_approved', converted_patient_id = $1, updated_at = NOW() WHERE id = $2
	`, patient.ID, nomination.ID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update nomination")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Nomination converted successfully",
		"patient": patient,
	})
}
