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

// Patient Controllers
type CreatePatientInput struct {
	FirstName     string  `json:"first_name" binding:"required,max=100"`
	LastName      string  `json:"last_name" binding:"required,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth   *string `json:"date_of_birth" binding:"omitempty"`
	NationalID    *string `json:"national_id" binding:"omitempty,max=50"`
	Nationality   *string `json:"nationality" binding:"omitempty,max=50"`
	Gender        *string `json:"gender" binding:"omitempty,max=20"`
	SalesPersonID *string `json:"sales_person_id" binding:"omitempty,uuid"`
}

type UpdatePatientInput struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	NationalID  *string `json:"national_id" binding:"omitempty,max=50"`
	Nationality *string `json:"nationality" binding:"omitempty,max=50"`
	IsActive    *bool   `json:"is_active"`
}

type AssignPatientInput struct {
	SalesPersonID string `json:"sales_person_id" binding:"required,uuid"`
}

func CreatePatient(c *gin.Context) {
	var input CreatePatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Parse date of birth if provided
	var dateOfBirth *time.Time
	if input.DateOfBirth != nil && *input.DateOfBirth != "" {
		parsed, err := utils.ParseDate(*input.DateOfBirth)
		if err != nil {
			security.SendValidationError(c, "Invalid date of birth format", "Use YYYY-MM-DD format")
			return
		}
		dateOfBirth = &parsed
	}

	// Default the owning sales person to the creator when they are sales
	salesPersonID := input.SalesPersonID
	if salesPersonID == nil && c.GetString("employee_role") == models.RoleSales {
		id := c.GetString("employee_id")
		salesPersonID = &id
	}

	if salesPersonID != nil {
		var salesExists bool
		err := config.DB.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND role = 'sales' AND is_active = true)
		`, *salesPersonID).Scan(&salesExists)
		if err != nil {
			security.SendDatabaseError(c, "Database error while checking sales person")
			return
		}
		if !salesExists {
			security.SendValidationError(c, "Invalid sales person", "sales_person_id must reference an active sales employee")
			return
		}
	}

	// Duplicate national id check
	if input.NationalID != nil && *input.NationalID != "" {
		var idExists bool
		err := config.DB.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM patients WHERE national_id = $1 AND is_active = true)
		`, *input.NationalID).Scan(&idExists)
		if err != nil {
			security.SendDatabaseError(c, "Database error while checking national id")
			return
		}
		if idExists {
			security.SendConflictError(c, "A patient with this national id already exists")
			return
		}
	}

	createdBy := c.GetString("employee_id")

	var patient models.Patient
	err := config.DB.QueryRow(`
		INSERT INTO patients (first_name, last_name, phone, date_of_birth, national_id, nationality, gender, sales_person_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, first_name, last_name, phone, date_of_birth, national_id, nationality, gender, sales_person_id, created_by, is_active, created_at
	`, input.FirstName, input.LastName, input.Phone, dateOfBirth, input.NationalID,
		input.Nationality, input.Gender, salesPersonID, createdBy).Scan(
		&patient.ID, &patient.FirstName, &patient.LastName, &patient.Phone, &patient.DateOfBirth,
		&patient.NationalID, &patient.Nationality, &patient.Gender, &patient.SalesPersonID,
		&patient.CreatedBy, &patient.IsActive, &patient.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create patient")
		return
	}

	c.JSON(http.StatusCreated, patient)
}

func GetPatients(c *gin.Context) {
	salesPersonID := c.Query("sales_person_id")
	search := c.Query("search")

	query := `
		SELECT id, first_name, last_name, phone, date_of_birth, national_id, nationality, gender,
		       sales_person_id, created_by, is_active, created_at, updated_at
		FROM patients
		WHERE is_active = true
	`
	args := []interface{}{}
	argIndex := 1

	if salesPersonID != "" {
		query += fmt.Sprintf(" AND sales_person_id = $%d", argIndex)
		args = append(args, salesPersonID)
		argIndex++
	}
	if search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR national_id = $%d)", argIndex, argIndex, argIndex+1)
		args = append(args, "%"+search+"%", search)
		argIndex += 2
	}

	query += " ORDER BY created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var patient models.Patient
		err := rows.Scan(
			&patient.ID, &patient.FirstName, &patient.LastName, &patient.Phone, &patient.DateOfBirth,
			&patient.NationalID, &patient.Nationality, &patient.Gender, &patient.SalesPersonID,
			&patient.CreatedBy, &patient.IsActive, &patient.CreatedAt, &patient.UpdatedAt,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		patients = append(patients, patient)
	}

	c.JSON(http.StatusOK, patients)
}

func GetPatient(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	err := config.DB.QueryRow(`
		SELECT id, first_name, last_name, phone, date_of_birth, national_id, nationality, gender,
		       sales_person_id, created_by, is_active, created_at, updated_at
		FROM patients WHERE id = $1
	`, patientID).Scan(
		&patient.ID, &patient.FirstName, &patient.LastName, &patient.Phone, &patient.DateOfBirth,
		&patient.NationalID, &patient.Nationality, &patient.Gender, &patient.SalesPersonID,
		&patient.CreatedBy, &patient.IsActive, &patient.CreatedAt, &patient.UpdatedAt,
	)
	if err != nil {
		security.SendNotFoundError(c, "patient")
		return
	}

	c.JSON(http.StatusOK, patient)
}

func UpdatePatient(c *gin.Context) {
	patientID := c.Param("id")
	var input UpdatePatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	query := "UPDATE patients SET updated_at = NOW()"
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if input.FirstName != nil {
		appendSet("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		appendSet("last_name", *input.LastName)
	}
	if input.Phone != nil {
		appendSet("phone", *input.Phone)
	}
	if input.NationalID != nil {
		appendSet("national_id", *input.NationalID)
	}
	if input.Nationality != nil {
		appendSet("nationality", *input.Nationality)
	}
	if input.IsActive != nil {
		appendSet("is_active", *input.IsActive)
	}

	if len(args) == 0 {
		security.SendValidationError(c, "No fields to update", nil)
		return
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIndex)
	args = append(args, patientID)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update patient")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "patient")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}

// AssignPatient reassigns the patient to a different sales person.
// Live-classified new-patient counts follow the new owner immediately;
// historical commission rows keep the old one.
func AssignPatient(c *gin.Context) {
	patientID := c.Param("id")
	var input AssignPatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var salesExists bool
	err := config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND role = 'sales' AND is_active = true)
	`, input.SalesPersonID).Scan(&salesExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking sales person")
		return
	}
	if !salesExists {
		security.SendValidationError(c, "Invalid sales person", "sales_person_id must reference an active sales employee")
		return
	}

	result, err := config.DB.Exec(`
		UPDATE patients SET sales_person_id = $1, updated_at = NOW() WHERE id = $2 AND is_active = true
	`, input.SalesPersonID, patientID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to reassign patient")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "patient")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient reassigned successfully"})
}
