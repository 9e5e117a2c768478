package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Employee Controllers
type CreateEmployeeInput struct {
	Name       string  `json:"name" binding:"required,min=2,max=100"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Role       string  `json:"role" binding:"required,oneof=admin sales coordinator data_entry finance team_lead"`
	TeamLeadID *string `json:"team_lead_id" binding:"omitempty,uuid"`
}

type UpdateEmployeeInput struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin sales coordinator data_entry finance team_lead"`
	TeamLeadID *string `json:"team_lead_id" binding:"omitempty,uuid"`
	IsActive   *bool   `json:"is_active"`
}

func CreateEmployee(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Check if email already exists
	var emailExists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM employees WHERE email = $1)`, input.Email).Scan(&emailExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking email")
		return
	}
	if emailExists {
		security.SendConflictError(c, "Email already exists")
		return
	}

	// Verify team lead exists if provided
	if input.TeamLeadID != nil {
		var leadExists bool
		err = config.DB.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND role = 'team_lead' AND is_active = true)
		`, *input.TeamLeadID).Scan(&leadExists)
		if err != nil {
			security.SendDatabaseError(c, "Database error while checking team lead")
			return
		}
		if !leadExists {
			security.SendValidationError(c, "Invalid team lead", "team_lead_id must reference an active team lead")
			return
		}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var employee models.Employee
	err = config.DB.QueryRow(`
		INSERT INTO employees (name, email, password_hash, phone, role, team_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, phone, role, team_lead_id, commissions, is_active, created_at
	`, input.Name, input.Email, string(passHash), input.Phone, input.Role, input.TeamLeadID).Scan(
		&employee.ID, &employee.Name, &employee.Email, &employee.Phone, &employee.Role,
		&employee.TeamLeadID, &employee.Commissions, &employee.IsActive, &employee.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func GetEmployees(c *gin.Context) {
	role := c.Query("role")
	teamLeadID := c.Query("team_lead_id")

	query := `
		SELECT id, name, email, phone, role, team_lead_id, commissions, is_active, created_at, updated_at
		FROM employees
		WHERE is_active = true
	`
	args := []interface{}{}
	argIndex := 1

	if role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIndex)
		args = append(args, role)
		argIndex++
	}
	if teamLeadID != "" {
		query += fmt.Sprintf(" AND team_lead_id = $%d", argIndex)
		args = append(args, teamLeadID)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var employee models.Employee
		err := rows.Scan(
			&employee.ID, &employee.Name, &employee.Email, &employee.Phone, &employee.Role,
			&employee.TeamLeadID, &employee.Commissions, &employee.IsActive, &employee.CreatedAt, &employee.UpdatedAt,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		employees = append(employees, employee)
	}

	c.JSON(http.StatusOK, employees)
}

func GetEmployee(c *gin.Context) {
	employeeID := c.Param("id")

	var employee models.Employee
	err := config.DB.QueryRow(`
		SELECT id, name, email, phone, role, team_lead_id, commissions, is_active, created_at, updated_at
		FROM employees WHERE id = $1
	`, employeeID).Scan(
		&employee.ID, &employee.Name, &employee.Email, &employee.Phone, &employee.Role,
		&employee.TeamLeadID, &employee.Commissions, &employee.IsActive, &employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		security.SendNotFoundError(c, "employee")
		return
	}

	c.JSON(http.StatusOK, employee)
}

func UpdateEmployee(c *gin.Context) {
	employeeID := c.Param("id")
	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	// Build dynamic update query
	query := "UPDATE employees SET updated_at = NOW()"
	args := []interface{}{}
	argIndex := 1

	appendSet := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if input.Name != nil {
		appendSet("name", *input.Name)
	}
	if input.Phone != nil {
		appendSet("phone", *input.Phone)
	}
	if input.Role != nil {
		appendSet("role", *input.Role)
	}
	if input.TeamLeadID != nil {
		appendSet("team_lead_id", *input.TeamLeadID)
	}
	if input.IsActive != nil {
		appendSet("is_active", *input.IsActive)
	}

	if len(args) == 0 {
		security.SendValidationError(c, "No fields to update", nil)
		return
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIndex)
	args = append(args, employeeID)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update employee")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee updated successfully"})
}

func DeleteEmployee(c *gin.Context) {
	employeeID := c.Param("id")

	result, err := config.DB.Exec(`UPDATE employees SET is_active = false, updated_at = NOW() WHERE id = $1`, employeeID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to deactivate employee")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deactivated successfully"})
}

// GetEmployeePerformance returns the employee's classified visit counts
// and commission breakdown over a date window. One of the four reporting
// endpoints - all stats come from the shared calculator.
func GetEmployeePerformance(c *gin.Context) {
	employeeID := c.Param("id")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	var employee models.Employee
	err := config.DB.QueryRow(`
		SELECT id, name, role, commissions FROM employees WHERE id = $1 AND is_active = true
	`, employeeID).Scan(&employee.ID, &employee.Name, &employee.Role, &employee.Commissions)
	if err != nil {
		security.SendNotFoundError(c, "employee")
		return
	}

	stats, err := calculator.Stats(employee, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		security.SendDatabaseError(c, "Failed to compute performance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start_date":  utils.FormatDate(startDate),
		"end_date":    utils.FormatDate(endDate),
		"performance": stats,
	})
}

// parseWindow reads start_date/end_date query params (YYYY-MM-DD,
// business timezone), defaulting to the last 30 days.
func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	startDateStr := c.DefaultQuery("start_date", utils.FormatDate(time.Now().AddDate(0, 0, -30)))
	endDateStr := c.DefaultQuery("end_date", utils.FormatDate(time.Now()))

	startDate, err := utils.ParseDate(startDateStr)
	if err != nil {
		security.SendValidationError(c, "Invalid start_date format. Use YYYY-MM-DD", nil)
		return time.Time{}, time.Time{}, false
	}
	endDate, err := utils.ParseDate(endDateStr)
	if err != nil {
		security.SendValidationError(c, "Invalid end_date format. Use YYYY-MM-DD", nil)
		return time.Time{}, time.Time{}, false
	}
	if endDate.Before(startDate) {
		security.SendValidationError(c, "end_date must not precede start_date", nil)
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}
