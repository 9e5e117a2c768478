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

// Target Controllers
type CreateTargetInput struct {
	AssignedToID string  `json:"assigned_to_id" binding:"required,uuid"`
	Type         string  `json:"type" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	TargetValue  int     `json:"target_value" binding:"required,min=1"`
	StartDate    *string `json:"start_date"`
}

type UpdateTargetInput struct {
	TargetValue  *int `json:"target_value" binding:"omitempty,min=1"`
	CurrentValue *int `json:"current_value" binding:"omitempty,min=0"`
}

func CreateTarget(c *gin.Context) {
	var input CreateTargetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	if !models.ValidTargetType(input.Type) {
		security.SendValidationError(c, "Invalid target type", "Type must be daily, weekly, or monthly")
		return
	}
	if !models.ValidTargetCategory(input.Category) {
		security.SendValidationError(c, "Invalid target category", nil)
		return
	}

	var exists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND is_active = true)`, input.AssignedToID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking employee")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "employee")
		return
	}

	anchor := time.Now().In(utils.BusinessLocation)
	if input.StartDate != nil && *input.StartDate != "" {
		parsed, err := utils.ParseDate(*input.StartDate)
		if err != nil {
			security.SendValidationError(c, "Invalid start date format", "Use YYYY-MM-DD format")
			return
		}
		anchor = parsed
	}
	// end_date is stored inclusive: the last day of the period.
	startDate, endDate := utils.PeriodWindow(input.Type, anchor)
	endDate = endDate.AddDate(0, 0, -1)

	createdBy := c.GetString("employee_id")

	var target models.Target
	err = config.DB.QueryRow(`
		INSERT INTO targets (assigned_to_id, type, category, target_value, start_date, end_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, assigned_to_id, type, category, target_value, start_date, end_date, current_value, created_by, created_at
	`, input.AssignedToID, input.Type, input.Category, input.TargetValue, startDate, endDate, createdBy).Scan(
		&target.ID, &target.AssignedToID, &target.Type, &target.Category, &target.TargetValue,
		&target.StartDate, &target.EndDate, &target.CurrentValue, &target.CreatedBy, &target.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create target")
		return
	}

	c.JSON(http.StatusCreated, target)
}

func GetTargets(c *gin.Context) {
	assignedToID := c.Query("assigned_to_id")
	targetType := c.Query("type")
	category := c.Query("category")

	query := `
		SELECT id, assigned_to_id, type, category, target_value, start_date, end_date, current_value, created_by, created_at, updated_at
		FROM targets WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if assignedToID != "" {
		query += fmt.Sprintf(" AND assigned_to_id = $%d", argIndex)
		args = append(args, assignedToID)
		argIndex++
	}
	if targetType != "" {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, targetType)
		argIndex++
	}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, category)
		argIndex++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var targets []models.TargetWithProgress
	for rows.Next() {
		var target models.Target
		err := rows.Scan(
			&target.ID, &target.AssignedToID, &target.Type, &target.Category, &target.TargetValue,
			&target.StartDate, &target.EndDate, &target.CurrentValue, &target.CreatedBy,
			&target.CreatedAt, &target.UpdatedAt,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}

		progress, err := calculator.Progress(target)
		if err != nil {
			security.SendDatabaseError(c, "Failed to compute target progress")
			return
		}
		targets = append(targets, models.TargetWithProgress{Target: target, Progress: progress})
	}

	c.JSON(http.StatusOK, targets)
}

func GetTarget(c *gin.Context) {
	targetID := c.Param("id")

	var target models.Target
	err := config.DB.QueryRow(`
		SELECT id, assigned_to_id, type, category, target_value, start_date, end_date, current_value, created_by, created_at, updated_at
		FROM targets WHERE id = $1
	`, targetID).Scan(
		&target.ID, &target.AssignedToID, &target.Type, &target.Category, &target.TargetValue,
		&target.StartDate, &target.EndDate, &target.CurrentValue, &target.CreatedBy,
		&target.CreatedAt, &target.UpdatedAt,
	)
	if err != nil {
		security.SendNotFoundError(c, "target")
		return
	}

	progress, err := calculator.Progress(target)
	if err != nil {
		security.SendDatabaseError(c, "Failed to compute target progress")
		return
	}

	c.JSON(http.StatusOK, models.TargetWithProgress{Target: target, Progress: progress})
}

func UpdateTarget(c *gin.Context) {
	targetID := c.Param("id")
	var input UpdateTargetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var category string
	err := config.DB.QueryRow(`SELECT category FROM targets WHERE id = $1`, targetID).Scan(&category)
	if err != nil {
		security.SendNotFoundError(c, "target")
		return
	}
	if input.CurrentValue != nil && category != models.TargetCategoryCustom {
		security.SendValidationError(c, "Current value is derived", "Only custom targets accept a manual current_value")
		return
	}

	query := "UPDATE targets SET updated_at = NOW()"
	args := []interface{}{}
	argIndex := 1

	if input.TargetValue != nil {
		query += fmt.Sprintf(", target_value = $%d", argIndex)
		args = append(args, *input.TargetValue)
		argIndex++
	}
	if input.CurrentValue != nil {
		query += fmt.Sprintf(", current_value = $%d", argIndex)
		args = append(args, *input.CurrentValue)
		argIndex++
	}

	if len(args) == 0 {
		security.SendValidationError(c, "No fields to update", nil)
		return
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIndex)
	args = append(args, targetID)

	_, err = config.DB.Exec(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Failed to update target")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Target updated successfully"})
}

func DeleteTarget(c *gin.Context) {
	targetID := c.Param("id")

	result, err := config.DB.Exec(`DELETE FROM targets WHERE id = $1`, targetID)
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete target")
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		security.SendNotFoundError(c, "target")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Target deleted successfully"})
}

// GetTargetAnalysis returns every active target for one employee with
// its live progress, grouped by period type for the dashboard.
func GetTargetAnalysis(c *gin.Context) {
	employeeID := c.Param("id")

	var exists bool
	err := config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`, employeeID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking employee")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "employee")
		return
	}

	now := time.Now().In(utils.BusinessLocation)
	rows, err := config.DB.Query(`
		SELECT id, assigned_to_id, type, category, target_value, start_date, end_date, current_value, created_by, created_at, updated_at
		FROM targets
		WHERE assigned_to_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY type, category
	`, employeeID, utils.FormatDate(now))
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	analysis := map[string][]models.TargetWithProgress{
		models.TargetTypeDaily:   {},
		models.TargetTypeWeekly:  {},
		models.TargetTypeMonthly: {},
	}
	for rows.Next() {
		var target models.Target
		err := rows.Scan(
			&target.ID, &target.AssignedToID, &target.Type, &target.Category, &target.TargetValue,
			&target.StartDate, &target.EndDate, &target.CurrentValue, &target.CreatedBy,
			&target.CreatedAt, &target.UpdatedAt,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}

		progress, err := calculator.Progress(target)
		if err != nil {
			security.SendDatabaseError(c, "Failed to compute target progress")
			return
		}
		analysis[target.Type] = append(analysis[target.Type], models.TargetWithProgress{Target: target, Progress: progress})
	}

	c.JSON(http.StatusOK, gin.H{
		"employee_id": employeeID,
		"targets":     analysis,
	})
}
