package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/commission"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Commission Controllers
type ManualAdjustmentInput struct {
	EmployeeID  string  `json:"employee_id" binding:"required,uuid"`
	Amount      string  `json:"amount" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Period      *string `json:"period"`
}

const breakdownTTL = 5 * time.Minute

// recordAudit writes an audit trail row for admin-level ledger changes.
// Best effort: a failed write is logged, not surfaced to the caller.
func recordAudit(actorID, action, details string) {
	_, err := config.DB.Exec(`
		INSERT INTO audit_log (actor_id, action, details) VALUES ($1, $2, $3)
	`, actorID, action, details)
	if err != nil {
		logger.Warn("audit trail write failed", zap.String("action", action), zap.Error(err))
	}
}

type breakdownResponse struct {
	EmployeeID string                     `json:"employee_id"`
	StartDate  string                     `json:"start_date"`
	EndDate    string                     `json:"end_date"`
	Counts     map[string]int             `json:"counts"`
	Totals     map[string]decimal.Decimal `json:"totals"`
	Total      int                        `json:"total"`
}

func GetCommissions(c *gin.Context) {
	employeeID := c.Query("employee_id")
	commissionType := c.Query("type")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	query := `
		SELECT cm.id, cm.employee_id, cm.type, cm.amount, cm.period, cm.patient_id,
		       cm.visit_speciality_id, cm.description, cm.created_at,
		       e.name, e.role
		FROM commissions cm
		JOIN employees e ON e.id = cm.employee_id
		WHERE cm.period >= $1 AND cm.period <= $2
	`
	args := []interface{}{utils.FormatDate(startDate), utils.FormatDate(endDate)}
	argIndex := 3

	if employeeID != "" {
		query += fmt.Sprintf(" AND cm.employee_id = $%d", argIndex)
		args = append(args, employeeID)
		argIndex++
	}
	if commissionType != "" {
		if !models.ValidCommissionType(commissionType) {
			security.SendValidationError(c, "Invalid commission type", nil)
			return
		}
		query += fmt.Sprintf(" AND cm.type = $%d", argIndex)
		args = append(args, commissionType)
		argIndex++
	}

	query += " ORDER BY cm.created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var commissions []models.CommissionWithEmployee
	for rows.Next() {
		var cm models.CommissionWithEmployee
		err := rows.Scan(
			&cm.ID, &cm.EmployeeID, &cm.Type, &cm.Amount, &cm.Period, &cm.PatientID,
			&cm.VisitSpecialityID, &cm.Description, &cm.CreatedAt,
			&cm.Employee.Name, &cm.Employee.Role,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		cm.Employee.ID = cm.EmployeeID
		commissions = append(commissions, cm)
	}

	c.JSON(http.StatusOK, commissions)
}

// GetCommissionBreakdown serves the per-type counts and totals for one
// employee over a window. Responses are cached briefly since the same
// breakdown backs several dashboard widgets.
func GetCommissionBreakdown(c *gin.Context) {
	employeeID := c.Param("id")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}
	startStr := utils.FormatDate(startDate)
	endStr := utils.FormatDate(endDate)

	cacheKey := fmt.Sprintf("breakdown:%s:%s:%s", employeeID, startStr, endStr)
	if cached, err := appCache.Get(context.Background(), cacheKey); err == nil {
		var resp breakdownResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

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

	counts, totals, err := ledger.Breakdown(employeeID, startStr, endStr)
	if err != nil {
		security.SendDatabaseError(c, "Failed to compute commission breakdown")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	resp := breakdownResponse{
		EmployeeID: employeeID,
		StartDate:  startStr,
		EndDate:    endStr,
		Counts:     counts,
		Totals:     totals,
		Total:      total,
	}

	if payload, err := json.Marshal(resp); err == nil {
		if err := appCache.Set(context.Background(), cacheKey, string(payload), breakdownTTL); err != nil {
			logger.Warn("breakdown cache write failed", zap.String("employee_id", employeeID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, resp)
}

// CreateManualAdjustment lets an admin credit or debit an employee
// directly. Manual entries skip the duplicate check entirely.
func CreateManualAdjustment(c *gin.Context) {
	var input ManualAdjustmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		security.SendValidationError(c, "Invalid amount", "Amount must be a decimal number")
		return
	}

	period := utils.FormatDate(time.Now().In(utils.BusinessLocation))
	if input.Period != nil && *input.Period != "" {
		parsed, err := utils.ParseDate(*input.Period)
		if err != nil {
			security.SendValidationError(c, "Invalid period format", "Use YYYY-MM-DD format")
			return
		}
		period = utils.FormatDate(parsed)
	}

	var exists bool
	err = config.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND is_active = true)`, input.EmployeeID).Scan(&exists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking employee")
		return
	}
	if !exists {
		security.SendNotFoundError(c, "employee")
		return
	}

	id, err := ledger.Record(commission.Entry{
		EmployeeID:  input.EmployeeID,
		Type:        models.CommissionManualAdjustment,
		Amount:      amount,
		Period:      period,
		Description: input.Description,
	})
	if err != nil {
		security.SendDatabaseError(c, "Failed to record adjustment")
		return
	}

	invalidateBreakdown(input.EmployeeID)
	recordAudit(c.GetString("employee_id"), "manual_adjustment",
		fmt.Sprintf("adjusted employee %s by %s for period %s", input.EmployeeID, amount.String(), period))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Adjustment recorded successfully",
		"id":      id,
	})
}

// DeleteAllCommissions wipes the ledger and zeroes every cached
// counter. Admin-only maintenance escape hatch.
func DeleteAllCommissions(c *gin.Context) {
	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM commissions`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to delete commissions")
		return
	}

	_, err = tx.Exec(`UPDATE employees SET commissions = 0`)
	if err != nil {
		security.SendDatabaseError(c, "Failed to reset employee counters")
		return
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	if err := appCache.InvalidateAll(context.Background()); err != nil {
		logger.Warn("cache flush failed after commission wipe", zap.Error(err))
	}

	deleted, _ := result.RowsAffected()
	recordAudit(c.GetString("employee_id"), "delete_all_commissions",
		fmt.Sprintf("deleted %d ledger rows", deleted))

	c.JSON(http.StatusOK, gin.H{
		"message": "All commissions deleted",
		"deleted": deleted,
	})
}
