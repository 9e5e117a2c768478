package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/targets"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Reporting Controllers
type HospitalSummary struct {
	HospitalID       string `json:"hospital_id"`
	HospitalName     string `json:"hospital_name"`
	TotalVisits      int    `json:"total_visits"`
	NewPatients      int    `json:"new_patients"`
	ExistingPatients int    `json:"existing_patients"`
	FollowUps        int    `json:"follow_ups"`
}

// GetReportsSummary aggregates classified visit counts per hospital
// over the requested window.
func GetReportsSummary(c *gin.Context) {
	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}
	end := endDate.AddDate(0, 0, 1)

	rows, err := config.DB.Query(`
		SELECT v.id, v.patient_id, v.hospital_id, v.visit_date, v.sales_id, v.coordinator_id, v.created_at,
		       h.name
		FROM visits v
		JOIN hospitals h ON h.id = v.hospital_id
		WHERE v.visit_date >= $1 AND v.visit_date < $2
		ORDER BY v.visit_date, v.created_at
	`, startDate, end)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	type visitRow struct {
		visit        models.Visit
		hospitalName string
	}
	var visitRows []visitRow
	for rows.Next() {
		var vr visitRow
		err := rows.Scan(&vr.visit.ID, &vr.visit.PatientID, &vr.visit.HospitalID, &vr.visit.VisitDate,
			&vr.visit.SalesID, &vr.visit.CoordinatorID, &vr.visit.CreatedAt, &vr.hospitalName)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		visitRows = append(visitRows, vr)
	}
	if err := rows.Err(); err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}

	summaries := map[string]*HospitalSummary{}
	var order []string
	for _, vr := range visitRows {
		summary, found := summaries[vr.visit.HospitalID]
		if !found {
			summary = &HospitalSummary{HospitalID: vr.visit.HospitalID, HospitalName: vr.hospitalName}
			summaries[vr.visit.HospitalID] = summary
			order = append(order, vr.visit.HospitalID)
		}
		summary.TotalVisits++

		attribution, err := loader.Classify(vr.visit)
		if err != nil {
			security.SendDatabaseError(c, "Failed to classify visits")
			return
		}
		switch attribution.Category {
		case models.VisitCategoryNewPatient:
			summary.NewPatients++
		case models.VisitCategoryExistingPatient:
			summary.ExistingPatients++
		case models.VisitCategoryFollowUpTask:
			summary.FollowUps++
		}
	}

	result := make([]HospitalSummary, 0, len(order))
	for _, hospitalID := range order {
		result = append(result, *summaries[hospitalID])
	}

	c.JSON(http.StatusOK, gin.H{
		"start_date": utils.FormatDate(startDate),
		"end_date":   utils.FormatDate(endDate),
		"hospitals":  result,
	})
}

// GetTeamAnalysis rolls up per-member stats for one team lead.
func GetTeamAnalysis(c *gin.Context) {
	teamLeadID := c.Param("id")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	var leadExists bool
	err := config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND role = 'team_lead' AND is_active = true)
	`, teamLeadID).Scan(&leadExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking team lead")
		return
	}
	if !leadExists {
		security.SendNotFoundError(c, "team lead")
		return
	}

	members, err := teamMembers(teamLeadID)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}

	memberStats := make([]targets.EmployeeStats, 0, len(members))
	team := targets.EmployeeStats{}
	for _, member := range members {
		stats, err := calculator.Stats(member, startDate, endDate.AddDate(0, 0, 1))
		if err != nil {
			security.SendDatabaseError(c, "Failed to compute member stats")
			return
		}
		memberStats = append(memberStats, stats)

		team.NewPatients += stats.NewPatients
		team.ExistingPatients += stats.ExistingPatients
		team.FollowUps += stats.FollowUps
		team.Specialties += stats.Specialties
		team.Nominations += stats.Nominations
		team.TotalCommissions += stats.TotalCommissions
	}

	c.JSON(http.StatusOK, gin.H{
		"team_lead_id": teamLeadID,
		"start_date":   utils.FormatDate(startDate),
		"end_date":     utils.FormatDate(endDate),
		"members":      memberStats,
		"totals": gin.H{
			"new_patients":      team.NewPatients,
			"existing_patients": team.ExistingPatients,
			"follow_ups":        team.FollowUps,
			"specialties":       team.Specialties,
			"nominations":       team.Nominations,
			"total_commissions": team.TotalCommissions,
		},
	})
}

func teamMembers(teamLeadID string) ([]models.Employee, error) {
	rows, err := config.DB.Query(`
		SELECT id, name, role, commissions FROM employees
		WHERE team_lead_id = $1 AND is_active = true
		ORDER BY name
	`, teamLeadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Employee
	for rows.Next() {
		var member models.Employee
		if err := rows.Scan(&member.ID, &member.Name, &member.Role, &member.Commissions); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// ExportSummary streams the per-employee stats for the window as an
// Excel workbook.
func ExportSummary(c *gin.Context) {
	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	rows, err := config.DB.Query(`
		SELECT id, name, role, commissions FROM employees WHERE is_active = true ORDER BY name
	`)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var employee models.Employee
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Role, &employee.Commissions); err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Employee", "Role", "New Patients", "Existing Patients", "Follow-ups", "Specialties", "Nominations", "Total Commissions"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, employee := range employees {
		stats, err := calculator.Stats(employee, startDate, endDate.AddDate(0, 0, 1))
		if err != nil {
			security.SendDatabaseError(c, "Failed to compute employee stats")
			return
		}

		values := []interface{}{
			stats.Name, stats.Role, stats.NewPatients, stats.ExistingPatients,
			stats.FollowUps, stats.Specialties, stats.Nominations, stats.TotalCommissions,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("summary_%s_%s.xlsx", utils.FormatDate(startDate), utils.FormatDate(endDate))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to write workbook", zap.Error(err))
	}
}
