package targets

import (
	"time"

	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// EmployeeStats is the merged view every reporting endpoint serves.
type EmployeeStats struct {
	EmployeeID       string `json:"employee_id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	NewPatients      int    `json:"new_patients"`
	ExistingPatients int    `json:"existing_patients"`
	FollowUps        int    `json:"follow_ups"`
	Specialties      int    `json:"specialties"`
	Nominations      int    `json:"nominations"`
	TotalCommissions int    `json:"total_commissions"`
}

// Stats reconciles the two sources of truth once, for every aggregator:
//
//   - new_patients and existing_patients come from live visit
//     classification, so patient reassignment moves the credit with the
//     patient instead of staying frozen in old commission rows;
//   - follow-ups, specialties and nominations come from commission rows,
//     which are authoritative for coordinator work.
//
// The four reporting endpoints (commission breakdown, employee
// performance, summary, team analysis) all call this instead of
// re-deriving the split themselves.
func (c *Calculator) Stats(employee models.Employee, start, end time.Time) (EmployeeStats, error) {
	stats := EmployeeStats{
		EmployeeID: employee.ID,
		Name:       employee.Name,
		Role:       employee.Role,
	}

	visitCounts, err := c.VisitCounts(employee.ID, start, end)
	if err != nil {
		return stats, err
	}
	stats.NewPatients = visitCounts[models.VisitCategoryNewPatient]
	stats.ExistingPatients = visitCounts[models.VisitCategoryExistingPatient]

	commissionCounts, _, err := c.Ledger.Breakdown(employee.ID,
		utils.FormatDate(start), utils.FormatDate(end.AddDate(0, 0, -1)))
	if err != nil {
		return stats, err
	}
	stats.FollowUps = commissionCounts[models.CommissionFollowUp]
	stats.Specialties = commissionCounts[models.CommissionVisitSpecialityAdd]
	stats.Nominations = commissionCounts[models.CommissionNominationConversion]
	for _, count := range commissionCounts {
		stats.TotalCommissions += count
	}

	return stats, nil
}
