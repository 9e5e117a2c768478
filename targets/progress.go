// Package targets computes target progress and the per-employee stats
// shared by the reporting endpoints.
package targets

import (
	"time"

	"github.com/Xaeon-Innovation/Medflow-sub000/classification"
	"github.com/Xaeon-Innovation/Medflow-sub000/commission"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

type Calculator struct {
	DB     *config.Database
	Loader *classification.ContextLoader
	Ledger *commission.Ledger
}

func NewCalculator(db *config.Database) *Calculator {
	return &Calculator{
		DB:     db,
		Loader: classification.NewContextLoader(db),
		Ledger: commission.NewLedger(db),
	}
}

// ComputeProgress derives percentage and status from goal and current.
// Percentage is clamped to 100 even when current overshoots the goal.
func ComputeProgress(goal, current int) models.TargetProgress {
	progress := models.TargetProgress{
		Goal:    goal,
		Current: current,
		Status:  models.TargetStatusNotStarted,
	}

	if goal > 0 {
		progress.Percentage = float64(current) / float64(goal) * 100
		if progress.Percentage > 100 {
			progress.Percentage = 100
		}
	}

	if progress.Percentage >= 100 && goal > 0 {
		progress.Status = models.TargetStatusCompleted
	} else if current > 0 {
		progress.Status = models.TargetStatusInProgress
	}
	return progress
}

// Progress resolves a target's current value and computes its progress.
//
// new_patients targets re-classify the assignee's visits live instead of
// counting PATIENT_CREATION rows: commission rows freeze the sales person
// at creation time, and reassigned patients must follow their new owner.
// The other non-custom categories count commission rows - the ledger is
// the source of truth for coordinator work.
func (c *Calculator) Progress(target models.Target) (models.TargetProgress, error) {
	var current int
	var err error

	switch target.Category {
	case models.TargetCategoryNewPatients:
		current, err = c.CountClassifiedVisits(target.AssignedToID, models.VisitCategoryNewPatient, target.StartDate, target.EndDate.AddDate(0, 0, 1))
	case models.TargetCategoryFollowUpPatients:
		current, err = c.Ledger.CountByType(target.AssignedToID, models.CommissionFollowUp,
			utils.FormatDate(target.StartDate), utils.FormatDate(target.EndDate))
	case models.TargetCategorySpecialties:
		current, err = c.Ledger.CountByType(target.AssignedToID, models.CommissionVisitSpecialityAdd,
			utils.FormatDate(target.StartDate), utils.FormatDate(target.EndDate))
	case models.TargetCategoryNominations:
		current, err = c.Ledger.CountByType(target.AssignedToID, models.CommissionNominationConversion,
			utils.FormatDate(target.StartDate), utils.FormatDate(target.EndDate))
	default: // custom
		current = target.CurrentValue
	}
	if err != nil {
		return models.TargetProgress{}, err
	}

	return ComputeProgress(target.TargetValue, current), nil
}

// CountClassifiedVisits classifies every candidate visit in [start, end)
// and counts the ones of the given category attributed to the employee.
func (c *Calculator) CountClassifiedVisits(employeeID, category string, start, end time.Time) (int, error) {
	counts, err := c.VisitCounts(employeeID, start, end)
	if err != nil {
		return 0, err
	}
	return counts[category], nil
}

// VisitCounts returns per-category counts of visits attributed to the
// employee in [start, end). Candidate visits are any where the employee
// appears as visit sales, coordinator, or the patient's current sales
// person - the latter is what makes reassignment take effect.
func (c *Calculator) VisitCounts(employeeID string, start, end time.Time) (map[string]int, error) {
	rows, err := c.DB.Query(`
		SELECT v.id, v.patient_id, v.hospital_id, v.visit_date, v.sales_id, v.coordinator_id, v.created_at
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		WHERE v.visit_date >= $2 AND v.visit_date < $3
		AND (v.sales_id = $1 OR v.coordinator_id = $1 OR p.sales_person_id = $1)
		ORDER BY v.visit_date, v.created_at
	`, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate,
			&visit.SalesID, &visit.CoordinatorID, &visit.CreatedAt); err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := map[string]int{
		models.VisitCategoryNewPatient:      0,
		models.VisitCategoryExistingPatient: 0,
		models.VisitCategoryFollowUpTask:    0,
	}
	for _, visit := range visits {
		attribution, err := c.Loader.Classify(visit)
		if err != nil {
			return nil, err
		}
		if attribution.EmployeeID != nil && *attribution.EmployeeID == employeeID {
			counts[attribution.Category]++
		}
	}
	return counts, nil
}
