// Package classification is the single shared implementation of visit
// classification and attribution. Every endpoint that needs to know
// whether a visit was a new patient, an existing patient, or the result
// of a follow-up task goes through ClassifyAndAttribute - the rules live
// nowhere else.
package classification

import (
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
)

// VisitContext carries everything the classifier needs, pre-fetched by
// ContextLoader. Keeping the classifier pure keeps it testable without a
// database.
type VisitContext struct {
	// A same-calendar-day appointment for the visit's patient+hospital
	// that was spawned by a follow-up task.
	HasFollowUpAppointment bool
	// The coordinator who owned that follow-up task.
	FollowUpAssigneeID *string

	// Any other visit for the patient with an earlier (visit_date, created_at).
	HasEarlierVisit bool
	// Same, restricted to the visit's hospital.
	HasEarlierVisitAtHospital bool

	SalesID        *string // visit.sales_id
	PatientSalesID *string // patient.sales_person_id
	CoordinatorID  *string // visit.coordinator_id
}

// Attribution is the classifier output: the visit category and the
// employee credited for it.
type Attribution struct {
	Category   string
	EmployeeID *string
	// UsedFallback flags the data-integrity case where an existing-patient
	// visit had no coordinator and was attributed to sales instead.
	// Callers must log it; it is never silently dropped.
	UsedFallback bool
}

// ClassifyAndAttribute applies the classification rules in order:
//
//  1. A same-day appointment spawned by a follow-up task wins outright,
//     even if the visit would otherwise qualify as new or existing.
//  2. First visit ever, or first visit to this hospital, is a new patient,
//     credited to the visit's sales person (falling back to the patient's
//     assigned sales person).
//  3. Everything else is an existing patient, credited to the coordinator.
//
// Visits with no specialities and legacy visits with no appointment row
// classify the same way - only the inputs above matter.
func ClassifyAndAttribute(ctx VisitContext) Attribution {
	if ctx.HasFollowUpAppointment {
		employee := ctx.FollowUpAssigneeID
		if employee == nil {
			employee = ctx.CoordinatorID
		}
		return Attribution{
			Category:   models.VisitCategoryFollowUpTask,
			EmployeeID: employee,
		}
	}

	firstEver := !ctx.HasEarlierVisit
	firstToHospital := !ctx.HasEarlierVisitAtHospital

	if firstEver || firstToHospital {
		employee := ctx.SalesID
		if employee == nil {
			employee = ctx.PatientSalesID
		}
		return Attribution{
			Category:   models.VisitCategoryNewPatient,
			EmployeeID: employee,
		}
	}

	if ctx.CoordinatorID != nil {
		return Attribution{
			Category:   models.VisitCategoryExistingPatient,
			EmployeeID: ctx.CoordinatorID,
		}
	}

	// No coordinator on an existing-patient visit is a data problem;
	// attribute to sales so the visit still counts, and flag it.
	employee := ctx.SalesID
	if employee == nil {
		employee = ctx.PatientSalesID
	}
	return Attribution{
		Category:     models.VisitCategoryExistingPatient,
		EmployeeID:   employee,
		UsedFallback: true,
	}
}
