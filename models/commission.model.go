package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission types - one per qualifying business event
const (
	CommissionPatientCreation      = "PATIENT_CREATION"
	CommissionFollowUp             = "FOLLOW_UP"
	CommissionVisitSpecialityAdd   = "VISIT_SPECIALITY_ADDITION"
	CommissionNominationConversion = "NOMINATION_CONVERSION"
	CommissionManualAdjustment     = "MANUAL_ADJUSTMENT"
)

// Commission is an immutable ledger entry. Rows are never updated;
// corrections go through MANUAL_ADJUSTMENT entries.
type Commission struct {
	ID                string          `json:"id" db:"id"`
	EmployeeID        string          `json:"employee_id" db:"employee_id"`
	Type              string          `json:"type" db:"type"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Period            string          `json:"period" db:"period"` // YYYY-MM-DD
	PatientID         *string         `json:"patient_id" db:"patient_id"`
	VisitSpecialityID *string         `json:"visit_speciality_id" db:"visit_speciality_id"`
	Description       *string         `json:"description" db:"description"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

type CommissionWithEmployee struct {
	Commission
	Employee EmployeeInfo `json:"employee"`
}

// ValidCommissionType reports whether t is one of the ledger types.
func ValidCommissionType(t string) bool {
	switch t {
	case CommissionPatientCreation, CommissionFollowUp, CommissionVisitSpecialityAdd,
		CommissionNominationConversion, CommissionManualAdjustment:
		return true
	}
	return false
}
