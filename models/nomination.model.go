package models

import (
	"time"
)

// Nomination lifecycle
const (
	NominationStatusNew               = "new"
	NominationStatusContacting        = "contacting"
	NominationStatusContactedApproved = "contacted_approved"
	NominationStatusContactedRejected = "contacted_rejected"
)

type Nomination struct {
	ID                 string     `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Phone              string     `json:"phone" db:"phone"`
	NominatedByID      string     `json:"nominated_by_id" db:"nominated_by_id"`
	Status             string     `json:"status" db:"status"`
	ConvertedPatientID *string    `json:"converted_patient_id" db:"converted_patient_id"`
	Notes              *string    `json:"notes" db:"notes"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at" db:"updated_at"`
}
