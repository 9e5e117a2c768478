package models

import (
	"time"
)

// Visit categories. Not stored on the row - recomputed from sibling visits
// and the linked appointment on every read.
const (
	VisitCategoryNewPatient      = "new_patient"
	VisitCategoryExistingPatient = "existing_patient"
	VisitCategoryFollowUpTask    = "follow_up_task"
)

type Visit struct {
	ID            string     `json:"id" db:"id"`
	PatientID     string     `json:"patient_id" db:"patient_id"`
	HospitalID    string     `json:"hospital_id" db:"hospital_id"`
	VisitDate     time.Time  `json:"visit_date" db:"visit_date"`
	SalesID       *string    `json:"sales_id" db:"sales_id"`
	CoordinatorID *string    `json:"coordinator_id" db:"coordinator_id"`
	AppointmentID *string    `json:"appointment_id" db:"appointment_id"`
	Status        string     `json:"status" db:"status"`
	Notes         *string    `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at" db:"updated_at"`
}

type VisitSpeciality struct {
	ID            string     `json:"id" db:"id"`
	VisitID       string     `json:"visit_id" db:"visit_id"`
	Speciality    string     `json:"speciality" db:"speciality"`
	DoctorName    *string    `json:"doctor_name" db:"doctor_name"`
	ScheduledTime *time.Time `json:"scheduled_time" db:"scheduled_time"`
	Details       *string    `json:"details" db:"details"`
	AddedBy       *string    `json:"added_by" db:"added_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Extended models with related data
type VisitWithDetails struct {
	Visit
	Category     string            `json:"category"`
	AttributedTo *string           `json:"attributed_to"`
	Patient      PatientInfo       `json:"patient"`
	Hospital     HospitalInfo      `json:"hospital"`
	Specialities []VisitSpeciality `json:"specialities"`
}
