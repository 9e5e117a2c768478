package models

import (
	"time"
)

type Appointment struct {
	ID                        string     `json:"id" db:"id"`
	PatientID                 string     `json:"patient_id" db:"patient_id"`
	HospitalID                string     `json:"hospital_id" db:"hospital_id"`
	ScheduledDate             time.Time  `json:"scheduled_date" db:"scheduled_date"`
	Speciality                *string    `json:"speciality" db:"speciality"`
	DoctorName                *string    `json:"doctor_name" db:"doctor_name"`
	Status                    string     `json:"status" db:"status"`
	IsNewPatientAtCreation    bool       `json:"is_new_patient_at_creation" db:"is_new_patient_at_creation"`
	CreatedFromFollowUpTaskID *string    `json:"created_from_follow_up_task_id" db:"created_from_follow_up_task_id"`
	CreatedBy                 *string    `json:"created_by" db:"created_by"`
	Notes                     *string    `json:"notes" db:"notes"`
	CreatedAt                 time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                 *time.Time `json:"updated_at" db:"updated_at"`
}

type AppointmentWithDetails struct {
	Appointment
	Patient  PatientInfo  `json:"patient"`
	Hospital HospitalInfo `json:"hospital"`
}
