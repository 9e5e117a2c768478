package models

import (
	"time"
)

// Follow-up task lifecycle
const (
	TaskStatusPending   = "pending"
	TaskStatusPostponed = "postponed"
	TaskStatusApproved  = "approved"
	TaskStatusRejected  = "rejected"
)

type FollowUpTask struct {
	ID            string     `json:"id" db:"id"`
	PatientID     string     `json:"patient_id" db:"patient_id"`
	HospitalID    string     `json:"hospital_id" db:"hospital_id"`
	AssignedToID  string     `json:"assigned_to_id" db:"assigned_to_id"`
	DueDate       time.Time  `json:"due_date" db:"due_date"`
	Status        string     `json:"status" db:"status"`
	Reason        *string    `json:"reason" db:"reason"`
	AppointmentID *string    `json:"appointment_id" db:"appointment_id"`
	CreatedBy     *string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at" db:"updated_at"`
}

type FollowUpTaskWithDetails struct {
	FollowUpTask
	Patient    PatientInfo  `json:"patient"`
	AssignedTo EmployeeInfo `json:"assigned_to"`
}
