package models

import (
	"time"
)

// Target period types
const (
	TargetTypeDaily   = "daily"
	TargetTypeWeekly  = "weekly"
	TargetTypeMonthly = "monthly"
)

// Target categories
const (
	TargetCategoryNewPatients      = "new_patients"
	TargetCategoryFollowUpPatients = "follow_up_patients"
	TargetCategorySpecialties      = "specialties"
	TargetCategoryNominations      = "nominations"
	TargetCategoryCustom           = "custom"
)

// Target progress statuses
const (
	TargetStatusCompleted  = "completed"
	TargetStatusInProgress = "in_progress"
	TargetStatusNotStarted = "not_started"
)

type Target struct {
	ID           string     `json:"id" db:"id"`
	AssignedToID string     `json:"assigned_to_id" db:"assigned_to_id"`
	Type         string     `json:"type" db:"type"`
	Category     string     `json:"category" db:"category"`
	TargetValue  int        `json:"target_value" db:"target_value"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      time.Time  `json:"end_date" db:"end_date"`
	CurrentValue int        `json:"current_value" db:"current_value"` // authoritative only for custom
	CreatedBy    *string    `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at" db:"updated_at"`
}

type TargetProgress struct {
	Goal       int     `json:"goal"`
	Current    int     `json:"current"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

type TargetWithProgress struct {
	Target
	Progress TargetProgress `json:"progress"`
}

func ValidTargetType(t string) bool {
	return t == TargetTypeDaily || t == TargetTypeWeekly || t == TargetTypeMonthly
}

func ValidTargetCategory(c string) bool {
	switch c {
	case TargetCategoryNewPatients, TargetCategoryFollowUpPatients,
		TargetCategorySpecialties, TargetCategoryNominations, TargetCategoryCustom:
		return true
	}
	return false
}
