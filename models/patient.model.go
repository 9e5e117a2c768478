package models

import (
	"time"
)

type Patient struct {
	ID            string     `json:"id" db:"id"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Phone         *string    `json:"phone" db:"phone"`
	DateOfBirth   *time.Time `json:"date_of_birth" db:"date_of_birth"`
	NationalID    *string    `json:"national_id" db:"national_id"`
	Nationality   *string    `json:"nationality" db:"nationality"`
	Gender        *string    `json:"gender" db:"gender"`
	SalesPersonID *string    `json:"sales_person_id" db:"sales_person_id"`
	CreatedBy     *string    `json:"created_by" db:"created_by"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at" db:"updated_at"`
}

type PatientInfo struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      *string `json:"phone"`
	NationalID *string `json:"national_id"`
}
