package models

import (
	"time"
)

// Employee roles
const (
	RoleAdmin       = "admin"
	RoleSales       = "sales"
	RoleCoordinator = "coordinator"
	RoleDataEntry   = "data_entry"
	RoleFinance     = "finance"
	RoleTeamLead    = "team_lead"
)

type Employee struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone" db:"phone"`
	Role         string     `json:"role" db:"role"`
	TeamLeadID   *string    `json:"team_lead_id" db:"team_lead_id"`
	Commissions  int        `json:"commissions" db:"commissions"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeInfo is the trimmed shape embedded in related responses
type EmployeeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
