// Package commission owns the append-only commission ledger. One row is
// one credit to one employee for one qualifying business event.
package commission

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
)

// Entry is a ledger row to be recorded.
type Entry struct {
	EmployeeID        string
	Type              string
	Amount            decimal.Decimal
	Period            string // YYYY-MM-DD
	PatientID         *string
	VisitSpecialityID *string
	Description       *string
}

// DefaultAmount is the credit value for the standard event types.
// MANUAL_ADJUSTMENT entries carry whatever amount the admin supplied.
var DefaultAmount = decimal.NewFromInt(1)

type Ledger struct {
	DB *config.Database
}

func NewLedger(db *config.Database) *Ledger {
	return &Ledger{DB: db}
}

// Exists reports whether an equivalent entry is already recorded.
// Idempotency is caller discipline: there is no uniqueness constraint,
// so concurrent retries of the same event can still double-credit. That
// race is documented, not fixed here.
func (l *Ledger) Exists(employeeID, commissionType, period string, patientID, visitSpecialityID *string) (bool, error) {
	var exists bool
	err := l.DB.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM commissions
			WHERE employee_id = $1 AND type = $2 AND period = $3
			AND ($4::uuid IS NULL OR patient_id = $4)
			AND ($5::uuid IS NULL OR visit_speciality_id = $5)
		)
	`, employeeID, commissionType, period, patientID, visitSpecialityID).Scan(&exists)
	return exists, err
}

// Record appends the entry and increments the employee's cached
// commissions counter in one transaction. Both succeed or neither does.
func (l *Ledger) Record(entry Entry) (string, error) {
	tx, err := l.DB.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO commissions (id, employee_id, type, amount, period, patient_id, visit_speciality_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, entry.EmployeeID, entry.Type, entry.Amount, entry.Period,
		entry.PatientID, entry.VisitSpecialityID, entry.Description)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(`
		UPDATE employees SET commissions = commissions + 1 WHERE id = $1
	`, entry.EmployeeID)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecordOnce is the check-then-create used by every event trigger.
// Returns the new id and true when a row was written, "" and false when
// an equivalent entry already existed.
func (l *Ledger) RecordOnce(entry Entry) (string, bool, error) {
	exists, err := l.Exists(entry.EmployeeID, entry.Type, entry.Period, entry.PatientID, entry.VisitSpecialityID)
	if err != nil {
		return "", false, err
	}
	if exists {
		return "", false, nil
	}

	id, err := l.Record(entry)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// CountByType returns the number of ledger rows of one type for an
// employee inside [startPeriod, endPeriod] (inclusive, YYYY-MM-DD).
func (l *Ledger) CountByType(employeeID, commissionType, startPeriod, endPeriod string) (int, error) {
	var count int
	err := l.DB.QueryRow(`
		SELECT COUNT(*) FROM commissions
		WHERE employee_id = $1 AND type = $2 AND period >= $3 AND period <= $4
	`, employeeID, commissionType, startPeriod, endPeriod).Scan(&count)
	return count, err
}

// Breakdown returns per-type counts and amount totals for an employee
// inside the period window.
func (l *Ledger) Breakdown(employeeID, startPeriod, endPeriod string) (map[string]int, map[string]decimal.Decimal, error) {
	rows, err := l.DB.Query(`
		SELECT type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM commissions
		WHERE employee_id = $1 AND period >= $2 AND period <= $3
		GROUP BY type
	`, employeeID, startPeriod, endPeriod)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	totals := make(map[string]decimal.Decimal)
	for _, t := range []string{
		models.CommissionPatientCreation,
		models.CommissionFollowUp,
		models.CommissionVisitSpecialityAdd,
		models.CommissionNominationConversion,
		models.CommissionManualAdjustment,
	} {
		counts[t] = 0
		totals[t] = decimal.Zero
	}
	for rows.Next() {
		var commissionType string
		var count int
		var total decimal.Decimal
		if err := rows.Scan(&commissionType, &count, &total); err != nil {
			return nil, nil, err
		}
		counts[commissionType] = count
		totals[commissionType] = total
	}
	return counts, totals, rows.Err()
}
