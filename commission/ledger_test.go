package commission

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
)

func newMockLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLedger(config.NewDatabase(db)), mock
}

func TestRecordWritesRowAndIncrementsCounter(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET commissions = commissions \+ 1`).
		WithArgs("emp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := ledger.Record(Entry{
		EmployeeID: "emp-1",
		Type:       "PATIENT_CREATION",
		Amount:     DefaultAmount,
		Period:     "2025-03-15",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackWhenCounterUpdateFails(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET commissions = commissions \+ 1`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := ledger.Record(Entry{
		EmployeeID: "emp-1",
		Type:       "FOLLOW_UP",
		Amount:     DefaultAmount,
		Period:     "2025-03-15",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOnceSkipsExistingEntry(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	id, created, err := ledger.RecordOnce(Entry{
		EmployeeID: "emp-1",
		Type:       "PATIENT_CREATION",
		Amount:     DefaultAmount,
		Period:     "2025-03-15",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOnceWritesWhenNoEntryExists(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET commissions = commissions \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, created, err := ledger.RecordOnce(Entry{
		EmployeeID: "emp-1",
		Type:       "NOMINATION_CONVERSION",
		Amount:     DefaultAmount,
		Period:     "2025-03-15",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByType(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM commissions`).
		WithArgs("emp-1", "FOLLOW_UP", "2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := ledger.CountByType("emp-1", "FOLLOW_UP", "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestBreakdownSeedsAllTypes(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery(`GROUP BY type`).
		WithArgs("emp-1", "2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"type", "count", "total"}).
			AddRow("PATIENT_CREATION", 3, "3").
			AddRow("MANUAL_ADJUSTMENT", 1, "-2.5"))

	counts, totals, err := ledger.Breakdown("emp-1", "2025-03-01", "2025-03-31")
	require.NoError(t, err)

	assert.Len(t, counts, 5)
	assert.Equal(t, 3, counts["PATIENT_CREATION"])
	assert.Equal(t, 1, counts["MANUAL_ADJUSTMENT"])
	assert.Equal(t, 0, counts["FOLLOW_UP"])

	assert.True(t, totals["PATIENT_CREATION"].Equal(decimal.NewFromInt(3)))
	assert.True(t, totals["MANUAL_ADJUSTMENT"].Equal(decimal.RequireFromString("-2.5")))
	assert.True(t, totals["FOLLOW_UP"].IsZero())
}
