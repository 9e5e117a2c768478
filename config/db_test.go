package config

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryTransientFailureRecovers(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		if calls < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryTransientFailureExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return errors.New("dial tcp: connection refused")
	})

	assert.Error(t, err)
	assert.Equal(t, retryAttempts, calls)
}

func TestWithRetryNonTransientFailsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return errors.New("pq: null value in column violates not-null constraint")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryPreservesNoRows(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return sql.ErrNoRows
	})

	assert.Equal(t, sql.ErrNoRows, err)
	assert.Equal(t, 1, calls)
}

func TestDatabaseQueryRowRetriesScan(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT name FROM hospitals`).
		WillReturnError(errors.New("write: broken pipe"))
	mock.ExpectQuery(`SELECT name FROM hospitals`).
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("City Clinic"))

	var name string
	scanErr := NewDatabase(db).QueryRow(`SELECT name FROM hospitals WHERE id = $1`, "h1").Scan(&name)

	assert.NoError(t, scanErr)
	assert.Equal(t, "City Clinic", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseExecDoesNotRetryConstraintErrors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE employees`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "employees_email_key"`))

	_, execErr := NewDatabase(db).Exec(`UPDATE employees SET email = $1 WHERE id = $2`, "a@b.c", "e1")

	assert.Error(t, execErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
