package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const adjustedEmployeeID = "3f0e8a1c-5b2d-4e7f-9a6b-1c2d3e4f5a6b"

func adjustmentRequest() *http.Request {
	body := `{"employee_id": "` + adjustedEmployeeID + `", "amount": "2.5", "period": "2025-03-15"}`
	req := httptest.NewRequest(http.MethodPost, "/commissions/adjustments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func expectAdjustmentRecorded(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM employees WHERE id`).
		WithArgs(adjustedEmployeeID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees SET commissions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestCreateManualAdjustmentWritesAuditRow(t *testing.T) {
	mock := setupHandlerTest(t)

	expectAdjustmentRecorded(mock)
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("admin-1", "manual_adjustment", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.POST("/commissions/adjustments", asEmployee("admin-1", "admin"), CreateManualAdjustment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adjustmentRequest())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateManualAdjustmentSucceedsWhenAuditWriteFails(t *testing.T) {
	mock := setupHandlerTest(t)

	expectAdjustmentRecorded(mock)
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(errors.New(`pq: relation "audit_log" does not exist`))

	router := gin.New()
	router.POST("/commissions/adjustments", asEmployee("admin-1", "admin"), CreateManualAdjustment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, adjustmentRequest())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllCommissionsWritesAuditRow(t *testing.T) {
	mock := setupHandlerTest(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM commissions`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`UPDATE employees SET commissions = 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("admin-1", "delete_all_commissions", "deleted 4 ledger rows").
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.DELETE("/commissions", asEmployee("admin-1", "admin"), DeleteAllCommissions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/commissions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":4`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
