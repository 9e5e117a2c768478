package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Xaeon-Innovation/Medflow-sub000/models"
)

func completeTaskRequest(taskID string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/follow-up/tasks/"+taskID+"/complete", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func taskRow(taskStatus, appointmentStatus string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "patient_id", "hospital_id", "assigned_to_id", "task_status",
		"appointment_id", "appointment_status", "scheduled_date",
	}).AddRow("task-1", "patient-1", "hospital-1", "coord-1",
		taskStatus, "appointment-1", appointmentStatus, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
}

func TestCompleteFollowUpTaskRejectsConvertedAppointment(t *testing.T) {
	mock := setupHandlerTest(t)

	mock.ExpectQuery(`FROM follow_up_tasks t`).
		WithArgs("task-1").
		WillReturnRows(taskRow(models.TaskStatusApproved, "converted"))

	router := gin.New()
	router.PUT("/follow-up/tasks/:id/complete", asEmployee("admin-1", "admin"), CompleteFollowUpTask)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, completeTaskRequest("task-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteFollowUpTaskRejectsUnapprovedTask(t *testing.T) {
	mock := setupHandlerTest(t)

	mock.ExpectQuery(`FROM follow_up_tasks t`).
		WithArgs("task-1").
		WillReturnRows(taskRow(models.TaskStatusPending, "scheduled"))

	router := gin.New()
	router.PUT("/follow-up/tasks/:id/complete", asEmployee("admin-1", "admin"), CompleteFollowUpTask)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, completeTaskRequest("task-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot be completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
