package classification

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

func newMockLoader(t *testing.T) (*ContextLoader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContextLoader(config.NewDatabase(db)), mock
}

func testVisit() models.Visit {
	visitDate, _ := utils.ParseDate("2025-03-15")
	return models.Visit{
		ID:         "visit-1",
		PatientID:  "patient-1",
		HospitalID: "hospital-1",
		VisitDate:  visitDate,
		CreatedAt:  visitDate.Add(9 * time.Hour),
	}
}

func TestLoadFirstVisitEver(t *testing.T) {
	loader, mock := newMockLoader(t)
	visit := testVisit()

	mock.ExpectQuery(`JOIN follow_up_tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT sales_person_id`).
		WillReturnRows(sqlmock.NewRows([]string{"sales_person_id"}).AddRow("sales-9"))

	ctx, err := loader.Load(visit)
	require.NoError(t, err)

	assert.False(t, ctx.HasFollowUpAppointment)
	assert.False(t, ctx.HasEarlierVisit)
	assert.False(t, ctx.HasEarlierVisitAtHospital)
	require.NotNil(t, ctx.PatientSalesID)
	assert.Equal(t, "sales-9", *ctx.PatientSalesID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFollowUpAppointmentSameDay(t *testing.T) {
	loader, mock := newMockLoader(t)
	visit := testVisit()

	mock.ExpectQuery(`JOIN follow_up_tasks`).
		WithArgs("patient-1", "hospital-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}).AddRow("coord-3"))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT sales_person_id`).
		WillReturnRows(sqlmock.NewRows([]string{"sales_person_id"}).AddRow(nil))

	ctx, err := loader.Load(visit)
	require.NoError(t, err)

	assert.True(t, ctx.HasFollowUpAppointment)
	require.NotNil(t, ctx.FollowUpAssigneeID)
	assert.Equal(t, "coord-3", *ctx.FollowUpAssigneeID)
	assert.Nil(t, ctx.PatientSalesID)

	got := ClassifyAndAttribute(ctx)
	assert.Equal(t, models.VisitCategoryFollowUpTask, got.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEarlierVisitAtOtherHospitalOnly(t *testing.T) {
	loader, mock := newMockLoader(t)
	visit := testVisit()
	visit.SalesID = strPtr("sales-1")

	mock.ExpectQuery(`JOIN follow_up_tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT sales_person_id`).
		WillReturnRows(sqlmock.NewRows([]string{"sales_person_id"}).AddRow(nil))

	ctx, err := loader.Load(visit)
	require.NoError(t, err)

	assert.True(t, ctx.HasEarlierVisit)
	assert.False(t, ctx.HasEarlierVisitAtHospital)

	got := ClassifyAndAttribute(ctx)
	assert.Equal(t, models.VisitCategoryNewPatient, got.Category)
	require.NotNil(t, got.EmployeeID)
	assert.Equal(t, "sales-1", *got.EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyCoordinatorFallbackWarns(t *testing.T) {
	loader, mock := newMockLoader(t)
	core, logs := observer.New(zap.WarnLevel)
	loader.Log = zap.New(core)

	visit := testVisit()
	visit.SalesID = strPtr("sales-1")

	mock.ExpectQuery(`JOIN follow_up_tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT sales_person_id`).
		WillReturnRows(sqlmock.NewRows([]string{"sales_person_id"}).AddRow(nil))

	got, err := loader.Classify(visit)
	require.NoError(t, err)

	assert.Equal(t, models.VisitCategoryExistingPatient, got.Category)
	assert.True(t, got.UsedFallback)

	entries := logs.FilterMessage("existing-patient visit has no coordinator, attributed to sales").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "visit-1", entries[0].ContextMap()["visit_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
