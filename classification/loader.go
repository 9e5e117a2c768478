package classification

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Querier is satisfied by *config.Database and config.WrapTx.
type Querier interface {
	QueryRow(query string, args ...interface{}) config.Scanner
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// ContextLoader fetches the prior-visit and appointment state a visit
// classifies against.
type ContextLoader struct {
	DB  Querier
	Log *zap.Logger
}

func NewContextLoader(db Querier) *ContextLoader {
	return &ContextLoader{DB: db, Log: zap.NewNop()}
}

// Load builds the VisitContext for a visit row.
func (l *ContextLoader) Load(visit models.Visit) (VisitContext, error) {
	ctx := VisitContext{
		SalesID:       visit.SalesID,
		CoordinatorID: visit.CoordinatorID,
	}

	dayStart, dayEnd := utils.DayBounds(visit.VisitDate)

	// Same-calendar-day appointment spawned by a follow-up task.
	var assignee sql.NullString
	err := l.DB.QueryRow(`
		SELECT t.assigned_to_id
		FROM appointments a
		JOIN follow_up_tasks t ON t.id = a.created_from_follow_up_task_id
		WHERE a.patient_id = $1 AND a.hospital_id = $2
		AND a.scheduled_date >= $3 AND a.scheduled_date < $4
		LIMIT 1
	`, visit.PatientID, visit.HospitalID, dayStart, dayEnd).Scan(&assignee)
	if err != nil && err != sql.ErrNoRows {
		return ctx, err
	}
	if err == nil {
		ctx.HasFollowUpAppointment = true
		if assignee.Valid {
			ctx.FollowUpAssigneeID = &assignee.String
		}
	}

	// Any earlier visit for the patient, tie-broken by created_at.
	err = l.DB.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE patient_id = $1 AND id <> $2
			AND (visit_date < $3 OR (visit_date = $3 AND created_at < $4))
		)
	`, visit.PatientID, visit.ID, visit.VisitDate, visit.CreatedAt).Scan(&ctx.HasEarlierVisit)
	if err != nil {
		return ctx, err
	}

	// Same lookup restricted to this hospital.
	err = l.DB.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE patient_id = $1 AND id <> $2 AND hospital_id = $5
			AND (visit_date < $3 OR (visit_date = $3 AND created_at < $4))
		)
	`, visit.PatientID, visit.ID, visit.VisitDate, visit.CreatedAt, visit.HospitalID).Scan(&ctx.HasEarlierVisitAtHospital)
	if err != nil {
		return ctx, err
	}

	var patientSales sql.NullString
	err = l.DB.QueryRow(`
		SELECT sales_person_id FROM patients WHERE id = $1
	`, visit.PatientID).Scan(&patientSales)
	if err != nil && err != sql.ErrNoRows {
		return ctx, err
	}
	if patientSales.Valid {
		ctx.PatientSalesID = &patientSales.String
	}

	return ctx, nil
}

// Classify loads the context for a visit and runs the classifier.
// The coordinator-missing fallback is logged here so no call site can
// drop it silently.
func (l *ContextLoader) Classify(visit models.Visit) (Attribution, error) {
	ctx, err := l.Load(visit)
	if err != nil {
		return Attribution{}, err
	}

	attribution := ClassifyAndAttribute(ctx)
	if attribution.UsedFallback {
		l.Log.Warn("existing-patient visit has no coordinator, attributed to sales",
			zap.String("visit_id", visit.ID))
	}
	return attribution, nil
}
