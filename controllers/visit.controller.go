package controllers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/classification"
	"github.com/Xaeon-Innovation/Medflow-sub000/commission"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/models"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/utils"
)

// Visit Controllers
type VisitSpecialityInput struct {
	Speciality    string  `json:"speciality" binding:"required,max=100"`
	DoctorName    *string `json:"doctor_name" binding:"omitempty,max=100"`
	ScheduledTime *string `json:"scheduled_time"`
	Details       *string `json:"details"`
}

type CreateVisitInput struct {
	PatientID     string                 `json:"patient_id" binding:"required,uuid"`
	HospitalID    string                 `json:"hospital_id" binding:"required,uuid"`
	VisitDate     string                 `json:"visit_date" binding:"required"`
	SalesID       *string                `json:"sales_id" binding:"omitempty,uuid"`
	CoordinatorID *string                `json:"coordinator_id" binding:"omitempty,uuid"`
	AppointmentID *string                `json:"appointment_id" binding:"omitempty,uuid"`
	Notes         *string                `json:"notes"`
	Specialities  []VisitSpecialityInput `json:"specialities"` // may be empty - visits without specialities still count
}

func CreateVisit(c *gin.Context) {
	var input CreateVisitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	visitDate, err := utils.ParseDate(input.VisitDate)
	if err != nil {
		security.SendValidationError(c, "Invalid visit date format", "Use YYYY-MM-DD format")
		return
	}

	// Verify patient exists and is active
	var patientExists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1 AND is_active = true)
	`, input.PatientID).Scan(&patientExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking patient")
		return
	}
	if !patientExists {
		security.SendNotFoundError(c, "patient")
		return
	}

	// Verify hospital exists and is active
	var hospitalExists bool
	err = config.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM hospitals WHERE id = $1 AND is_active = true)
	`, input.HospitalID).Scan(&hospitalExists)
	if err != nil {
		security.SendDatabaseError(c, "Database error while checking hospital")
		return
	}
	if !hospitalExists {
		security.SendNotFoundError(c, "hospital")
		return
	}

	if input.AppointmentID != nil {
		var appointmentExists bool
		err = config.DB.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1 AND patient_id = $2)
		`, *input.AppointmentID, input.PatientID).Scan(&appointmentExists)
		if err != nil {
			security.SendDatabaseError(c, "Database error while checking appointment")
			return
		}
		if !appointmentExists {
			security.SendValidationError(c, "Invalid appointment", "appointment_id must reference an appointment of the same patient")
			return
		}
	}

	// Create visit and its specialities in one transaction
	tx, err := config.DB.Begin()
	if err != nil {
		security.SendDatabaseError(c, "Failed to start transaction")
		return
	}
	defer tx.Rollback()

	var visit models.Visit
	err = tx.QueryRow(`
		INSERT INTO visits (patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id, status, notes, created_at
	`, input.PatientID, input.HospitalID, visitDate, input.SalesID, input.CoordinatorID,
		input.AppointmentID, input.Notes).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
		&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.Notes, &visit.CreatedAt,
	)
	if err != nil {
		security.SendDatabaseError(c, "Failed to create visit")
		return
	}

	addedBy := c.GetString("employee_id")
	var specialities []models.VisitSpeciality
	for _, sp := range input.Specialities {
		speciality, err := insertSpeciality(config.WrapTx(tx), visit.ID, sp, addedBy)
		if err != nil {
			security.SendDatabaseError(c, "Failed to add visit speciality")
			return
		}
		specialities = append(specialities, speciality)
	}

	if err = tx.Commit(); err != nil {
		security.SendDatabaseError(c, "Failed to commit transaction")
		return
	}

	// Classification and commission credits run after the visit is durable.
	// A failed credit is logged and never rolls back the visit.
	attribution, err := applyVisitCommissions(visit)
	if err != nil {
		logger.Error("commission recording failed for visit", zap.String("visit_id", visit.ID), zap.Error(err))
		c.Header("X-Warning", "Visit created but commission recording failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"visit":         visit,
		"specialities":  specialities,
		"category":      attribution.Category,
		"attributed_to": attribution.EmployeeID,
	})
}

func insertSpeciality(q classification.Querier, visitID string, input VisitSpecialityInput, addedBy string) (models.VisitSpeciality, error) {
	var scheduledTime interface{}
	if input.ScheduledTime != nil && *input.ScheduledTime != "" {
		scheduledTime = *input.ScheduledTime
	}

	var speciality models.VisitSpeciality
	err := q.QueryRow(`
		INSERT INTO visit_specialities (visit_id, speciality, doctor_name, scheduled_time, details, added_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, visit_id, speciality, doctor_name, scheduled_time, details, added_by, created_at
	`, visitID, input.Speciality, input.DoctorName, scheduledTime, input.Details, addedBy).Scan(
		&speciality.ID, &speciality.VisitID, &speciality.Speciality, &speciality.DoctorName,
		&speciality.ScheduledTime, &speciality.Details, &speciality.AddedBy, &speciality.CreatedAt,
	)
	return speciality, err
}

// applyVisitCommissions classifies a freshly recorded visit and appends
// the ledger entries its category triggers:
//
//   - new_patient + first visit ever: PATIENT_CREATION for the owning
//     sales person, plus NOMINATION_CONVERSION for the nominator if the
//     patient came from an approved nomination (deferred from conversion
//     time so nominations that never visit are not credited);
//   - follow_up_task: FOLLOW_UP for the coordinator who owned the task.
//
// Specialty additions are credited separately in AddVisitSpeciality.
func applyVisitCommissions(visit models.Visit) (classification.Attribution, error) {
	visitContext, err := loader.Load(visit)
	if err != nil {
		return classification.Attribution{}, err
	}
	attribution := classification.ClassifyAndAttribute(visitContext)
	if attribution.UsedFallback {
		logger.Warn("existing-patient visit has no coordinator, attributed to sales",
			zap.String("visit_id", visit.ID))
	}

	period := utils.FormatDate(visit.VisitDate)

	switch attribution.Category {
	case models.VisitCategoryNewPatient:
		if !visitContext.HasEarlierVisit {
			if attribution.EmployeeID != nil {
				_, _, err = ledger.RecordOnce(commission.Entry{
					EmployeeID: *attribution.EmployeeID,
					Type:       models.CommissionPatientCreation,
					Amount:     commission.DefaultAmount,
					Period:     period,
					PatientID:  &visit.PatientID,
				})
				if err != nil {
					return attribution, err
				}
			}
			if err := creditNominationConversion(visit.PatientID, period); err != nil {
				return attribution, err
			}
		}
	case models.VisitCategoryFollowUpTask:
		if attribution.EmployeeID != nil {
			_, _, err = ledger.RecordOnce(commission.Entry{
				EmployeeID: *attribution.EmployeeID,
				Type:       models.CommissionFollowUp,
				Amount:     commission.DefaultAmount,
				Period:     period,
				PatientID:  &visit.PatientID,
			})
			if err != nil {
				return attribution, err
			}
		}
	}

	if attribution.EmployeeID != nil {
		invalidateBreakdown(*attribution.EmployeeID)
	}
	return attribution, nil
}

// creditNominationConversion awards the nominator when a converted
// nomination's patient makes their first visit.
func creditNominationConversion(patientID, period string) error {
	var nominatedBy string
	err := config.DB.QueryRow(`
		SELECT nominated_by_id FROM nominations
		WHERE converted_patient_id = $1 AND status = 'contacted_approved'
		LIMIT 1
	`, patientID).Scan(&nominatedBy)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	_, _, err = ledger.RecordOnce(commission.Entry{
		EmployeeID: nominatedBy,
		Type:       models.CommissionNominationConversion,
		Amount:     commission.DefaultAmount,
		Period:     period,
		PatientID:  &patientID,
	})
	if err == nil {
		invalidateBreakdown(nominatedBy)
	}
	return err
}

func invalidateBreakdown(employeeID string) {
	if err := appCache.Invalidate(context.Background(), "breakdown:"+employeeID); err != nil {
		logger.Warn("breakdown cache invalidation failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
}

func GetVisits(c *gin.Context) {
	patientID := c.Query("patient_id")
	hospitalID := c.Query("hospital_id")

	startDate, endDate, ok := parseWindow(c)
	if !ok {
		return
	}

	query := `
		SELECT v.id, v.patient_id, v.hospital_id, v.visit_date, v.sales_id, v.coordinator_id,
		       v.appointment_id, v.status, v.notes, v.created_at, v.updated_at,
		       p.first_name, p.last_name, p.phone, p.national_id,
		       h.code, h.name
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		JOIN hospitals h ON h.id = v.hospital_id
		WHERE v.visit_date >= $1 AND v.visit_date < $2
	`
	args := []interface{}{startDate, endDate.AddDate(0, 0, 1)}
	argIndex := 3

	if patientID != "" {
		query += fmt.Sprintf(" AND v.patient_id = $%d", argIndex)
		args = append(args, patientID)
		argIndex++
	}
	if hospitalID != "" {
		query += fmt.Sprintf(" AND v.hospital_id = $%d", argIndex)
		args = append(args, hospitalID)
		argIndex++
	}

	query += " ORDER BY v.visit_date DESC, v.created_at DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	var visits []models.VisitWithDetails
	for rows.Next() {
		var visit models.VisitWithDetails
		err := rows.Scan(
			&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
			&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.Notes,
			&visit.CreatedAt, &visit.UpdatedAt,
			&visit.Patient.FirstName, &visit.Patient.LastName, &visit.Patient.Phone, &visit.Patient.NationalID,
			&visit.Hospital.Code, &visit.Hospital.Name,
		)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		visit.Patient.ID = visit.PatientID
		visit.Hospital.ID = visit.HospitalID
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}

	// Classification is recomputed on every read - it is never stored
	for i := range visits {
		attribution, err := loader.Classify(visits[i].Visit)
		if err != nil {
			security.SendDatabaseError(c, "Failed to classify visits")
			return
		}
		visits[i].Category = attribution.Category
		visits[i].AttributedTo = attribution.EmployeeID
	}

	c.JSON(http.StatusOK, visits)
}

func GetVisit(c *gin.Context) {
	visitID := c.Param("id")

	var visit models.VisitWithDetails
	err := config.DB.QueryRow(`
		SELECT v.id, v.patient_id, v.hospital_id, v.visit_date, v.sales_id, v.coordinator_id,
		       v.appointment_id, v.status, v.notes, v.created_at, v.updated_at,
		       p.first_name, p.last_name, p.phone, p.national_id,
		       h.code, h.name
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		JOIN hospitals h ON h.id = v.hospital_id
		WHERE v.id = $1
	`, visitID).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
		&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.Notes,
		&visit.CreatedAt, &visit.UpdatedAt,
		&visit.Patient.FirstName, &visit.Patient.LastName, &visit.Patient.Phone, &visit.Patient.NationalID,
		&visit.Hospital.Code, &visit.Hospital.Name,
	)
	if err != nil {
		security.SendNotFoundError(c, "visit")
		return
	}
	visit.Patient.ID = visit.PatientID
	visit.Hospital.ID = visit.HospitalID

	rows, err := config.DB.Query(`
		SELECT id, visit_id, speciality, doctor_name, scheduled_time, details, added_by, created_at
		FROM visit_specialities WHERE visit_id = $1 ORDER BY created_at
	`, visitID)
	if err != nil {
		security.SendDatabaseError(c, "Database error")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var speciality models.VisitSpeciality
		err := rows.Scan(&speciality.ID, &speciality.VisitID, &speciality.Speciality, &speciality.DoctorName,
			&speciality.ScheduledTime, &speciality.Details, &speciality.AddedBy, &speciality.CreatedAt)
		if err != nil {
			security.SendDatabaseError(c, "Database error")
			return
		}
		visit.Specialities = append(visit.Specialities, speciality)
	}

	attribution, err := loader.Classify(visit.Visit)
	if err != nil {
		security.SendDatabaseError(c, "Failed to classify visit")
		return
	}
	visit.Category = attribution.Category
	visit.AttributedTo = attribution.EmployeeID

	c.JSON(http.StatusOK, visit)
}

// AddVisitSpeciality attaches a speciality to an existing visit. When
// the visit classifies existing_patient, the coordinator earns a
// VISIT_SPECIALITY_ADDITION credit for it.
func AddVisitSpeciality(c *gin.Context) {
	visitID := c.Param("id")
	var input VisitSpecialityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendValidationError(c, "Invalid input data", err.Error())
		return
	}

	var visit models.Visit
	err := config.DB.QueryRow(`
		SELECT id, patient_id, hospital_id, visit_date, sales_id, coordinator_id, appointment_id, status, created_at
		FROM visits WHERE id = $1
	`, visitID).Scan(
		&visit.ID, &visit.PatientID, &visit.HospitalID, &visit.VisitDate, &visit.SalesID,
		&visit.CoordinatorID, &visit.AppointmentID, &visit.Status, &visit.CreatedAt,
	)
	if err != nil {
		security.SendNotFoundError(c, "visit")
		return
	}

	addedBy := c.GetString("employee_id")
	speciality, err := insertSpeciality(config.DB, visit.ID, input, addedBy)
	if err != nil {
		security.SendDatabaseError(c, "Failed to add visit speciality")
		return
	}

	attribution, err := loader.Classify(visit)
	if err != nil {
		logger.Error("classification failed after speciality addition", zap.String("visit_id", visit.ID), zap.Error(err))
		c.JSON(http.StatusCreated, speciality)
		return
	}

	if attribution.Category == models.VisitCategoryExistingPatient && attribution.EmployeeID != nil {
		_, _, err = ledger.RecordOnce(commission.Entry{
			EmployeeID:        *attribution.EmployeeID,
			Type:              models.CommissionVisitSpecialityAdd,
			Amount:            commission.DefaultAmount,
			Period:            utils.FormatDate(visit.VisitDate),
			PatientID:         &visit.PatientID,
			VisitSpecialityID: &speciality.ID,
		})
		if err != nil {
			logger.Error("speciality commission failed", zap.String("visit_id", visit.ID), zap.Error(err))
			c.Header("X-Warning", "Speciality added but commission recording failed")
		} else {
			invalidateBreakdown(*attribution.EmployeeID)
		}
	}

	c.JSON(http.StatusCreated, speciality)
}
