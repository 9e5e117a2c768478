package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Xaeon-Innovation/Medflow-sub000/models"
)

func strPtr(s string) *string { return &s }

func TestClassifyAndAttribute(t *testing.T) {
	sales := strPtr("sales-1")
	patientSales := strPtr("sales-2")
	coordinator := strPtr("coord-1")
	assignee := strPtr("coord-2")

	tests := []struct {
		name         string
		ctx          VisitContext
		wantCategory string
		wantEmployee *string
		wantFallback bool
	}{
		{
			name: "first visit ever is a new patient credited to sales",
			ctx: VisitContext{
				SalesID:       sales,
				CoordinatorID: coordinator,
			},
			wantCategory: models.VisitCategoryNewPatient,
			wantEmployee: sales,
		},
		{
			name: "first visit to this hospital is a new patient even with history elsewhere",
			ctx: VisitContext{
				HasEarlierVisit: true,
				SalesID:         sales,
				CoordinatorID:   coordinator,
			},
			wantCategory: models.VisitCategoryNewPatient,
			wantEmployee: sales,
		},
		{
			name: "repeat visit at the same hospital is an existing patient",
			ctx: VisitContext{
				HasEarlierVisit:           true,
				HasEarlierVisitAtHospital: true,
				SalesID:                   sales,
				CoordinatorID:             coordinator,
			},
			wantCategory: models.VisitCategoryExistingPatient,
			wantEmployee: coordinator,
		},
		{
			name: "follow-up appointment wins over new-patient rules",
			ctx: VisitContext{
				HasFollowUpAppointment: true,
				FollowUpAssigneeID:     assignee,
				SalesID:                sales,
				CoordinatorID:          coordinator,
			},
			wantCategory: models.VisitCategoryFollowUpTask,
			wantEmployee: assignee,
		},
		{
			name: "follow-up appointment wins over existing-patient rules",
			ctx: VisitContext{
				HasFollowUpAppointment:    true,
				FollowUpAssigneeID:        assignee,
				HasEarlierVisit:           true,
				HasEarlierVisitAtHospital: true,
				CoordinatorID:             coordinator,
			},
			wantCategory: models.VisitCategoryFollowUpTask,
			wantEmployee: assignee,
		},
		{
			name: "follow-up with no assignee falls back to the visit coordinator",
			ctx: VisitContext{
				HasFollowUpAppointment: true,
				CoordinatorID:          coordinator,
			},
			wantCategory: models.VisitCategoryFollowUpTask,
			wantEmployee: coordinator,
		},
		{
			name: "new patient with no visit sales falls back to the patient's sales person",
			ctx: VisitContext{
				PatientSalesID: patientSales,
			},
			wantCategory: models.VisitCategoryNewPatient,
			wantEmployee: patientSales,
		},
		{
			name: "existing patient with no coordinator is attributed to sales and flagged",
			ctx: VisitContext{
				HasEarlierVisit:           true,
				HasEarlierVisitAtHospital: true,
				SalesID:                   sales,
			},
			wantCategory: models.VisitCategoryExistingPatient,
			wantEmployee: sales,
			wantFallback: true,
		},
		{
			name: "existing patient with no coordinator or visit sales uses the patient's sales person",
			ctx: VisitContext{
				HasEarlierVisit:           true,
				HasEarlierVisitAtHospital: true,
				PatientSalesID:            patientSales,
			},
			wantCategory: models.VisitCategoryExistingPatient,
			wantEmployee: patientSales,
			wantFallback: true,
		},
		{
			name: "new patient with nobody to credit leaves the attribution empty",
			ctx: VisitContext{
				CoordinatorID: coordinator,
			},
			wantCategory: models.VisitCategoryNewPatient,
			wantEmployee: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAndAttribute(tt.ctx)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantEmployee, got.EmployeeID)
			assert.Equal(t, tt.wantFallback, got.UsedFallback)
		})
	}
}
