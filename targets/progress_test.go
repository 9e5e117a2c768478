package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Xaeon-Innovation/Medflow-sub000/models"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name           string
		goal           int
		current        int
		wantPercentage float64
		wantStatus     string
	}{
		{
			name:       "untouched target",
			goal:       10,
			wantStatus: models.TargetStatusNotStarted,
		},
		{
			name:           "partial progress",
			goal:           10,
			current:        4,
			wantPercentage: 40,
			wantStatus:     models.TargetStatusInProgress,
		},
		{
			name:           "exactly met",
			goal:           10,
			current:        10,
			wantPercentage: 100,
			wantStatus:     models.TargetStatusCompleted,
		},
		{
			name:           "overshoot clamps at 100",
			goal:           10,
			current:        25,
			wantPercentage: 100,
			wantStatus:     models.TargetStatusCompleted,
		},
		{
			name:       "zero goal never completes",
			goal:       0,
			current:    5,
			wantStatus: models.TargetStatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProgress(tt.goal, tt.current)
			assert.Equal(t, tt.goal, got.Goal)
			assert.Equal(t, tt.current, got.Current)
			assert.InDelta(t, tt.wantPercentage, got.Percentage, 0.001)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}
