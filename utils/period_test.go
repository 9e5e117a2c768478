package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", FormatDate(parsed))
	assert.Equal(t, BusinessLocation, parsed.Location())
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("15/03/2025")
	assert.Error(t, err)
}

func TestFormatDateShiftsToBusinessZone(t *testing.T) {
	// 22:30 UTC is already the next day in Dubai (UTC+4).
	utc := time.Date(2025, 3, 15, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-16", FormatDate(utc))
}

func TestDayBounds(t *testing.T) {
	mid := time.Date(2025, 3, 15, 13, 45, 0, 0, BusinessLocation)
	start, end := DayBounds(mid)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, BusinessLocation), start)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, BusinessLocation), end)
}

func TestWeekStartIsMonday(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{
			name: "wednesday",
			day:  time.Date(2025, 3, 12, 10, 0, 0, 0, BusinessLocation),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation),
		},
		{
			name: "monday maps to itself",
			day:  time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation),
		},
		{
			name: "sunday belongs to the preceding monday",
			day:  time.Date(2025, 3, 16, 23, 59, 0, 0, BusinessLocation),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.day))
		})
	}
}

func TestMonthStart(t *testing.T) {
	day := time.Date(2025, 2, 28, 18, 0, 0, 0, BusinessLocation)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, BusinessLocation), MonthStart(day))
}

func TestPeriodWindow(t *testing.T) {
	anchor := time.Date(2025, 3, 12, 10, 0, 0, 0, BusinessLocation) // Wednesday

	start, end := PeriodWindow("daily", anchor)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, BusinessLocation), start)
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, BusinessLocation), end)

	start, end = PeriodWindow("weekly", anchor)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, BusinessLocation), start)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, BusinessLocation), end)

	start, end = PeriodWindow("monthly", anchor)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, BusinessLocation), start)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, BusinessLocation), end)
}
