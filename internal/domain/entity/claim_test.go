package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClaimTotalAmount(t *testing.T) {
	c := &Claim{
		HoursWorked: decimal.RequireFromString("12.5"),
		HourlyRate:  decimal.RequireFromString("40.10"),
	}

	assert.Equal(t, "501.25", c.TotalAmount().StringFixed(2))
}

func TestMonthStart(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	plus8 := time.FixedZone("UTC+8", 8*60*60)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero falls back to now", time.Time{}, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"mid month", time.Date(2023, 11, 27, 18, 30, 0, 0, time.UTC), time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"already normalized", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"keeps calendar month of other zones", time.Date(2024, 2, 1, 1, 0, 0, 0, plus8), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthStart(tt.in, now))
		})
	}
}

func TestRoleCanReview(t *testing.T) {
	assert.True(t, RoleProgrammeCoordinator.CanReview())
	assert.True(t, RoleAcademicManager.CanReview())
	assert.False(t, RoleLecturer.CanReview())
	assert.False(t, RoleHR.CanReview())
	assert.False(t, Role("ADMIN").IsValid())
}

func TestRoleCanMarkPaid(t *testing.T) {
	assert.True(t, RoleHR.CanMarkPaid())
	assert.False(t, RoleProgrammeCoordinator.CanMarkPaid())
	assert.False(t, RoleLecturer.CanMarkPaid())
}

func TestValidationError(t *testing.T) {
	var err error = NewValidationError("hours_worked", "must be between %d and %d", 1, 200)

	assert.Equal(t, "invalid hours_worked: must be between 1 and 200", err.Error())
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrNotFound))
}
