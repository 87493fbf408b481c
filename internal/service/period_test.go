package service

import (
	"testing"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidatePeriod(t *testing.T) {
	p := PeriodPolicy{Now: fixedClock, Location: time.UTC}

	assert.NoError(t, p.ValidatePeriod(d("2026-03-02"), d("2026-03-02")), "today, single day")
	assert.NoError(t, p.ValidatePeriod(d("2026-03-05"), d("2026-04-30")), "no configured maximum")

	err := p.ValidatePeriod(d("2026-03-06"), d("2026-03-05"))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "endDate")

	err = p.ValidatePeriod(d("2026-03-01"), d("2026-03-03"))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "past")

	assert.Error(t, p.ValidatePeriod(models.Date{}, d("2026-03-03")))
}

func TestValidatePeriod_MaxDays(t *testing.T) {
	p := PeriodPolicy{Now: fixedClock, Location: time.UTC, MaxDays: 7}

	assert.NoError(t, p.ValidatePeriod(d("2026-03-10"), d("2026-03-16")))
	assert.Error(t, p.ValidatePeriod(d("2026-03-10"), d("2026-03-17")))
}

func TestValidatePeriod_HardCeiling(t *testing.T) {
	p := PeriodPolicy{Now: fixedClock, Location: time.UTC}

	assert.NoError(t, p.ValidatePeriod(d("2026-03-10"), d("2026-03-10").AddDays(MaxSpanDays-1)))

	err := p.ValidatePeriod(d("2026-03-10"), d("2026-03-10").AddDays(MaxSpanDays))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "maximum is 366")

	err = p.ValidatePeriod(d("2026-03-10"), d("9999-12-31"))
	assert.True(t, IsValidation(err))

	generous := PeriodPolicy{Now: fixedClock, Location: time.UTC, MaxDays: 5000}
	assert.Error(t, generous.ValidatePeriod(d("2026-03-10"), d("2026-03-10").AddDays(MaxSpanDays)), "config cannot lift the ceiling")
}

func TestValidatePeriod_UsesPolicyLocation(t *testing.T) {
	// 23:30 UTC on March 2 is already March 3 in Tokyo
	late := func() time.Time { return time.Date(2026, time.March, 2, 23, 30, 0, 0, time.UTC) }
	tokyo := time.FixedZone("JST", 9*3600)

	p := PeriodPolicy{Now: late, Location: tokyo}
	assert.Equal(t, "2026-03-03", p.Today().String())
	assert.Error(t, p.ValidatePeriod(d("2026-03-02"), d("2026-03-02")))
}

func TestRequiresDocument(t *testing.T) {
	assert.False(t, RequiresDocument(models.DateRange{Start: d("2026-03-10"), End: d("2026-03-10")}))
	assert.False(t, RequiresDocument(models.DateRange{Start: d("2026-03-10"), End: d("2026-03-11")}))
	assert.False(t, RequiresDocument(models.DateRange{Start: d("2026-03-10"), End: d("2026-03-12")}))
	assert.True(t, RequiresDocument(models.DateRange{Start: d("2026-03-10"), End: d("2026-03-13")}))
	assert.True(t, RequiresDocument(models.DateRange{Start: d("2026-02-27"), End: d("2026-03-02")}), "across a month end")
}
