package service

import (
	"fmt"
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
)

// DocumentFreeDays is the longest span, counted as days elapsed from start
// to end, that needs no schedule document.
const DocumentFreeDays = 2

// MaxSpanDays bounds every reservation regardless of MaxDays. Each day of
// a reservation costs slot claim rows.
const MaxSpanDays = 366

// PeriodPolicy validates reservation date ranges against a clock.
type PeriodPolicy struct {
	Now      func() time.Time
	Location *time.Location
	// MaxDays caps the inclusive span; zero leaves only MaxSpanDays.
	MaxDays int
}

func NewPeriodPolicy(loc *time.Location, maxDays int) PeriodPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return PeriodPolicy{Now: time.Now, Location: loc, MaxDays: maxDays}
}

func (p PeriodPolicy) Today() models.Date {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(now().In(loc))
}

// ValidatePeriod rejects an inverted range, a start before today and a span
// longer than MaxDays (or MaxSpanDays). A single-day range is valid.
func (p PeriodPolicy) ValidatePeriod(start, end models.Date) error {
	if start.IsZero() || end.IsZero() {
		return invalid("startDate and endDate are required")
	}
	if end.Before(start) {
		return invalidField("endDate", "must not be before startDate")
	}
	if today := p.Today(); start.Before(today) {
		return invalidField("startDate", fmt.Sprintf("must not be in the past (today is %s)", today))
	}
	limit := MaxSpanDays
	if p.MaxDays > 0 && p.MaxDays < limit {
		limit = p.MaxDays
	}
	if days := (models.DateRange{Start: start, End: end}).Days(); days > limit {
		return invalidField("endDate", fmt.Sprintf("reservation spans %d days, maximum is %d", days, limit))
	}
	return nil
}

// RequiresDocument is true when more than DocumentFreeDays elapse between
// start and end, so 10th to 12th is free and 10th to 13th is not.
func RequiresDocument(period models.DateRange) bool {
	return period.Start.DaysUntil(period.End) > DocumentFreeDays
}
