package model

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// PeriodUnit is the calendar unit a slab's period range is expressed in.
type PeriodUnit int

const (
	PeriodInvalid PeriodUnit = -1
	PeriodDays    PeriodUnit = 0
	PeriodWeeks   PeriodUnit = 1
	PeriodMonths  PeriodUnit = 2
	PeriodYears   PeriodUnit = 3
)

// ParsePeriodUnit resolves a stored period type code. Unknown codes are an error,
// PeriodInvalid is only returned for its own code.
func ParsePeriodUnit(code int) (PeriodUnit, error) {
	switch PeriodUnit(code) {
	case PeriodDays, PeriodWeeks, PeriodMonths, PeriodYears, PeriodInvalid:
		return PeriodUnit(code), nil
	default:
		return PeriodInvalid, fmt.Errorf("unknown period type code %d", code)
	}
}

func (p PeriodUnit) Code() int {
	return int(p)
}

func (p PeriodUnit) String() string {
	switch p {
	case PeriodDays:
		return "DAYS"
	case PeriodWeeks:
		return "WEEKS"
	case PeriodMonths:
		return "MONTHS"
	case PeriodYears:
		return "YEARS"
	default:
		return "INVALID"
	}
}

// Between counts the whole periods of unit p from start to end. Months and years
// are calendar based: adding n months to start clamps to the last day of the
// target month, so 2020-01-31 to 2020-02-29 is one month.
// The result for end before start is not meaningful.
func (p PeriodUnit) Between(start, end civil.Date) int {
	switch p {
	case PeriodDays:
		return end.DaysSince(start)
	case PeriodWeeks:
		return end.DaysSince(start) / 7
	case PeriodMonths:
		return monthsBetween(start, end)
	case PeriodYears:
		return monthsBetween(start, end) / 12
	default:
		return 0
	}
}

func monthsBetween(start, end civil.Date) int {
	n := (end.Year-start.Year)*12 + int(end.Month) - int(start.Month)
	switch {
	case n > 0 && addMonths(start, n).After(end):
		n--
	case n < 0 && addMonths(start, n).Before(end):
		n++
	}
	return n
}

func addMonths(d civil.Date, n int) civil.Date {
	m := int(d.Month) - 1 + n
	y := d.Year + m/12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)

	day := d.Day
	if last := daysIn(y, month); day > last {
		day = last
	}
	return civil.Date{Year: y, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
