package model_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestParsePeriodUnit(t *testing.T) {
	for code, want := range map[int]model.PeriodUnit{
		0:  model.PeriodDays,
		1:  model.PeriodWeeks,
		2:  model.PeriodMonths,
		3:  model.PeriodYears,
		-1: model.PeriodInvalid,
	} {
		got, err := model.ParsePeriodUnit(code)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, code, got.Code())
	}

	_, err := model.ParsePeriodUnit(7)
	assert.Error(t, err)
}

func TestPeriodUnitBetween(t *testing.T) {
	testCases := []struct {
		name  string
		unit  model.PeriodUnit
		start civil.Date
		end   civil.Date
		want  int
	}{
		{"days", model.PeriodDays, date(2020, 1, 1), date(2020, 1, 10), 9},
		{"days across leap day", model.PeriodDays, date(2020, 2, 28), date(2020, 3, 1), 2},
		{"same day", model.PeriodDays, date(2020, 1, 1), date(2020, 1, 1), 0},
		{"weeks partial", model.PeriodWeeks, date(2020, 1, 1), date(2020, 1, 14), 1},
		{"weeks whole", model.PeriodWeeks, date(2020, 1, 1), date(2020, 1, 15), 2},
		{"month end into leap february", model.PeriodMonths, date(2020, 1, 31), date(2020, 2, 29), 1},
		{"month end short of clamped february", model.PeriodMonths, date(2020, 1, 31), date(2020, 2, 28), 0},
		{"month not yet complete", model.PeriodMonths, date(2020, 1, 15), date(2020, 2, 14), 0},
		{"month complete", model.PeriodMonths, date(2020, 1, 15), date(2020, 2, 15), 1},
		{"months across year into short february", model.PeriodMonths, date(2020, 11, 30), date(2021, 2, 28), 3},
		{"twelve months", model.PeriodMonths, date(2020, 1, 1), date(2021, 1, 1), 12},
		{"one year", model.PeriodYears, date(2020, 1, 1), date(2021, 1, 1), 1},
		{"year not yet complete", model.PeriodYears, date(2020, 1, 2), date(2021, 1, 1), 0},
		{"leap day anniversary", model.PeriodYears, date(2020, 2, 29), date(2021, 2, 28), 1},
		{"invalid unit", model.PeriodInvalid, date(2020, 1, 1), date(2025, 1, 1), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.unit.Between(tc.start, tc.end))
		})
	}
}
