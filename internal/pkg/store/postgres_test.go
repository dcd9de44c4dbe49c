package store

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
)

func strPtr(s string) *string { return &s }

func TestDecimalTextRoundTrip(t *testing.T) {
	assert.Nil(t, decimalText(nil))

	d := decimal.RequireFromString("99999.500000")
	text := decimalText(&d)
	require.NotNil(t, text)

	back, err := parseDecimalText(text)
	require.NoError(t, err)
	assert.True(t, back.Equal(d))

	back, err = parseDecimalText(nil)
	require.NoError(t, err)
	assert.Nil(t, back)

	_, err = parseDecimalText(strPtr("abc"))
	assert.Error(t, err)
}

func TestSlabRowToSlab(t *testing.T) {
	to := 11
	r := slabRow{
		description:     strPtr("6-11 mån"),
		periodType:      model.PeriodMonths.Code(),
		fromPeriod:      6,
		toPeriod:        &to,
		amountRangeFrom: strPtr("100000.000000"),
		baseRate:        "2.050000",
		seniorRate:      strPtr("2.250000"),
	}

	s, err := r.toSlab("SEK")
	require.NoError(t, err)

	assert.Equal(t, "6-11 mån", s.Description())
	assert.Equal(t, model.PeriodMonths, s.PeriodUnit())
	assert.Equal(t, 6, s.FromPeriod())
	assert.Equal(t, 11, *s.ToPeriod())
	assert.True(t, s.AmountRangeFrom().Equal(decimal.NewFromInt(100000)))
	assert.Nil(t, s.AmountRangeTo())
	assert.True(t, s.BaseRate().Equal(decimal.RequireFromString("2.05")))
	assert.Nil(t, s.FemaleRate())
	assert.Nil(t, s.ChildRate())
	assert.True(t, s.SeniorRate().Equal(decimal.RequireFromString("2.25")))
	assert.Equal(t, "SEK", s.CurrencyCode())
}

func TestSlabRowToSlabRejectsCorruptRows(t *testing.T) {
	_, err := slabRow{periodType: 9, baseRate: "1"}.toSlab("SEK")
	assert.Error(t, err)

	_, err = slabRow{periodType: 0, baseRate: ""}.toSlab("SEK")
	assert.Error(t, err)

	_, err = slabRow{periodType: 0, baseRate: "1", childRate: strPtr("x")}.toSlab("SEK")
	assert.Error(t, err)
}

func TestDateValue(t *testing.T) {
	got := dateValue(civil.Date{Year: 2020, Month: time.February, Day: 29})
	assert.Equal(t, time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, civil.Date{Year: 2020, Month: time.February, Day: 29}, civil.DateOf(got))
}

func TestAppendSlabGroupsByTier(t *testing.T) {
	slab := func() *model.Slab {
		return model.NewSlab(model.SlabFields{PeriodUnit: model.PeriodMonths, BaseRate: decimal.NewFromInt(1)})
	}

	var charts []model.RateChart
	charts = appendSlab(charts, "Testbanken", "SEK", "0-99999", slab())
	charts = appendSlab(charts, "Testbanken", "SEK", "0-99999", slab())
	charts = appendSlab(charts, "Testbanken", "SEK", "100000-", slab())

	require.Len(t, charts, 2)
	assert.Equal(t, "0-99999", charts[0].Tier)
	assert.Len(t, charts[0].Slabs, 2)
	assert.Equal(t, "100000-", charts[1].Tier)
	assert.Len(t, charts[1].Slabs, 1)
	assert.Equal(t, model.Bank("Testbanken"), charts[1].Bank)
	assert.Equal(t, "SEK", charts[1].Currency)
}
