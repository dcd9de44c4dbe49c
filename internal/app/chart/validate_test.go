package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/validation"
)

func TestValidateAcceptsWellFormedChart(t *testing.T) {
	v := validation.NewCollector()
	Validate(sekChart(
		slab(12, nil, "3.0"),
		slab(0, intPtr(5), "2.0"),
		slab(6, intPtr(11), "2.5"),
	), v)

	assert.NoError(t, v.Err())
}

func TestValidateChartRules(t *testing.T) {
	testCases := []struct {
		name  string
		chart model.RateChart
		codes []string
	}{
		{
			name:  "empty chart",
			chart: sekChart(),
			codes: []string{CodeNoSlabs},
		},
		{
			name:  "shared boundary",
			chart: sekChart(slab(0, intPtr(12), "2"), slab(12, nil, "3")),
			codes: []string{CodeSlabPeriodsOverlapping},
		},
		{
			name:  "two open ended",
			chart: sekChart(slab(0, nil, "2"), slab(12, nil, "3")),
			codes: []string{CodeSlabPeriodsOverlapping, CodeOpenEndedNotLast, CodeMultipleOpenEnded},
		},
		{
			name:  "open ended not last",
			chart: sekChart(slab(0, nil, "2"), slab(0, intPtr(0), "1"), slab(1, intPtr(4), "3")),
			codes: []string{CodeSlabPeriodsOverlapping, CodeSlabPeriodsOverlapping, CodeOpenEndedNotLast},
		},
		{
			name: "currency mismatch",
			chart: sekChart(slab(0, nil, "2", func(f *model.SlabFields) {
				f.CurrencyCode = "NOK"
			})),
			codes: []string{CodeCurrencyMismatch},
		},
		{
			name: "period unit mismatch",
			chart: sekChart(slab(0, intPtr(11), "2"), slab(1, nil, "3", func(f *model.SlabFields) {
				f.PeriodUnit = model.PeriodYears
			})),
			codes: []string{CodePeriodUnitMismatch, CodeSlabPeriodsOverlapping},
		},
		{
			name:  "slab level rule",
			chart: sekChart(slab(5, intPtr(4), "2"), slab(6, nil, "3")),
			codes: []string{model.CodeFromPeriodGreaterThanToPeriod},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := validation.NewCollector()
			Validate(tc.chart, v)

			got := make([]string, 0, len(v.Errors()))
			for _, e := range v.Errors() {
				got = append(got, e.Code)
			}
			assert.ElementsMatch(t, tc.codes, got)
		})
	}
}

func TestSortedByFromPeriodLeavesInputAlone(t *testing.T) {
	in := []*model.Slab{slab(12, nil, "3"), slab(0, intPtr(11), "2")}
	out := SortedByFromPeriod(in)

	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].FromPeriod())
	assert.Equal(t, 12, in[0].FromPeriod())
}

func TestSortedByFromPeriodIsStable(t *testing.T) {
	first := slab(0, intPtr(5), "2.00", withAmount(nil, dec("99999")))
	second := slab(0, intPtr(5), "2.10", withAmount(dec("100000"), nil))
	out := SortedByFromPeriod([]*model.Slab{slab(6, nil, "3"), first, second})

	require.Len(t, out, 3)
	assert.Same(t, first, out[0])
	assert.Same(t, second, out[1])
	assert.Equal(t, 6, out[2].FromPeriod())
}
