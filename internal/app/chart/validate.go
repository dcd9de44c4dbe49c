package chart

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
)

const (
	CodeSlabPeriodsOverlapping = "chart.slabs.range.overlapping"
	CodeMultipleOpenEnded      = "chart.slabs.multiple.open.ended"
	CodeOpenEndedNotLast       = "chart.slabs.open.ended.slab.not.last"
	CodeCurrencyMismatch       = "chart.slab.currency.mismatch"
	CodePeriodUnitMismatch     = "chart.slabs.period.type.mismatch"
	CodeNoSlabs                = "chart.slabs.empty"
)

// Validate checks every slab of c on its own and then the chart wide rules:
// one currency and period unit, no overlapping period ranges, and at most one
// open ended slab which has to come last by from period.
func Validate(c model.RateChart, v model.Validator) {
	if len(c.Slabs) == 0 {
		v.Fail(model.FieldChartSlabs, nil, CodeNoSlabs)
		return
	}

	unit := c.Slabs[0].PeriodUnit()
	for _, s := range c.Slabs {
		s.Validate(v)
		if s.CurrencyCode() != c.Currency {
			v.Fail(model.FieldCurrencyCode, s.CurrencyCode(), CodeCurrencyMismatch)
		}
		if s.PeriodUnit() != unit {
			v.Fail(model.FieldPeriodType, s.PeriodUnit().Code(), CodePeriodUnitMismatch)
		}
	}

	sorted := SortedByFromPeriod(c.Slabs)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a.Overlaps(b) || b.Overlaps(a) {
				v.Fail(model.FieldChartSlabPeriods, fmt.Sprintf("%s and %s", periodRange(a), periodRange(b)), CodeSlabPeriodsOverlapping)
			}
		}
	}

	openEnded := 0
	for i, s := range sorted {
		if !s.IsOpenEnded() {
			continue
		}
		openEnded++
		if i != len(sorted)-1 {
			v.Fail(model.FieldToPeriod, periodRange(s), CodeOpenEndedNotLast)
		}
	}
	if openEnded > 1 {
		v.Fail(model.FieldToPeriod, openEnded, CodeMultipleOpenEnded)
	}
}

// SortedByFromPeriod returns a copy of slabs ordered by from period. Slabs with
// the same from period keep their relative order.
func SortedByFromPeriod(slabs []*model.Slab) []*model.Slab {
	out := make([]*model.Slab, len(slabs))
	copy(out, slabs)
	slices.SortStableFunc(out, func(a, b *model.Slab) int {
		return cmp.Compare(a.FromPeriod(), b.FromPeriod())
	})
	return out
}

func periodRange(s *model.Slab) string {
	if to := s.ToPeriod(); to != nil {
		return fmt.Sprintf("[%d,%d]", s.FromPeriod(), *to)
	}
	return fmt.Sprintf("[%d,)", s.FromPeriod())
}
