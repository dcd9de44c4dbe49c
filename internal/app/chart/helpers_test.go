package chart

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
)

func intPtr(i int) *int { return &i }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

type slabOpt func(*model.SlabFields)

func withAmount(from, to *decimal.Decimal) slabOpt {
	return func(f *model.SlabFields) {
		f.AmountRangeFrom = from
		f.AmountRangeTo = to
	}
}

func withOverrides(female, child, senior *decimal.Decimal) slabOpt {
	return func(f *model.SlabFields) {
		f.FemaleRate = female
		f.ChildRate = child
		f.SeniorRate = senior
	}
}

func slab(from int, to *int, rate string, opts ...slabOpt) *model.Slab {
	f := model.SlabFields{
		PeriodUnit:   model.PeriodMonths,
		FromPeriod:   from,
		ToPeriod:     to,
		BaseRate:     *dec(rate),
		CurrencyCode: "SEK",
	}
	for _, o := range opts {
		o(&f)
	}
	return model.NewSlab(f)
}

func sekChart(slabs ...*model.Slab) model.RateChart {
	return model.RateChart{Bank: "Testbanken", Currency: "SEK", Slabs: slabs}
}
