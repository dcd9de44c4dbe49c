// Package chart picks the applicable slab of a rate chart and the rate it
// offers an account holder.
package chart

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/zap"
)

var (
	ErrEndBeforeStart = errors.New("chart: period end is before period start")
	ErrNoMatchingSlab = errors.New("chart: no slab matches period and amount")
)

type Category int

const (
	CategoryFemale Category = iota
	CategoryChild
	CategorySenior
)

// Holder carries the account holder flags a rate policy may look at.
type Holder struct {
	Female bool
	Child  bool
	Senior bool
}

func (h Holder) Has(c Category) bool {
	switch c {
	case CategoryFemale:
		return h.Female
	case CategoryChild:
		return h.Child
	case CategorySenior:
		return h.Senior
	default:
		return false
	}
}

// RatePolicy decides which of a slab's rates applies to a holder.
type RatePolicy func(s *model.Slab, h Holder) decimal.Decimal

// BaseRateOnly ignores every override.
func BaseRateOnly(s *model.Slab, _ Holder) decimal.Decimal {
	return s.BaseRate()
}

// FirstOverride returns the override of the first category in order that the
// holder belongs to and the slab defines, falling back to the base rate.
func FirstOverride(order ...Category) RatePolicy {
	return func(s *model.Slab, h Holder) decimal.Decimal {
		for _, c := range order {
			if !h.Has(c) {
				continue
			}
			if r := overrideRate(s, c); r != nil {
				return *r
			}
		}
		return s.BaseRate()
	}
}

// HighestRate returns the best rate among the base rate and every override the
// holder qualifies for.
func HighestRate(s *model.Slab, h Holder) decimal.Decimal {
	best := s.BaseRate()
	for _, c := range []Category{CategoryFemale, CategoryChild, CategorySenior} {
		if !h.Has(c) {
			continue
		}
		if r := overrideRate(s, c); r != nil && r.GreaterThan(best) {
			best = *r
		}
	}
	return best
}

func overrideRate(s *model.Slab, c Category) *decimal.Decimal {
	switch c {
	case CategoryFemale:
		return s.FemaleRate()
	case CategoryChild:
		return s.ChildRate()
	case CategorySenior:
		return s.SeniorRate()
	default:
		return nil
	}
}

type Evaluator struct {
	policy RatePolicy
	logger *zap.Logger
}

func NewEvaluator(policy RatePolicy, logger *zap.Logger) *Evaluator {
	if policy == nil {
		policy = BaseRateOnly
	}
	return &Evaluator{policy: policy, logger: logger}
}

// Find returns the first slab, by from period, whose period range covers the
// time between start and end and whose amount range covers amount.
func (e *Evaluator) Find(c model.RateChart, start, end civil.Date, amount decimal.Decimal) (*model.Slab, error) {
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	for _, s := range SortedByFromPeriod(c.Slabs) {
		if s.MatchesPeriod(start, end) && s.MatchesAmount(amount) {
			return s, nil
		}
	}

	e.logger.Debug("no slab matched",
		zap.String("bank", string(c.Bank)),
		zap.String("currency", c.Currency),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.String("amount", amount.String()),
	)
	return nil, ErrNoMatchingSlab
}

// FindInTiers looks through the amount tier charts of one bank in order and
// returns the first slab found.
func (e *Evaluator) FindInTiers(charts []model.RateChart, start, end civil.Date, amount decimal.Decimal) (*model.Slab, error) {
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	for _, c := range charts {
		s, err := e.Find(c, start, end, amount)
		if errors.Is(err, ErrNoMatchingSlab) {
			continue
		}
		return s, err
	}
	return nil, ErrNoMatchingSlab
}

// Rate finds the matching slab and applies the evaluator's rate policy to it.
func (e *Evaluator) Rate(c model.RateChart, start, end civil.Date, amount decimal.Decimal, h Holder) (decimal.Decimal, error) {
	return e.RateInTiers([]model.RateChart{c}, start, end, amount, h)
}

// RateInTiers is Rate over the amount tier charts of one bank.
func (e *Evaluator) RateInTiers(charts []model.RateChart, start, end civil.Date, amount decimal.Decimal, h Holder) (decimal.Decimal, error) {
	s, err := e.FindInTiers(charts, start, end, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return e.policy(s, h), nil
}
