package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// SlabFields is the plain value a Slab is built from and read back as.
type SlabFields struct {
	Description     string
	PeriodUnit      PeriodUnit
	FromPeriod      int
	ToPeriod        *int
	AmountRangeFrom *decimal.Decimal
	AmountRangeTo   *decimal.Decimal
	BaseRate        decimal.Decimal
	FemaleRate      *decimal.Decimal
	ChildRate       *decimal.Decimal
	SeniorRate      *decimal.Decimal
	CurrencyCode    string
}

// Slab is one tier of an interest rate chart: a rate valid over a period range
// and an optional deposit amount range. After construction it only changes
// through Update. A Slab is not safe for concurrent updates.
type Slab struct {
	description     string
	periodUnit      PeriodUnit
	fromPeriod      int
	toPeriod        *int
	amountRangeFrom *decimal.Decimal
	amountRangeTo   *decimal.Decimal
	baseRate        decimal.Decimal
	femaleRate      *decimal.Decimal
	childRate       *decimal.Decimal
	seniorRate      *decimal.Decimal
	currencyCode    string
}

// NewSlab builds a slab from f without validating it, see Validate.
func NewSlab(f SlabFields) *Slab {
	return &Slab{
		description:     f.Description,
		periodUnit:      f.PeriodUnit,
		fromPeriod:      f.FromPeriod,
		toPeriod:        cloneInt(f.ToPeriod),
		amountRangeFrom: cloneDecimal(f.AmountRangeFrom),
		amountRangeTo:   cloneDecimal(f.AmountRangeTo),
		baseRate:        f.BaseRate,
		femaleRate:      cloneDecimal(f.FemaleRate),
		childRate:       cloneDecimal(f.ChildRate),
		seniorRate:      cloneDecimal(f.SeniorRate),
		currencyCode:    f.CurrencyCode,
	}
}

// Fields returns a copy of the slab's current values.
func (s *Slab) Fields() SlabFields {
	return SlabFields{
		Description:     s.description,
		PeriodUnit:      s.periodUnit,
		FromPeriod:      s.fromPeriod,
		ToPeriod:        cloneInt(s.toPeriod),
		AmountRangeFrom: cloneDecimal(s.amountRangeFrom),
		AmountRangeTo:   cloneDecimal(s.amountRangeTo),
		BaseRate:        s.baseRate,
		FemaleRate:      cloneDecimal(s.femaleRate),
		ChildRate:       cloneDecimal(s.childRate),
		SeniorRate:      cloneDecimal(s.seniorRate),
		CurrencyCode:    s.currencyCode,
	}
}

// Update applies every field of changes that differs from the current value
// and returns the applied values keyed by field name. The structural rules are
// re-checked afterwards and violations go to v; the update is kept either way.
// Values of the wrong type are reported as CodeInvalidValueType and skipped.
func (s *Slab) Update(changes ChangeSet, v Validator) map[string]any {
	actual := make(map[string]any)

	bad := changes.Mistyped()
	for _, field := range sortedFields(bad) {
		v.Fail(field, bad[field], CodeInvalidValueType)
	}

	if changes.IsChangeInString(FieldDescription, s.description) {
		nv := changes.StringValue(FieldDescription)
		actual[FieldDescription] = nv
		s.description = nv
	}

	code := s.periodUnit.Code()
	if changes.IsChangeInInt(FieldPeriodType, &code) {
		if nv := changes.IntValue(FieldPeriodType); nv == nil {
			v.Fail(FieldPeriodType, nil, CodeCannotBeBlank)
		} else if unit, err := ParsePeriodUnit(*nv); err != nil {
			v.Fail(FieldPeriodType, *nv, CodeInvalidPeriodType)
		} else {
			actual[FieldPeriodType] = *nv
			s.periodUnit = unit
		}
	}

	from := s.fromPeriod
	if changes.IsChangeInInt(FieldFromPeriod, &from) {
		if nv := changes.IntValue(FieldFromPeriod); nv == nil {
			v.Fail(FieldFromPeriod, nil, CodeCannotBeBlank)
		} else {
			actual[FieldFromPeriod] = *nv
			s.fromPeriod = *nv
		}
	}

	if changes.IsChangeInInt(FieldToPeriod, s.toPeriod) {
		nv := changes.IntValue(FieldToPeriod)
		actual[FieldToPeriod] = nv
		s.toPeriod = nv
	}

	s.amountRangeFrom = updateDecimal(changes, actual, FieldAmountRangeFrom, s.amountRangeFrom)
	s.amountRangeTo = updateDecimal(changes, actual, FieldAmountRangeTo, s.amountRangeTo)

	base := s.baseRate
	if changes.IsChangeInDecimal(FieldBaseRate, &base) {
		if nv := changes.DecimalValue(FieldBaseRate); nv == nil {
			v.Fail(FieldBaseRate, nil, CodeCannotBeBlank)
		} else {
			actual[FieldBaseRate] = *nv
			s.baseRate = *nv
		}
	}

	s.femaleRate = updateDecimal(changes, actual, FieldFemaleRate, s.femaleRate)
	s.childRate = updateDecimal(changes, actual, FieldChildRate, s.childRate)
	s.seniorRate = updateDecimal(changes, actual, FieldSeniorRate, s.seniorRate)

	s.Validate(v)
	return actual
}

func updateDecimal(changes ChangeSet, actual map[string]any, field string, current *decimal.Decimal) *decimal.Decimal {
	if !changes.IsChangeInDecimal(field, current) {
		return current
	}
	nv := changes.DecimalValue(field)
	actual[field] = nv
	return nv
}

// Validate reports inverted period or amount ranges to v.
func (s *Slab) Validate(v Validator) {
	if s.IsFromPeriodGreaterThanToPeriod() {
		v.Fail(FieldFromPeriod, s.fromPeriod, CodeFromPeriodGreaterThanToPeriod)
	}
	if s.IsAmountRangeFromGreaterThanTo() {
		v.Fail(FieldAmountRangeFrom, *s.amountRangeFrom, CodeAmountRangeFromGreaterThanTo)
	}
}

func (s *Slab) IsFromPeriodGreaterThanToPeriod() bool {
	return s.toPeriod != nil && compareInt(s.fromPeriod, *s.toPeriod) > 0
}

func (s *Slab) IsAmountRangeFromGreaterThanTo() bool {
	return s.amountRangeFrom != nil && s.amountRangeTo != nil && s.amountRangeFrom.Cmp(*s.amountRangeTo) > 0
}

// ElapsedPeriods counts whole periods of the slab's unit between two dates.
// Callers must ensure end is not before start.
func (s *Slab) ElapsedPeriods(start, end civil.Date) int {
	return s.periodUnit.Between(start, end)
}

// MatchesPeriod reports whether the elapsed periods fall in [from, to], with an
// absent to meaning unbounded.
func (s *Slab) MatchesPeriod(start, end civil.Date) bool {
	elapsed := s.ElapsedPeriods(start, end)
	if elapsed < s.fromPeriod {
		return false
	}
	return s.toPeriod == nil || elapsed <= *s.toPeriod
}

// MatchesAmount reports whether amount lies within the slab's amount bounds.
// Both bounds are inclusive and each may be absent.
func (s *Slab) MatchesAmount(amount decimal.Decimal) bool {
	if s.amountRangeFrom != nil && amount.LessThan(*s.amountRangeFrom) {
		return false
	}
	if s.amountRangeTo != nil && amount.GreaterThan(*s.amountRangeTo) {
		return false
	}
	return true
}

// Overlaps reports whether the period ranges of s and other intersect. An
// absent to period is treated as unbounded on either side.
func (s *Slab) Overlaps(other *Slab) bool {
	if other.toPeriod == nil {
		if s.toPeriod == nil {
			return true
		}
		return other.fromPeriod <= *s.toPeriod
	}
	if s.toPeriod == nil {
		// unbounded s reaches every period from its start on
		return s.fromPeriod <= *other.toPeriod
	}
	return s.fromPeriod <= *other.toPeriod && other.fromPeriod <= *s.toPeriod
}

func (s *Slab) IsOpenEnded() bool {
	return s.toPeriod == nil
}

// AmountRangeProvided reports whether the slab has a lower amount bound. A
// slab with only an upper bound counts as not amount ranged.
func (s *Slab) AmountRangeProvided() bool {
	return s.amountRangeFrom != nil
}

func (s *Slab) Description() string { return s.description }
func (s *Slab) PeriodUnit() PeriodUnit { return s.periodUnit }
func (s *Slab) FromPeriod() int { return s.fromPeriod }
func (s *Slab) ToPeriod() *int { return cloneInt(s.toPeriod) }
func (s *Slab) AmountRangeFrom() *decimal.Decimal { return cloneDecimal(s.amountRangeFrom) }
func (s *Slab) AmountRangeTo() *decimal.Decimal { return cloneDecimal(s.amountRangeTo) }
func (s *Slab) BaseRate() decimal.Decimal { return s.baseRate }
func (s *Slab) FemaleRate() *decimal.Decimal { return cloneDecimal(s.femaleRate) }
func (s *Slab) ChildRate() *decimal.Decimal { return cloneDecimal(s.childRate) }
func (s *Slab) SeniorRate() *decimal.Decimal { return cloneDecimal(s.seniorRate) }
func (s *Slab) CurrencyCode() string { return s.currencyCode }

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
