package model

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Parameter names of the editable slab fields. They double as the keys of the
// change map returned by Slab.Update.
const (
	FieldDescription      = "description"
	FieldPeriodType       = "periodType"
	FieldFromPeriod       = "fromPeriod"
	FieldToPeriod         = "toPeriod"
	FieldAmountRangeFrom  = "amountRangeFrom"
	FieldAmountRangeTo    = "amountRangeTo"
	FieldBaseRate         = "annualInterestRate"
	FieldFemaleRate       = "interestRateForFemale"
	FieldChildRate        = "interestRateForChildren"
	FieldSeniorRate       = "interestRateForSeniorCitizen"
	FieldCurrencyCode     = "currencyCode"
	FieldChartSlabs       = "chartSlabs"
	FieldChartCurrency    = "currency"
	FieldChartSlabPeriods = "chartSlabPeriods"
)

// Validation error codes reported to a Validator.
const (
	CodeFromPeriodGreaterThanToPeriod = "from.period.is.greater.than.to.period"
	CodeAmountRangeFromGreaterThanTo  = "amount.range.from.is.greater.than.amount.range.to"
	CodeCannotBeBlank                 = "cannot.be.blank"
	CodeInvalidPeriodType             = "invalid.period.type"
	CodeInvalidValueType              = "invalid.value.type"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindDecimal
)

var fieldKinds = map[string]fieldKind{
	FieldDescription:     kindString,
	FieldPeriodType:      kindInt,
	FieldFromPeriod:      kindInt,
	FieldToPeriod:        kindInt,
	FieldAmountRangeFrom: kindDecimal,
	FieldAmountRangeTo:   kindDecimal,
	FieldBaseRate:        kindDecimal,
	FieldFemaleRate:      kindDecimal,
	FieldChildRate:       kindDecimal,
	FieldSeniorRate:      kindDecimal,
}

// ChangeSet carries new values for a partial slab update. A field absent from
// the change set never reports a change. Nil values clear optional fields.
// A value that cannot be read as its field's type reports no change either;
// Mistyped lists those values so Slab.Update can report them.
type ChangeSet interface {
	IsChangeInString(field string, current string) bool
	StringValue(field string) string
	IsChangeInInt(field string, current *int) bool
	IntValue(field string) *int
	IsChangeInDecimal(field string, current *decimal.Decimal) bool
	DecimalValue(field string) *decimal.Decimal
	Mistyped() map[string]any
}

// Validator accumulates business rule violations. Implementations must not
// stop at the first failure.
type Validator interface {
	Fail(field string, value any, code string)
}

var _ ChangeSet = Changes{}

// Changes is a map backed ChangeSet. Accepted values are nil and:
//   - string for text fields
//   - int, *int, int64, whole float64 or json.Number for integer fields
//   - decimal.Decimal, *decimal.Decimal, int, int64, float64, numeric string
//     or json.Number for decimal fields
//
// Anything else is returned by Mistyped. Keys that are not slab fields are
// left alone.
type Changes map[string]any

func (c Changes) Mistyped() map[string]any {
	bad := make(map[string]any)
	for field, raw := range c {
		kind, known := fieldKinds[field]
		if !known {
			continue
		}
		var ok bool
		switch kind {
		case kindString:
			_, ok = c.stringParam(field)
		case kindInt:
			_, ok = c.intParam(field)
		case kindDecimal:
			_, ok = c.decimalParam(field)
		}
		if !ok {
			bad[field] = raw
		}
	}
	return bad
}

func sortedFields(bad map[string]any) []string {
	fields := make([]string, 0, len(bad))
	for f := range bad {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

func (c Changes) IsChangeInString(field string, current string) bool {
	v, ok := c.stringParam(field)
	return ok && v != current
}

func (c Changes) StringValue(field string) string {
	v, _ := c.stringParam(field)
	return v
}

func (c Changes) IsChangeInInt(field string, current *int) bool {
	v, ok := c.intParam(field)
	if !ok {
		return false
	}
	if v == nil || current == nil {
		return v != current
	}
	return *v != *current
}

func (c Changes) IntValue(field string) *int {
	v, _ := c.intParam(field)
	return v
}

func (c Changes) IsChangeInDecimal(field string, current *decimal.Decimal) bool {
	v, ok := c.decimalParam(field)
	if !ok {
		return false
	}
	if v == nil || current == nil {
		return v != current
	}
	// 1.0 and 1.00 are the same rate
	return !v.Equal(*current)
}

func (c Changes) DecimalValue(field string) *decimal.Decimal {
	v, _ := c.decimalParam(field)
	return v
}

func (c Changes) stringParam(field string) (string, bool) {
	raw, ok := c[field]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	default:
		return "", false
	}
}

func (c Changes) intParam(field string) (*int, bool) {
	raw, ok := c[field]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case nil:
		return nil, true
	case int:
		return &v, true
	case *int:
		return cloneInt(v), true
	case int64:
		n := int(v)
		return &n, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, false
		}
		n := int(v)
		return &n, true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, false
		}
		n := int(i)
		return &n, true
	default:
		return nil, false
	}
}

func (c Changes) decimalParam(field string) (*decimal.Decimal, bool) {
	raw, ok := c[field]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case nil:
		return nil, true
	case decimal.Decimal:
		return &v, true
	case *decimal.Decimal:
		return cloneDecimal(v), true
	case int:
		d := decimal.NewFromInt(int64(v))
		return &d, true
	case int64:
		d := decimal.NewFromInt(v)
		return &d, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		d := decimal.NewFromFloat(v)
		return &d, true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, false
		}
		return &d, true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, false
		}
		return &d, true
	default:
		return nil, false
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
