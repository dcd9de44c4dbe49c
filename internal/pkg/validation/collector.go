// Package validation accumulates business rule violations reported while
// building or editing rate charts.
package validation

import (
	"fmt"

	"github.com/ymakhloufi/deposit-slabs/internal/pkg/model"
	"go.uber.org/multierr"
)

var _ model.Validator = &Collector{}

// FieldError is one rejected field value.
type FieldError struct {
	Field string
	Value any
	Code  string
}

func (e FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Code)
	}
	return fmt.Sprintf("%s: %s (value %v)", e.Field, e.Code, e.Value)
}

// Collector records every failure it is given. The zero value is ready to use.
type Collector struct {
	errs []FieldError
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Fail(field string, value any, code string) {
	c.errs = append(c.errs, FieldError{Field: field, Value: value, Code: code})
}

func (c *Collector) Errors() []FieldError {
	out := make([]FieldError, len(c.errs))
	copy(out, c.errs)
	return out
}

func (c *Collector) HasErrors() bool {
	return len(c.errs) > 0
}

// HasCode reports whether any failure carries code.
func (c *Collector) HasCode(code string) bool {
	for _, e := range c.errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err combines all failures into one error, nil when there are none.
func (c *Collector) Err() error {
	var err error
	for _, e := range c.errs {
		err = multierr.Append(err, e)
	}
	return err
}
