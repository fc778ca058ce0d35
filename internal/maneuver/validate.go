package maneuver

import (
	"fmt"
	"math"
	"strconv"

	"github.com/seaplan/mplan/pkg/core"
)

// ValidationError describes a questionable parameter. Validation is advisory; importing and
// exporting never fail because of it.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the common fields of m and, when m implements Validator, its own parameters.
func Validate(m Maneuver) []ValidationError {
	b := m.Common()
	var errs []ValidationError
	if b.MinTime < 0 {
		errs = append(errs, ValidationError{Field: "minTime", Message: "must not be negative"})
	}
	if b.MaxTime <= 0 {
		errs = append(errs, ValidationError{Field: "maxTime", Message: "must be positive"})
	}
	for _, s := range b.custom {
		if err := checkHint(s); err != nil {
			errs = append(errs, ValidationError{Field: "custom." + s.Name, Message: err.Error()})
		}
	}
	if v, ok := m.(Validator); ok {
		errs = append(errs, v.ValidateParams()...)
	}
	return errs
}

func checkHint(s core.Setting) error {
	switch s.Hint {
	case core.HintNumber:
		if _, err := strconv.ParseFloat(s.Value, 64); err != nil {
			return fmt.Errorf("%q is not a number", s.Value)
		}
	case core.HintBoolean:
		if _, err := strconv.ParseBool(s.Value); err != nil {
			return fmt.Errorf("%q is not a boolean", s.Value)
		}
	}
	return nil
}

func validateSpeed(s core.Speed) []ValidationError {
	if s.Value < 0 || math.IsNaN(s.Value) {
		return []ValidationError{{Field: "speed", Message: "must not be negative"}}
	}
	return nil
}

func nonNegative(field string, v float64) []ValidationError {
	if v < 0 || math.IsNaN(v) {
		return []ValidationError{{Field: field, Message: "must not be negative"}}
	}
	return nil
}

func positive(field string, v float64) []ValidationError {
	if !(v > 0) {
		return []ValidationError{{Field: field, Message: "must be positive"}}
	}
	return nil
}
