package validator

import (
	"maps"
	"slices"
	"strings"

	"github.com/garrettladley/wext/internal/apperr"
)

type Validator interface {
	// Validate validates the fields of the struct and returns a map of errors.
	// returns nil if no errors are found
	Validate() map[string]string
}

// Validate reports the first offending field, in name order, as a 422.
func Validate(v Validator) *apperr.Error {
	errs := v.Validate()
	if len(errs) == 0 {
		return nil
	}

	fields := slices.Sorted(maps.Keys(errs))
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+" "+errs[f])
	}
	return apperr.Validation(fields[0], strings.Join(msgs, "; "))
}
