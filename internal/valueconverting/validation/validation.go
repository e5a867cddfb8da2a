// Package validation checks a ValueConvertingDto against its field rules and
// renders the resulting violations into one message.
package validation

import (
	"sort"
	"strings"

	"valueconverting/internal/valueconverting/models"
	dErrors "valueconverting/pkg/domain-errors"
)

const mustNotBeNull = "must not be null"

// Violation is one failed rule. Path may be blank for object-level failures.
type Violation struct {
	Path    string
	Message string
}

type rule func(models.ValueConvertingDto) *Violation

func notNull[T any](path string, get func(models.ValueConvertingDto) *T) rule {
	return func(dto models.ValueConvertingDto) *Violation {
		if get(dto) == nil {
			return &Violation{Path: path, Message: mustNotBeNull}
		}
		return nil
	}
}

var rules = []rule{
	notNull("displayName", func(d models.ValueConvertingDto) *string { return d.DisplayName }),
	notNull("fromApplicationId", func(d models.ValueConvertingDto) *int64 { return d.FromApplicationID }),
	notNull("fromTypeId", func(d models.ValueConvertingDto) *string { return d.FromTypeID }),
	notNull("toApplicationId", func(d models.ValueConvertingDto) *string { return d.ToApplicationID }),
	notNull("toTypeId", func(d models.ValueConvertingDto) *string { return d.ToTypeID }),
	func(d models.ValueConvertingDto) *Violation {
		if d.ConvertingMap == nil {
			return &Violation{Path: "convertingMap", Message: mustNotBeNull}
		}
		return nil
	},
}

// Validate evaluates every rule and returns all violations, in rule order.
func Validate(dto models.ValueConvertingDto) []Violation {
	var out []Violation
	for _, r := range rules {
		if v := r(dto); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Format renders violations as
//
//	Validation error: ['displayName must not be null']
//
// Entries are sorted by their rendered form so the output does not depend on
// evaluation order.
func Format(violations []Violation) string {
	entries := make([]string, len(violations))
	for i, v := range violations {
		if strings.TrimSpace(v.Path) == "" {
			entries[i] = "'" + v.Message + "'"
		} else {
			entries[i] = "'" + v.Path + " " + v.Message + "'"
		}
	}
	sort.Strings(entries)

	prefix := "Validation errors:"
	if len(violations) == 1 {
		prefix = "Validation error:"
	}
	return prefix + " [" + strings.Join(entries, ", ") + "]"
}

// Check validates dto and returns a validation domain error carrying the
// formatted message, or nil.
func Check(dto models.ValueConvertingDto) error {
	violations := Validate(dto)
	if len(violations) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, Format(violations))
}
