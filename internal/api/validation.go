package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rcssa/match-api/internal/domain"
)

// NewValidator returns a validator that knows the "major" and
// "graduation_year" tags for rules, and reports fields by their JSON names.
func NewValidator(rules domain.ProfileRules) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("major", func(fl validator.FieldLevel) bool {
		return rules.Majors == nil || rules.Majors.Contains(fl.Field().String())
	})
	_ = v.RegisterValidation("graduation_year", func(fl validator.FieldLevel) bool {
		if rules.MinGraduationYear == 0 && rules.MaxGraduationYear == 0 {
			return true
		}
		year := int(fl.Field().Int())
		return year >= rules.MinGraduationYear && year <= rules.MaxGraduationYear
	})

	return v
}

// validateRequest validates req and converts failures into a
// *domain.ValidationError keyed by JSON field name.
func validateRequest(v *validator.Validate, rules domain.ProfileRules, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ve := &domain.ValidationError{Err: domain.ErrValidation}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), tagMessage(fe.Tag(), rules))
	}
	return ve
}

// tagMessage maps validation tags to user-friendly error messages.
func tagMessage(tag string, rules domain.ProfileRules) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "max":
		return "is too long"
	case "major":
		return "is not a recognized major"
	case "graduation_year":
		return fmt.Sprintf("must be between %d and %d", rules.MinGraduationYear, rules.MaxGraduationYear)
	default:
		return "is invalid"
	}
}
