package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldLabels = map[string]string{
	"ChallengedID":     "Opponent",
	"ProblemID":        "Problem",
	"ProblemName":      "Problem name",
	"TimeLimitMinutes": "Time limit",
}

// fieldUnits names what a bound counts for numeric fields; strings count characters.
var fieldUnits = map[string]string{
	"TimeLimitMinutes": "minutes",
}

// FormatValidationError joins one readable message per failed field.
func FormatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return strings.Join(messages, "; ")
}

func describe(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, bound(fe))
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, bound(fe))
	default:
		return label + " is invalid"
	}
}

func bound(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return fe.Param() + " characters"
	}
	if unit, ok := fieldUnits[fe.Field()]; ok {
		return fe.Param() + " " + unit
	}
	return fe.Param()
}
