package apperror

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError turns binding errors into a VALIDATION_ERROR keyed by
// json field names. Field names come from the tag name func registered in Init.
func MapValidationError(err error) *AppError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return ErrValidation.WithError(err)
	}

	fields := make(FieldErrors, len(errs))
	for _, e := range errs {
		fieldName := e.Field()
		humanReadableField := formatFieldName(fieldName)

		switch e.Tag() {
		case "required":
			fields[fieldName] = humanReadableField + " is required"
		case "max":
			fields[fieldName] = humanReadableField + " must be at most " + e.Param() + " characters"
		case "oneof":
			fields[fieldName] = humanReadableField + " must be one of " + e.Param()
		default:
			fields[fieldName] = humanReadableField + " is invalid"
		}
	}
	return ErrValidation.WithDetails(fields)
}
