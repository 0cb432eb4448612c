package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMissingFields = errors.New("required fields are missing")

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateForm reports the names of empty required fields as ErrMissingFields.
// Callers trim their input first so whitespace-only values count as empty.
func validateForm(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(fields, ", "))
}
