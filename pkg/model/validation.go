package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is a single failed validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed validation of a record
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, ", ")
}

// Add appends a validation failure
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when empty
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidationError reports whether err carries validation failures
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

// validateStruct runs the struct's validate tags. messages maps a struct
// field name to the user facing message for any failure on that field.
func validateStruct(s interface{}, messages map[string]string) ValidationErrors {
	var out ValidationErrors
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("", err.Error())
		return out
	}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Add(strings.ToLower(fe.Field()), msg)
	}
	return out
}
