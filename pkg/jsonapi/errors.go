package jsonapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// Error is a JSON:API error object. It is also a Go error so parse and
// validation failures can be returned directly.
type Error struct {
	Status string       `json:"status"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points into the request document
type ErrorSource struct {
	Pointer string `json:"pointer,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// NewError builds an error object for an HTTP status
func NewError(status int, detail string) *Error {
	return &Error{
		Status: strconv.Itoa(status),
		Title:  http.StatusText(status),
		Detail: detail,
	}
}

// Unprocessable is a 422 error
func Unprocessable(detail string) *Error {
	return NewError(http.StatusUnprocessableEntity, detail)
}

// Errors is a set of error objects returned together
type Errors []*Error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, ", ")
}

// AsErrors unwraps err into error objects. Unknown errors become a single
// 500.
func AsErrors(err error) []*Error {
	var many Errors
	if errors.As(err, &many) {
		return many
	}
	var one *Error
	if errors.As(err, &one) {
		return []*Error{one}
	}
	var invalid model.ValidationErrors
	if errors.As(err, &invalid) {
		return FromValidation(invalid)
	}
	return []*Error{NewError(http.StatusInternalServerError, err.Error())}
}

var relationshipFields = map[string]bool{
	"investigation": true,
	"study":         true,
	"projects":      true,
	"sample_type":   true,
}

// FromValidation turns record validation failures into 422 errors pointing
// at the offending member
func FromValidation(v model.ValidationErrors) Errors {
	out := make(Errors, 0, len(v))
	for _, fe := range v {
		e := Unprocessable(fe.Message)
		switch {
		case fe.Field == "":
		case relationshipFields[fe.Field]:
			e.Source = &ErrorSource{Pointer: "/data/relationships/" + fe.Field}
		default:
			e.Source = &ErrorSource{Pointer: "/data/attributes/" + fe.Field}
		}
		out = append(out, e)
	}
	return out
}
