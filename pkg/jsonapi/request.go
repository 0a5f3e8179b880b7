package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestResource is the data member of a create or update request
type RequestResource struct {
	ID            interface{}                `json:"id"`
	Type          string                     `json:"type"`
	Attributes    map[string]json.RawMessage `json:"attributes"`
	Relationships map[string]struct {
		Data json.RawMessage `json:"data"`
	} `json:"relationships"`
}

type requestDocument struct {
	Data *RequestResource `json:"data"`
}

// IDString is the id member as a string, or "" when absent
func (r *RequestResource) IDString() string {
	switch id := r.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// Parse reads a request document for resourceType. urlID is the id from the
// URL for updates and "" for creates.
func Parse(body io.Reader, resourceType, urlID string) (*RequestResource, error) {
	var doc requestDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, Unprocessable("Invalid JSON: " + err.Error())
	}
	if doc.Data == nil {
		return nil, Unprocessable("A POST/PUT request must have a data record")
	}
	data := doc.Data
	if data.Type == "" {
		return nil, Unprocessable("A POST/PUT request must specify a data:type")
	}
	if data.Type != resourceType {
		return nil, Unprocessable(fmt.Sprintf("The specified data:type does not match the URL's object (%s vs. %s)", data.Type, resourceType))
	}
	id := data.IDString()
	switch {
	case urlID == "" && id != "":
		return nil, Unprocessable("A POST request is not allowed to specify an id")
	case urlID != "" && id != "" && id != urlID:
		return nil, Unprocessable("id specified by the PUT request does not match object-id in the JSON input")
	}
	return data, nil
}

// HasAttribute reports whether the request set the attribute, even to null
func (r *RequestResource) HasAttribute(name string) bool {
	_, ok := r.Attributes[name]
	return ok
}

// HasRelationship reports whether the request set the relationship
func (r *RequestResource) HasRelationship(name string) bool {
	_, ok := r.Relationships[name]
	return ok
}

// RelationshipIDs returns the ids of a relationship, for either linkage
// form. ok is false when the relationship is absent.
func (r *RequestResource) RelationshipIDs(name string) (ids []uint, ok bool, err error) {
	rel, ok := r.Relationships[name]
	if !ok {
		return nil, false, nil
	}
	raw := bytes.TrimSpace(rel.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []uint{}, true, nil
	}

	var many []Identifier
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, true, relationshipError(name, err)
		}
	} else {
		var one Identifier
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, true, relationshipError(name, err)
		}
		many = []Identifier{one}
	}

	ids = make([]uint, 0, len(many))
	for _, ident := range many {
		id, err := strconv.ParseUint(ident.ID, 10, 64)
		if err != nil {
			return nil, true, relationshipError(name, err)
		}
		ids = append(ids, uint(id))
	}
	return ids, true, nil
}

// RelationshipID returns the single id of a to-one relationship
func (r *RequestResource) RelationshipID(name string) (*uint, bool, error) {
	ids, ok, err := r.RelationshipIDs(name)
	if err != nil || !ok || len(ids) == 0 {
		return nil, ok, err
	}
	return &ids[0], true, nil
}

func relationshipError(name string, err error) *Error {
	e := Unprocessable(fmt.Sprintf("Invalid %s relationship: %v", name, err))
	e.Source = &ErrorSource{Pointer: "/data/relationships/" + name}
	return e
}

// Require fails with one error per attribute that is missing or blank
func (r *RequestResource) Require(names ...string) error {
	var errs Errors
	for _, name := range names {
		raw, ok := r.Attributes[name]
		blank := !ok
		if ok {
			var v interface{}
			_ = json.Unmarshal(raw, &v)
			if s, isString := v.(string); v == nil || (isString && strings.TrimSpace(s) == "") {
				blank = true
			}
		}
		if blank {
			e := Unprocessable(humanize(name) + " can't be blank")
			e.Source = &ErrorSource{Pointer: "/data/attributes/" + name}
			errs = append(errs, e)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeAttributes fills dst, a pointer to an attribute struct, from the
// request attributes and runs its validate tags. Use pointer fields with
// omitnil so that attributes left out of a patch are nil.
func (r *RequestResource) DecodeAttributes(dst interface{}) error {
	raw, err := json.Marshal(r.Attributes)
	if err != nil {
		return Unprocessable(err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		e := Unprocessable("Invalid attributes: " + err.Error())
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			e.Source = &ErrorSource{Pointer: "/data/attributes/" + typeErr.Field}
		}
		return e
	}
	return Validate(dst)
}

// Validate runs validate tags and converts failures to error objects
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Unprocessable(err.Error())
	}
	errs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		e := Unprocessable(validationMessage(fe))
		e.Source = &ErrorSource{Pointer: "/data/attributes/" + fe.Field()}
		errs = append(errs, e)
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	name := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "min":
		if fe.Kind() == reflect.String && (fe.Tag() == "required" || fe.Param() == "1") {
			return name + " can't be blank"
		}
		return fmt.Sprintf("%s is too short (minimum is %s)", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, fe.Param())
	case "url":
		return name + " is not a valid URL"
	default:
		return name + " is invalid"
	}
}

// humanize turns "other_creators" into "Other creators"
func humanize(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
