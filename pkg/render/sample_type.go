package render

import (
	"fmt"
	"html"
	"html/template"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// RequiredSpan marks a required field
const RequiredSpan = `<span class="required">*</span>`

// SampleAttributeDetails describes a sample attribute as
// "title (type) ( unit ) *". The attribute type and unit must be loaded.
func SampleAttributeDetails(attr *model.SampleAttribute) template.HTML {
	attrType := ""
	if attr.SampleAttributeType != nil {
		attrType = attr.SampleAttributeType.Title
	}
	unit := ""
	if attr.Unit != nil {
		unit = fmt.Sprintf("( %s )", attr.Unit.Symbol)
	}
	req := ""
	if attr.Required {
		req = RequiredSpan
	}
	return template.HTML(fmt.Sprintf("%s (%s) %s %s", html.EscapeString(attr.Title), attrType, unit, req))
}
