package audit

import "fmt"

// Operations recorded by ChangeEvent
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// ChangeEvent records a create, update or delete of a catalog item
type ChangeEvent struct {
	User         string
	ClientIP     string
	ItemType     string
	ItemID       string
	Operation    string
	Success      bool
	ErrorMessage string
}

func (e ChangeEvent) MessageID() string {
	return e.Operation
}

func (e ChangeEvent) Message() string {
	item := e.ItemType
	if e.ItemID != "" {
		item = fmt.Sprintf("%s %s", e.ItemType, e.ItemID)
	}
	if e.Success {
		return fmt.Sprintf("%s %sd %s", e.User, e.Operation, item)
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.User, e.Operation, item), e.ErrorMessage)
}

func (e ChangeEvent) Severity() Severity {
	return severityFor(e.Success)
}

func (e ChangeEvent) Facility() int {
	return FacilityLocal0
}

func (e ChangeEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"type": e.ItemType,
			"id":   e.ItemID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    resultString(e.Success),
		},
	}
}
