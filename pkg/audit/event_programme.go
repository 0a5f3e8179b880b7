package audit

import "fmt"

// ProgrammeEvent records an admin activating or rejecting a programme
type ProgrammeEvent struct {
	User        string
	ClientIP    string
	ProgrammeID string
	Operation   string // "activate" or "reject"
	Reason      string
	Success     bool
}

func (e ProgrammeEvent) MessageID() string {
	return "programme"
}

func (e ProgrammeEvent) Message() string {
	if !e.Success {
		return fmt.Sprintf("%s tried to %s programme %s", e.User, e.Operation, e.ProgrammeID)
	}
	if e.Operation == "reject" && e.Reason != "" {
		return fmt.Sprintf("%s rejected programme %s: %s", e.User, e.ProgrammeID, e.Reason)
	}
	return fmt.Sprintf("%s %sd programme %s", e.User, e.Operation, e.ProgrammeID)
}

func (e ProgrammeEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e ProgrammeEvent) Facility() int {
	return FacilityLocal0
}

func (e ProgrammeEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"type": "Programme",
			"id":   e.ProgrammeID,
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
