package audit

import "fmt"

// CheckEvent records an authorization decision on an item
type CheckEvent struct {
	User      string
	ClientIP  string
	ItemType  string
	ItemID    string
	Privilege string
	Allowed   bool
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	outcome := "allowed"
	if !e.Allowed {
		outcome = "denied"
	}
	return fmt.Sprintf("%s checked permission %s on %s %s: %s", e.User, e.Privilege, e.ItemType, e.ItemID, outcome)
}

func (e CheckEvent) Severity() Severity {
	if e.Allowed {
		return SeverityInfo
	}
	return SeverityNotice
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"type":      e.ItemType,
			"id":        e.ItemID,
			"privilege": e.Privilege,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    resultString(e.Allowed),
		},
	}
}
