package audit

import "fmt"

// SessionEvent records a sign in attempt
type SessionEvent struct {
	Login        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e SessionEvent) MessageID() string {
	return "session"
}

func (e SessionEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s signed in", UserName(e.Login))
	}
	return withError(fmt.Sprintf("%s failed to sign in", UserName(e.Login)), e.ErrorMessage)
}

func (e SessionEvent) Severity() Severity {
	return severityFor(e.Success)
}

func (e SessionEvent) Facility() int {
	return FacilityAuthPriv
}

func (e SessionEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": UserName(e.Login),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "sign-in",
			"result":    resultString(e.Success),
		},
	}
}
