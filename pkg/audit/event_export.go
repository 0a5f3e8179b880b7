package audit

import "fmt"

// ExportEvent records a publication export (EndNote, BibTeX, EMBL)
type ExportEvent struct {
	User         string
	ClientIP     string
	Format       string
	Count        int
	Success      bool
	ErrorMessage string
}

func (e ExportEvent) MessageID() string {
	return "export"
}

func (e ExportEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s exported %d publication(s) as %s", e.User, e.Count, e.Format)
	}
	return withError(fmt.Sprintf("%s tried to export publications as %s", e.User, e.Format), e.ErrorMessage)
}

func (e ExportEvent) Severity() Severity {
	return severityFor(e.Success)
}

func (e ExportEvent) Facility() int {
	return FacilityLocal0
}

func (e ExportEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"type":   "Publication",
			"format": e.Format,
			"count":  fmt.Sprintf("%d", e.Count),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "export",
			"result":    resultString(e.Success),
		},
	}
}
