package audit

import "fmt"

// SearchEvent records a catalog search
type SearchEvent struct {
	User       string
	ClientIP   string
	Query      string
	SearchType string
	External   bool
	Results    int
}

func (e SearchEvent) MessageID() string {
	return "search"
}

func (e SearchEvent) Message() string {
	return fmt.Sprintf("%s searched %s for '%s' (%d results)", e.user(), e.SearchType, e.Query, e.Results)
}

func (e SearchEvent) Severity() Severity {
	return SeverityInfo
}

func (e SearchEvent) Facility() int {
	return FacilityLocal0
}

func (e SearchEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.user(),
		},
		SDIDSearch: {
			"query":    e.Query,
			"type":     e.SearchType,
			"external": fmt.Sprintf("%t", e.External),
			"results":  fmt.Sprintf("%d", e.Results),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
}

func (e SearchEvent) user() string {
	if e.User == "" {
		return Anonymous
	}
	return e.User
}
