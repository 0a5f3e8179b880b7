package audit

import "fmt"

// FetchEvent records a metadata lookup against PubMed or CrossRef
type FetchEvent struct {
	User         string
	ClientIP     string
	Protocol     string // "pubmed" or "doi"
	Key          string
	Success      bool
	ErrorMessage string
}

func (e FetchEvent) MessageID() string {
	return "fetch"
}

func (e FetchEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s fetched %s %s", e.User, e.Protocol, e.Key)
	}
	return withError(fmt.Sprintf("%s tried to fetch %s %s", e.User, e.Protocol, e.Key), e.ErrorMessage)
}

func (e FetchEvent) Severity() Severity {
	return severityFor(e.Success)
}

func (e FetchEvent) Facility() int {
	return FacilityLocal0
}

func (e FetchEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.User,
		},
		SDIDSubject: {
			"protocol": e.Protocol,
			"key":      e.Key,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "fetch",
			"result":    resultString(e.Success),
		},
	}
}
