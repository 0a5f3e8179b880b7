package audit

import "fmt"

// DownloadEvent records a content blob download
type DownloadEvent struct {
	User         string
	ClientIP     string
	ItemType     string
	ItemID       string
	Version      string
	Success      bool
	ErrorMessage string
}

func (e DownloadEvent) MessageID() string {
	return "download"
}

func (e DownloadEvent) Message() string {
	item := fmt.Sprintf("%s %s", e.ItemType, e.ItemID)
	if e.Version != "" {
		item = fmt.Sprintf("version %s of %s", e.Version, item)
	}
	if e.Success {
		return fmt.Sprintf("%s downloaded %s", e.User, item)
	}
	return withError(fmt.Sprintf("%s tried to download %s", e.User, item), e.ErrorMessage)
}

func (e DownloadEvent) Severity() Severity {
	return severityFor(e.Success)
}

func (e DownloadEvent) Facility() int {
	return FacilityAuthPriv
}

func (e DownloadEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
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
			"operation": "download",
			"result":    resultString(e.Success),
		},
	}
	if e.Version != "" {
		sd[SDIDSubject]["version"] = e.Version
	}
	return sd
}
