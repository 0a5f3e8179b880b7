package bibliographic

import "strings"

var doiPrefixes = []string{
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"https://doi.org/",
	"http://doi.org/",
	"dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI strips surrounding whitespace and any url or "doi:" prefix,
// so "DOI: 10.1371/x" and "https://doi.org/10.1371/x" both become "10.1371/x"
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(lower, prefix) {
			doi = strings.TrimSpace(doi[len(prefix):])
			break
		}
	}
	return doi
}

// DOIURL is the resolver url of a normalized DOI
func DOIURL(doi string) string {
	return "https://doi.org/" + doi
}
