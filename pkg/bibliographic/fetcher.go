package bibliographic

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProtocolPubMed = "pubmed"
	ProtocolDOI    = "doi"
)

// Source looks up a single publication by key
type Source interface {
	Fetch(ctx context.Context, key string) (*Record, error)
}

// Fetcher dispatches a lookup to PubMed or CrossRef by protocol
type Fetcher struct {
	sources map[string]Source
}

// NewFetcher creates a fetcher over a PubMed and a DOI source
func NewFetcher(pubmed, doi Source) *Fetcher {
	return &Fetcher{sources: map[string]Source{
		ProtocolPubMed: pubmed,
		ProtocolDOI:    doi,
	}}
}

// Fetch looks up key with the named protocol
func (f *Fetcher) Fetch(ctx context.Context, protocol, key string) (*Record, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrBlankKey
	}
	source, ok := f.sources[strings.ToLower(protocol)]
	if !ok || source == nil {
		return nil, fmt.Errorf("unknown protocol %q", protocol)
	}
	return source.Fetch(ctx, key)
}
