package bibliographic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"golang.org/x/time/rate"

	"github.com/doodlesbykumbi/seek-in-go/pkg/cache"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
)

const (
	DefaultPubMedURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
	// NCBI allows three requests a second without an API key
	PubMedRequestsPerSecond = 3
	DefaultCacheTTL         = 24 * time.Hour
	defaultTimeout          = 30 * time.Second
	pubmedTool              = "seek"
)

// PubMedConfig configures the efetch client
type PubMedConfig struct {
	URL      string
	Email    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// PubMed fetches MEDLINE records from NCBI efetch
type PubMed struct {
	client  *req.Client
	url     string
	email   string
	ttl     time.Duration
	limiter *rate.Limiter
	cache   cache.Cache
}

// NewPubMed creates an efetch client. A nil cache falls back to process memory.
func NewPubMed(cfg PubMedConfig, c cache.Cache) *PubMed {
	if cfg.URL == "" {
		cfg.URL = DefaultPubMedURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if c == nil {
		c = cache.NewMemory()
	}
	return &PubMed{
		client:  req.C().SetTimeout(cfg.Timeout),
		url:     cfg.URL,
		email:   cfg.Email,
		ttl:     cfg.CacheTTL,
		limiter: rate.NewLimiter(PubMedRequestsPerSecond, 1),
		cache:   c,
	}
}

// Fetch looks up a PubMed ID
func (p *PubMed) Fetch(ctx context.Context, key string) (*Record, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrBlankKey
	}
	id, err := strconv.Atoi(key)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%q is not a valid PubMed ID", key)
	}
	text, err := p.FetchMedline(ctx, id)
	if err != nil {
		return nil, err
	}
	return ParseMedline(text)
}

// FetchMedline returns the raw MEDLINE text of a PubMed ID. Responses
// without a record are ErrNotFound and are not cached.
func (p *PubMed) FetchMedline(ctx context.Context, id int) (string, error) {
	key := "pubmed:" + strconv.Itoa(id)
	body, err := cache.GetOrLoad(ctx, p.cache, key, p.ttl, func() ([]byte, error) {
		return p.efetch(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (p *PubMed) efetch(ctx context.Context, id int) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"db":      "pubmed",
			"id":      strconv.Itoa(id),
			"retmode": "text",
			"rettype": "medline",
			"tool":    pubmedTool,
			"email":   p.email,
		}).
		Post(p.url)
	if err != nil {
		metrics.RecordExternalRequest("pubmed", 0)
		logging.Log.WithError(err).WithField("pubmed_id", id).Error("PubMed request failed")
		return nil, &ServiceError{Service: "PubMed", Err: err}
	}
	metrics.RecordExternalRequest("pubmed", resp.GetStatusCode())
	if !resp.IsSuccessState() {
		logging.Log.WithFields(logging.Fields{
			"pubmed_id": id,
			"status":    resp.GetStatusCode(),
		}).Error("PubMed request failed")
		return nil, &ServiceError{Service: "PubMed", StatusCode: resp.GetStatusCode()}
	}

	body := resp.Bytes()
	if !strings.Contains(string(body), "PMID-") {
		return nil, ErrNotFound
	}
	return body, nil
}
