package bibliographic

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/tidwall/gjson"

	"github.com/doodlesbykumbi/seek-in-go/pkg/cache"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
)

const (
	DefaultCrossRefURL = "https://api.crossref.org/works"
	// ExternalSource names CrossRef hits in search results
	ExternalSource    = "crossref"
	externalMaxHits   = 10
	crossrefPreprints = "posted-content"
)

// CrossRefConfig configures the works API client
type CrossRefConfig struct {
	URL      string
	Email    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// CrossRef fetches DOI metadata from the CrossRef works API
type CrossRef struct {
	client *req.Client
	url    string
	email  string
	ttl    time.Duration
	cache  cache.Cache
}

var _ search.ExternalSearcher = (*CrossRef)(nil)

// NewCrossRef creates a works API client. A nil cache falls back to process memory.
func NewCrossRef(cfg CrossRefConfig, c cache.Cache) *CrossRef {
	if cfg.URL == "" {
		cfg.URL = DefaultCrossRefURL
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
	return &CrossRef{
		client: req.C().SetTimeout(cfg.Timeout),
		url:    strings.TrimRight(cfg.URL, "/"),
		email:  cfg.Email,
		ttl:    cfg.CacheTTL,
		cache:  c,
	}
}

// Fetch looks up a DOI, in any of the forms NormalizeDOI accepts
func (c *CrossRef) Fetch(ctx context.Context, key string) (*Record, error) {
	doi := NormalizeDOI(key)
	if doi == "" {
		return nil, ErrBlankKey
	}
	body, err := cache.GetOrLoad(ctx, c.cache, "crossref:"+strings.ToLower(doi), c.ttl, func() ([]byte, error) {
		return c.get(ctx, c.url+"/"+doi, nil)
	})
	if err != nil {
		return nil, err
	}
	return ParseCrossRef(body)
}

// SearchExternal runs a bibliographic query against CrossRef. Only
// publication searches (or "all") reach out.
func (c *CrossRef) SearchExternal(ctx context.Context, query, itemType string) ([]model.Item, error) {
	if itemType != search.AllTypes && itemType != "Publication" {
		return nil, nil
	}
	body, err := c.get(ctx, c.url, map[string]string{
		"query.bibliographic": query,
		"rows":                strconv.Itoa(externalMaxHits),
		"select":              "DOI,title",
	})
	if err != nil {
		return nil, err
	}

	var items []model.Item
	gjson.GetBytes(body, "message.items").ForEach(func(_, hit gjson.Result) bool {
		doi := hit.Get("DOI").String()
		if doi == "" {
			return true
		}
		items = append(items, &search.ExternalItem{
			Source: ExternalSource,
			Key:    doi,
			Title:  cleanText(hit.Get("title.0").String()),
			URL:    DOIURL(doi),
		})
		return true
	})
	return items, nil
}

func (c *CrossRef) get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	r := c.client.R().SetContext(ctx)
	if params != nil {
		r.SetQueryParams(params)
	}
	if c.email != "" {
		r.SetQueryParam("mailto", c.email)
	}
	resp, err := r.Get(url)
	if err != nil {
		metrics.RecordExternalRequest("crossref", 0)
		logging.Log.WithError(err).WithField("url", url).Error("CrossRef request failed")
		return nil, &ServiceError{Service: "CrossRef", Err: err}
	}
	metrics.RecordExternalRequest("crossref", resp.GetStatusCode())
	if resp.GetStatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !resp.IsSuccessState() {
		logging.Log.WithFields(logging.Fields{
			"url":    url,
			"status": resp.GetStatusCode(),
		}).Error("CrossRef request failed")
		return nil, &ServiceError{Service: "CrossRef", StatusCode: resp.GetStatusCode()}
	}
	return resp.Bytes(), nil
}

// ParseCrossRef reads a works API response
func ParseCrossRef(body []byte) (*Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{Source: "crossref", Err: errInvalidJSON}
	}
	msg := gjson.GetBytes(body, "message")
	if !msg.Exists() {
		return nil, ErrNotFound
	}

	r := &Record{
		DOI:      NormalizeDOI(msg.Get("DOI").String()),
		Title:    cleanText(msg.Get("title.0").String()),
		Abstract: cleanText(msg.Get("abstract").String()),
		Journal:  cleanText(msg.Get("container-title.0").String()),
		Volume:   msg.Get("volume").String(),
		Issue:    msg.Get("issue").String(),
		Pages:    msg.Get("page").String(),
	}
	if msg.Get("type").String() == crossrefPreprints || msg.Get("subtype").String() == "preprint" {
		r.PublicationType = "preprint"
	}
	msg.Get("author").ForEach(func(_, author gjson.Result) bool {
		family := author.Get("family").String()
		if family == "" {
			family = author.Get("name").String()
		}
		r.Authors = append(r.Authors, Author{
			FirstName: author.Get("given").String(),
			LastName:  family,
		})
		return true
	})
	for _, path := range []string{"published-print", "published-online", "posted", "issued"} {
		if t, year, ok := dateParts(msg.Get(path + ".date-parts.0")); ok {
			r.PublishedDate, r.Year = &t, year
			break
		}
	}
	return r, nil
}

// dateParts reads [year, month, day] where month and day are optional
func dateParts(parts gjson.Result) (time.Time, int, bool) {
	values := parts.Array()
	if len(values) == 0 || values[0].Int() == 0 {
		return time.Time{}, 0, false
	}
	year, month, day := int(values[0].Int()), 1, 1
	if len(values) > 1 && values[1].Int() > 0 {
		month = int(values[1].Int())
	}
	if len(values) > 2 && values[2].Int() > 0 {
		day = int(values[2].Int())
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), year, true
}

var markupTags = regexp.MustCompile(`<[^>]+>`)

// cleanText drops the JATS markup CrossRef puts in titles and abstracts
func cleanText(s string) string {
	return strings.Join(strings.Fields(markupTags.ReplaceAllString(s, " ")), " ")
}
