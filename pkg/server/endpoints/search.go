package endpoints

import (
	"errors"
	"html/template"
	"net/http"
	"sort"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
)

// RegisterSearchEndpoints registers GET /search
func RegisterSearchEndpoints(s *server.Server) {
	s.Router.HandleFunc("/search", handleSearch(s)).Methods("GET")
}

var searchPage = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" href="/css/status-page.css">
    <title>Search</title>
  </head>
  <body>
    <main>
      <div class="left-panel">
        <form action="/search" method="get">
          <input type="text" name="q" value="{{.Query}}">
          <input type="submit" value="Search">
        </form>
        {{if .Error}}<p class="flash-error">{{.Error}}</p>{{end}}
        {{if .Notice}}<p class="flash-notice">{{.Notice}}</p>{{end}}
        {{if .Scales}}
        <p>
          {{range .Scales}}<a href="?q={{$.Query}}&amp;scale={{.Key}}">{{.Key}} ({{.Count}})</a> {{end}}
        </p>
        {{end}}
        <ul class="search-results">
          {{range .Items}}<li>{{.Type}}: <a href="{{.URL}}">{{.Title}}</a></li>
          {{end}}
        </ul>
      </div>
    </main>
  </body>
</html>
`))

type searchPageItem struct {
	Type  string
	Title string
	URL   string
}

type searchPageScale struct {
	Key   string
	Count int
}

type searchPageData struct {
	Query  string
	Error  string
	Notice template.HTML
	Scales []searchPageScale
	Items  []searchPageItem
}

func renderSearchPage(w http.ResponseWriter, status int, data searchPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := searchPage.Execute(w, data); err != nil {
		logging.Log.WithError(err).Error("rendering search page")
	}
}

func searchRequest(r *http.Request) search.Request {
	params := r.URL.Query()
	return search.Request{
		Query:           params.Get("q"),
		SearchQuery:     params.Get("search_query"),
		Type:            params.Get("search_type"),
		JSON:            wantsJSON(r),
		IncludeExternal: params.Get("include_external_search") == "1",
		Filters:         search.ParseFilters(params),
		Scale:           params.Get("scale"),
		User:            currentUser(r),
	}
}

func handleSearch(s *server.Server) http.HandlerFunc {
	cfg := s.Config
	return func(w http.ResponseWriter, r *http.Request) {
		req := searchRequest(r)
		query := req.Query
		if query == "" {
			query = req.SearchQuery
		}

		var (
			result *search.Result
			err    = search.ErrServiceUnavailable
		)
		if s.Searcher != nil {
			result, err = s.Searcher.Search(r.Context(), req)
		}
		if err != nil {
			respondSearchError(w, r, cfg, query, err)
			return
		}

		audit.Log(audit.SearchEvent{
			User:       auditUser(r),
			ClientIP:   clientIP(r, cfg),
			Query:      result.Query,
			SearchType: result.Type,
			External:   req.IncludeExternal,
			Results:    len(result.Items),
		})

		if req.JSON {
			jsonapi.Write(w, http.StatusOK, jsonapi.List(s.Serializer.Skeletons(result.Items), s.Serializer.Meta()))
			return
		}

		data := searchPageData{
			Query:  result.Query,
			Notice: template.HTML(result.Notice()),
			Items:  make([]searchPageItem, 0, len(result.Items)),
		}
		if kind, msg := takeFlash(w, r); kind == "error" {
			data.Error = msg
		}
		for _, key := range scaleKeys(result.Scaled) {
			data.Scales = append(data.Scales, searchPageScale{Key: key, Count: len(result.Scaled[key])})
		}
		for _, item := range result.Items {
			data.Items = append(data.Items, searchPageItem{
				Type:  item.ItemType(),
				Title: item.ItemTitle(),
				URL:   s.Serializer.Self(item.ItemType(), item.ItemID()),
			})
		}
		renderSearchPage(w, http.StatusOK, data)
	}
}

// scaleKeys lists the scale groups with "all" first
func scaleKeys(scaled map[string][]model.Item) []string {
	if len(scaled) <= 1 {
		return nil
	}
	keys := []string{search.AllScales}
	for key := range scaled {
		if key != search.AllScales {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[1:])
	return keys
}

func respondSearchError(w http.ResponseWriter, r *http.Request, cfg *config.SeekConfig, query string, err error) {
	asJSON := wantsJSON(r)
	switch {
	case errors.Is(err, search.ErrSearchDisabled):
		if asJSON {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		renderSearchPage(w, http.StatusNotFound, searchPageData{Query: query, Error: err.Error()})
	case search.IsInvalidSearch(err):
		if asJSON {
			jsonapi.WriteErrors(w, jsonapi.Unprocessable(err.Error()))
			return
		}
		renderSearchPage(w, http.StatusOK, searchPageData{Query: query, Error: err.Error()})
	case errors.Is(err, search.ErrServiceUnavailable):
		logging.Log.WithError(err).WithFields(logging.Fields{
			"query":     query,
			"client_ip": clientIP(r, cfg),
		}).Error("search service unavailable")
		if asJSON {
			respondWithError(w, http.StatusServiceUnavailable, search.UnavailableMessage)
			return
		}
		renderSearchPage(w, http.StatusOK, searchPageData{Query: query, Error: search.UnavailableMessage})
	default:
		logging.Log.WithError(err).Error("search failed")
		if asJSON {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		renderSearchPage(w, http.StatusInternalServerError, searchPageData{Query: query, Error: "Search failed"})
	}
}
