package endpoints

import (
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// healthTables are counted by /health?counts=1
var healthTables = []string{
	"programmes", "projects", "people", "investigations", "studies", "assays",
	"samples", "sample_types", "publications", "nodes",
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status   string           `json:"status"`
	Database string           `json:"database"`
	Counts   map[string]int64 `json:"counts,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status, health and metrics endpoints
func RegisterStatusEndpoints(s *server.Server) {
	healthStore := s.HealthStore
	cfg := s.Config

	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus(cfg)).Methods("GET")

	// GET /health - Database connectivity
	s.Router.HandleFunc("/health", handleHealth(healthStore)).Methods("GET")

	// GET /metrics - Prometheus exposition
	s.Router.Handle("/metrics", metrics.Handler()).Methods("GET")
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">

    <link rel="stylesheet" href="/css/status-page.css">
    <title>SEEK Status</title>
  </head>
  <body>

    <header>
      <div class="links-cont">
        <a href="https://fair-dom.org" target="_blank">FAIRDOM</a>
        |
        <a href="https://github.com/seek4science/seek" target="_blank">Github</a>
      </div>
    </header>

    <main>
      <div class="left-panel">
        <h1>Status</h1>
        <p class="status-text">Your SEEK catalog is running!</p>
        <dl>
          <dt>Search:</dt>
          <dd>{{if .SearchEnabled}}enabled{{else}}disabled{{end}}</dd>
          <dt>Programmes:</dt>
          <dd>{{if .ProgrammesEnabled}}enabled{{else}}disabled{{end}}</dd>
        </dl>
      </div>

      <div class="right-panel">
        <dl>
          <dt>Details:</dt>
          <dd>Version {{.Version}}</dd>
          <dd>API Version {{.APIVersion}}</dd>
          <dd>Base URL <a href="{{.BaseURL}}">{{.BaseURL}}</a></dd>
          <dt>More Info:</dt>
          <dd>
            <ul>
              <li><a href="https://docs.seek4science.org" target="_blank">Documentation</a></li>
              <li><a href="https://fairdomhub.org" target="_blank">FAIRDOMHub</a></li>
            </ul>
          </dd>
        </dl>
      </div>
    </main>

  </body>
</html>
`))

type statusData struct {
	Version           string
	APIVersion        string
	BaseURL           string
	SearchEnabled     bool
	ProgrammesEnabled bool
}

func handleStatus(cfg *config.SeekConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("SEEK_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}
		data := statusData{
			Version:           version,
			APIVersion:        cfg.APIVersion,
			BaseURL:           cfg.SiteBaseHost,
			SearchEnabled:     cfg.SearchEnabled,
			ProgrammesEnabled: cfg.ProgrammesEnabled,
		}

		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"version":     data.Version,
				"api_version": data.APIVersion,
			})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := statusPage.Execute(w, data); err != nil {
			logging.Log.WithError(err).Error("rendering status page")
		}
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		if err := healthStore.CheckConnectivity(ctx); err != nil {
			logging.Log.WithError(err).Warn("health check failed")
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "error",
				Database: "unreachable",
				Error:    "database connectivity check failed",
			})
			return
		}

		response := HealthResponse{Status: "ok", Database: "ok"}
		if r.URL.Query().Get("counts") != "" {
			counts, err := healthStore.Counts(ctx, healthTables)
			if err != nil {
				logging.Log.WithError(err).Warn("health counts failed")
			}
			response.Counts = counts
		}
		w.Header().Set("X-Response-Time", time.Since(start).String())
		respondWithJSON(w, http.StatusOK, response)
	}
}
