package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/bibliographic"
	"github.com/doodlesbykumbi/seek-in-go/pkg/blob"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/isa"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/seek-in-go/pkg/server/store/gorm"
)

// Authorizer decides what a user may do with an item
type Authorizer interface {
	Authorize(user *model.User, itemType string, itemID uint, action authz.Action) (bool, error)
	FilterViewable(user *model.User, items []model.Item) ([]model.Item, error)
	Invalidate(itemType string, itemID uint) error
}

// Searcher runs catalog searches
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// Fetcher looks up publication metadata in PubMed or CrossRef
type Fetcher interface {
	Fetch(ctx context.Context, protocol, key string) (*bibliographic.Record, error)
}

// ISAGraph places assets in the investigation, study and assay tree and
// lists the people credited on them
type ISAGraph interface {
	RelatedPeople(item model.Authorizable) ([]model.Person, error)
	Investigations(item model.Item) ([]model.Investigation, error)
	Studies(item model.Item) ([]model.Study, error)
	Assays(item model.Item) ([]model.Assay, error)
	AssayTypeTitles(item model.Item) ([]string, error)
	TechnologyTypeTitles(item model.Item) ([]string, error)
}

type Server struct {
	Config *config.SeekConfig
	Router *mux.Router
	DB     *gorm.DB

	HealthStore       store.HealthStore
	UsersStore        store.UsersStore
	AssetsStore       store.AssetsStore
	ProgrammesStore   store.ProgrammesStore
	MembershipsStore  store.MembershipsStore
	NodesStore        store.NodesStore
	SamplesStore      store.SamplesStore
	PublicationsStore store.PublicationsStore

	Authorizer Authorizer
	ISA        ISAGraph
	Serializer *jsonapi.Serializer
	Sessions   *middleware.Sessions

	// Searcher, Fetcher and Blobs talk to outside services and are set by
	// the caller. Endpoints answer 503 while they are nil.
	Searcher Searcher
	Fetcher  Fetcher
	Blobs    blob.Store

	RateLimiter *middleware.RateLimiter
	srv         *http.Server
}

// NewServer wires the gorm stores and the request middleware around db
func NewServer(cfg *config.SeekConfig, db *gorm.DB, host string, port string) *Server {
	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, metrics.InstrumentHandler(router)),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	users := gormstore.NewUsersStore(db)
	s := &Server{
		Config: cfg,
		Router: router,
		DB:     db,

		HealthStore:       gormstore.NewHealthStore(db),
		UsersStore:        users,
		AssetsStore:       gormstore.NewAssetsStore(db),
		ProgrammesStore:   gormstore.NewProgrammesStore(db),
		MembershipsStore:  gormstore.NewMembershipsStore(db),
		NodesStore:        gormstore.NewNodesStore(db),
		SamplesStore:      gormstore.NewSamplesStore(db),
		PublicationsStore: gormstore.NewPublicationsStore(db),

		Authorizer: authz.NewAuthorizer(authz.NewGormStore(db)),
		ISA:        isa.NewGraph(isa.NewGormStore(db)),
		Serializer: &jsonapi.Serializer{BaseURL: cfg.SiteBaseHost, APIVersion: cfg.APIVersion},
		Sessions:   middleware.NewSessions([]byte(cfg.SessionSecret), cfg.TokenTTL(), users),

		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg),
		srv:         srv,
	}
	router.Use(s.Sessions.Middleware, s.RateLimiter.Middleware)
	return s
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Serve accepts connections on l until Shutdown is called
func (s *Server) Serve(l net.Listener) error {
	s.srv.Addr = l.Addr().String()
	err := s.srv.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for those in flight
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr is the address the server listens on
func (s *Server) Addr() string {
	return s.srv.Addr
}
