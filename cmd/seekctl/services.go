package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/bibliographic"
	"github.com/doodlesbykumbi/seek-in-go/pkg/cache"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/db"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search/weaviate"
)

// loadConfig loads and validates the configuration and makes it the
// process wide one
func loadConfig() (*config.SeekConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.Set(cfg)
	return cfg, nil
}

func connectDB() (*gorm.DB, error) {
	return db.Connect(db.Config{ConnMaxLifetime: 30 * time.Minute})
}

// catalog bundles what the server and the maintenance commands build on
// top of the database
type catalog struct {
	cfg        *config.SeekConfig
	db         *gorm.DB
	authorizer *authz.Authorizer
	records    *search.GormRecords
	index      *weaviate.Index
	crossref   *bibliographic.CrossRef
	fetcher    *bibliographic.Fetcher
}

func newCatalog(cfg *config.SeekConfig, database *gorm.DB) (*catalog, error) {
	index, err := weaviate.New(weaviate.Config{URL: cfg.SearchIndexURL})
	if err != nil {
		return nil, err
	}

	metadataCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	crossref := bibliographic.NewCrossRef(bibliographic.CrossRefConfig{Email: cfg.CrossrefAPIEmail}, metadataCache)
	pubmed := bibliographic.NewPubMed(bibliographic.PubMedConfig{Email: cfg.PubmedAPIEmail}, metadataCache)

	return &catalog{
		cfg:        cfg,
		db:         database,
		authorizer: authz.NewAuthorizer(authz.NewGormStore(database)),
		records:    search.NewGormRecords(database),
		index:      index,
		crossref:   crossref,
		fetcher:    bibliographic.NewFetcher(pubmed, crossref),
	}, nil
}

func (c *catalog) searcher() *search.Searcher {
	var external search.ExternalSearcher
	if c.cfg.ExternalSearchEnabled {
		external = c.crossref
	}
	return search.NewSearcher(search.Config{
		Enabled:         c.cfg.SearchEnabled,
		ExternalEnabled: c.cfg.ExternalSearchEnabled,
		FacetsEnabled:   c.cfg.FacetedSearchEnabled,
		PageSize:        c.cfg.SearchPageSize,
	}, c.index, c.records, c.authorizer, external)
}

func (c *catalog) indexer() *search.Indexer {
	return search.NewIndexer(c.index, c.records, c.records)
}
