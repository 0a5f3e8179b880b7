// Package weaviate implements search.Index on a Weaviate BM25 class.
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
)

// DefaultClassName is the class holding catalog documents
const DefaultClassName = "CatalogItem"

// DefaultMaxResults caps the hits counted for one type
const DefaultMaxResults = 10000

// objectNamespace seeds the deterministic object ids
var objectNamespace = uuid.MustParse("6f1d5f0e-3c1a-4f57-9d7e-8a3b2c9e4d10")

// Config configures the index
type Config struct {
	// URL is the Weaviate endpoint, e.g. http://localhost:8080
	URL        string
	ClassName  string
	MaxResults int
}

// Index is a search.Index backed by Weaviate
type Index struct {
	client     *weaviate.Client
	class      string
	maxResults int
}

var _ search.Index = (*Index)(nil)

// New creates an Index. It does not contact Weaviate.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, errors.New("weaviate url is required")
	}
	clientCfg := weaviate.Config{Host: cfg.URL, Scheme: "http"}
	if strings.HasPrefix(cfg.URL, "https://") {
		clientCfg.Scheme = "https"
		clientCfg.Host = strings.TrimPrefix(cfg.URL, "https://")
	} else {
		clientCfg.Host = strings.TrimPrefix(cfg.URL, "http://")
	}
	clientCfg.Host = strings.TrimSuffix(clientCfg.Host, "/")

	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	idx := &Index{
		client:     client,
		class:      cfg.ClassName,
		maxResults: cfg.MaxResults,
	}
	if idx.class == "" {
		idx.class = DefaultClassName
	}
	if idx.maxResults <= 0 {
		idx.maxResults = DefaultMaxResults
	}
	return idx, nil
}

// Schema returns the class definition. Vectors are not used, only the
// inverted index for BM25.
func (x *Index) Schema() *models.Class {
	filterable := true
	return &models.Class{
		Class:       x.class,
		Description: "Searchable catalog items",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:            "itemType",
				DataType:        []string{"text"},
				IndexFilterable: &filterable,
				Tokenization:    "field",
			},
			{
				Name:            "itemId",
				DataType:        []string{"int"},
				IndexFilterable: &filterable,
			},
			{
				Name:         "title",
				DataType:     []string{"text"},
				Tokenization: "word",
			},
			{
				Name:         "content",
				DataType:     []string{"text"},
				Tokenization: "word",
			},
		},
	}
}

// EnsureSchema creates the class unless it exists
func (x *Index) EnsureSchema(ctx context.Context) error {
	if _, err := x.client.Schema().ClassGetter().WithClassName(x.class).Do(ctx); err == nil {
		return nil
	}
	if err := x.client.Schema().ClassCreator().WithClass(x.Schema()).Do(ctx); err != nil {
		return wrap("creating schema", err)
	}
	return nil
}

func (x *Index) Ready(ctx context.Context) error {
	ready, err := x.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return wrap("ready check", err)
	}
	if !ready {
		return search.ErrServiceUnavailable
	}
	return nil
}

func (x *Index) Search(ctx context.Context, itemType, query string, limit int) ([]uint, error) {
	objects, err := x.get(ctx, itemType, query, limit, graphql.Field{Name: "itemId"})
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(objects))
	for _, obj := range objects {
		if id, ok := obj["itemId"].(float64); ok && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func (x *Index) Count(ctx context.Context, itemType, query string) (int, error) {
	objects, err := x.get(ctx, itemType, query, x.maxResults,
		graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}})
	if err != nil {
		return 0, err
	}
	return len(objects), nil
}

func (x *Index) get(ctx context.Context, itemType, query string, limit int, fields ...graphql.Field) ([]map[string]interface{}, error) {
	where := filters.Where().
		WithPath([]string{"itemType"}).
		WithOperator(filters.Equal).
		WithValueString(itemType)

	result, err := x.client.GraphQL().Get().
		WithClassName(x.class).
		WithFields(fields...).
		WithBM25(x.client.GraphQL().Bm25ArgBuilder().WithQuery(query).WithProperties("title", "content")).
		WithWhere(where).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, wrap("bm25 query", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("bm25 query: %s", result.Errors[0].Message)
	}

	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	raw, ok := get[x.class].([]interface{})
	if !ok {
		return nil, nil
	}
	objects := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			objects = append(objects, m)
		}
	}
	return objects, nil
}

func (x *Index) Put(ctx context.Context, docs ...search.Document) error {
	for _, doc := range docs {
		id := ObjectID(doc.ItemType, doc.ItemID)
		props := map[string]interface{}{
			"itemType": doc.ItemType,
			"itemId":   doc.ItemID,
			"title":    doc.Title,
			"content":  doc.Content,
		}

		exists, err := x.client.Data().Checker().WithClassName(x.class).WithID(id).Do(ctx)
		if err != nil {
			return wrap("checking object", err)
		}
		if exists {
			err = x.client.Data().Updater().
				WithClassName(x.class).
				WithID(id).
				WithProperties(props).
				Do(ctx)
		} else {
			_, err = x.client.Data().Creator().
				WithClassName(x.class).
				WithID(id).
				WithProperties(props).
				Do(ctx)
		}
		if err != nil {
			return wrap(fmt.Sprintf("indexing %s:%d", doc.ItemType, doc.ItemID), err)
		}
	}
	return nil
}

func (x *Index) Remove(ctx context.Context, itemType string, itemID uint) error {
	err := x.client.Data().Deleter().
		WithClassName(x.class).
		WithID(ObjectID(itemType, itemID)).
		Do(ctx)
	if err != nil {
		var clientErr *fault.WeaviateClientError
		if errors.As(err, &clientErr) && clientErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return wrap("removing object", err)
	}
	return nil
}

// ObjectID is the Weaviate object id of an item
func ObjectID(itemType string, itemID uint) string {
	return uuid.NewSHA1(objectNamespace, []byte(fmt.Sprintf("%s:%d", itemType, itemID))).String()
}

// wrap marks transport failures and server errors as search.ErrServiceUnavailable
func wrap(op string, err error) error {
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) {
		if clientErr.DerivedFromError != nil || clientErr.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%s: %w: %s", op, search.ErrServiceUnavailable, clientErr.Error())
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
