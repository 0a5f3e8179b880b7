package endpoints

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
)

func withSearcher(env *testEnv) *MockSearcher {
	searcher := new(MockSearcher)
	env.srv.Searcher = searcher
	return searcher
}

func TestSearch(t *testing.T) {
	yeast := investigation(1, "Yeast growth")
	result := &search.Result{
		Query:    "yeast",
		Type:     "all",
		All:      []model.Item{yeast},
		Scaled:   map[string][]model.Item{search.AllScales: {yeast}},
		ScaleKey: search.AllScales,
		Items:    []model.Item{yeast},
	}

	t.Run("renders matches as HTML", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.MatchedBy(func(req search.Request) bool {
			return req.Query == "yeast" && !req.JSON
		})).Return(result, nil)

		w := env.do("GET", "/search?q=yeast", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1 item matched '<b>yeast</b>' within their title or content.")
		assert.Contains(t, w.Body.String(), "Yeast growth")
		assert.Contains(t, w.Body.String(), "/investigations/1")
	})

	t.Run("answers JSON:API skeletons for JSON requests", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.MatchedBy(func(req search.Request) bool {
			return req.JSON && req.Type == "investigations"
		})).Return(result, nil)

		w := env.do("GET", "/search?q=yeast&search_type=investigations&format=json", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		items := decodeDocument(t, w).list(t)
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, "Yeast growth", items[0].Attributes["title"])
	})

	t.Run("passes the current user along", func(t *testing.T) {
		env := newTestEnv(t, nil)
		user := registeredUser(4, 3)
		withSearcher(env).On("Search", mock.Anything, mock.MatchedBy(func(req search.Request) bool {
			return req.User == user
		})).Return(result, nil)

		w := env.do("GET", "/search?q=yeast", nil, user)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSearchErrors(t *testing.T) {
	t.Run("shows an invalid query on the page", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.Anything).
			Return(nil, &search.InvalidSearchError{Message: "Query string is empty"})

		w := env.do("GET", "/search?q=", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Query string is empty")
	})

	t.Run("answers 422 for an invalid JSON query", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.Anything).
			Return(nil, &search.InvalidSearchError{Message: "Query string is empty"})

		w := env.do("GET", "/search?format=json", nil, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("answers 404 when search is disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.Anything).Return(nil, search.ErrSearchDisabled)

		w := env.do("GET", "/search?q=yeast&format=json", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Search is disabled")
	})

	t.Run("explains an unreachable index without leaking the cause", func(t *testing.T) {
		env := newTestEnv(t, nil)
		withSearcher(env).On("Search", mock.Anything, mock.Anything).
			Return(nil, errors.Join(search.ErrServiceUnavailable, errors.New("dial tcp 10.0.0.4:8080")))

		w := env.do("GET", "/search?q=yeast", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The search service is currently not running")
		assert.NotContains(t, w.Body.String(), "10.0.0.4")
	})

	t.Run("answers 503 without a searcher", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("GET", "/search?q=yeast&format=json", nil, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
