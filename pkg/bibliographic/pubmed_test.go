package bibliographic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func efetchServer(t *testing.T, medline []byte, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "pubmed", r.PostForm.Get("db"))
		assert.Equal(t, "text", r.PostForm.Get("retmode"))
		assert.Equal(t, "medline", r.PostForm.Get("rettype"))
		assert.Equal(t, "fred@email.com", r.PostForm.Get("email"))

		switch r.PostForm.Get("id") {
		case "5":
			_, _ = w.Write(medline)
		case "500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			// efetch answers unknown ids with 200 and no record
			_, _ = w.Write([]byte("\n"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPubMed_Fetch(t *testing.T) {
	var calls int32
	srv := efetchServer(t, readFixture(t, "pubmed_5.txt"), &calls)
	pubmed := NewPubMed(PubMedConfig{URL: srv.URL, Email: "fred@email.com"}, nil)

	r, err := pubmed.Fetch(context.Background(), " 5 ")
	require.NoError(t, err)
	assert.Equal(t, 5, r.PubmedID)
	assert.Equal(t, "Biochem Biophys Res Commun", r.Journal)

	// served from the cache
	_, err = pubmed.Fetch(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPubMed_NotFound(t *testing.T) {
	var calls int32
	srv := efetchServer(t, nil, &calls)
	pubmed := NewPubMed(PubMedConfig{URL: srv.URL, Email: "fred@email.com"}, nil)

	_, err := pubmed.Fetch(context.Background(), "40404040404")
	assert.ErrorIs(t, err, ErrNotFound)

	// misses are not cached
	_, err = pubmed.Fetch(context.Background(), "40404040404")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPubMed_ServiceError(t *testing.T) {
	var calls int32
	srv := efetchServer(t, nil, &calls)
	pubmed := NewPubMed(PubMedConfig{URL: srv.URL, Email: "fred@email.com"}, nil)

	_, err := pubmed.Fetch(context.Background(), "500")
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusInternalServerError, serviceErr.StatusCode)
}

func TestPubMed_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	pubmed := NewPubMed(PubMedConfig{URL: srv.URL, Timeout: 20 * time.Millisecond}, nil)

	_, err := pubmed.FetchMedline(context.Background(), 999)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestPubMed_InvalidKey(t *testing.T) {
	pubmed := NewPubMed(PubMedConfig{URL: "http://127.0.0.1:0"}, nil)

	_, err := pubmed.Fetch(context.Background(), " ")
	assert.ErrorIs(t, err, ErrBlankKey)

	_, err = pubmed.Fetch(context.Background(), "abc")
	assert.EqualError(t, err, `"abc" is not a valid PubMed ID`)
}
