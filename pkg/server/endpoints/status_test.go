package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	gormstore "github.com/doodlesbykumbi/seek-in-go/pkg/server/store/gorm"
)

func TestHandleStatus(t *testing.T) {
	cfg := config.NewDefault()

	t.Run("returns HTML status page", func(t *testing.T) {
		handler := handleStatus(cfg)

		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Your SEEK catalog is running!")
		assert.Contains(t, w.Body.String(), "http://localhost:3000")
	})

	t.Run("returns JSON when Accept header is application/json", func(t *testing.T) {
		handler := handleStatus(cfg)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "0.3", body["api_version"])
	})

	t.Run("returns JSON for format=json", func(t *testing.T) {
		w := httptest.NewRecorder()
		handleStatus(cfg)(w, httptest.NewRequest("GET", "/?format=json", nil))

		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("reports ok", func(t *testing.T) {
		healthStore := new(MockHealthStore)
		healthStore.On("CheckConnectivity", mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		handleHealth(healthStore)(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Nil(t, body.Counts)
	})

	t.Run("includes table counts when asked", func(t *testing.T) {
		healthStore := new(MockHealthStore)
		healthStore.On("CheckConnectivity", mock.Anything).Return(nil)
		healthStore.On("Counts", mock.Anything, healthTables).Return(map[string]int64{"samples": 4}, nil)

		w := httptest.NewRecorder()
		handleHealth(healthStore)(w, httptest.NewRequest("GET", "/health?counts=1", nil))

		var body HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(4), body.Counts["samples"])
	})

	t.Run("answers 503 when the database is unreachable", func(t *testing.T) {
		healthStore := new(MockHealthStore)
		healthStore.On("CheckConnectivity", mock.Anything).Return(errors.New("connection refused"))

		w := httptest.NewRecorder()
		handleHealth(healthStore)(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestHealthThroughGormStore(t *testing.T) {
	m, err := NewMockDB()
	require.NoError(t, err)
	defer m.Close()

	m.ExpectConnectivityCheck(nil)
	m.ExpectCount("programmes", 2)

	healthStore := gormstore.NewHealthStore(m.GormDB)
	handler := handleHealth(healthStore)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	counts, err := healthStore.Counts(context.Background(), []string{"programmes"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["programmes"])
	assert.NoError(t, m.VerifyExpectations())
}
