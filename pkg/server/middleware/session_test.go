package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) UserByID(id uint) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := model.CurrentUser(r.Context()); user != nil {
			_, _ = w.Write([]byte(user.Login))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
}

func TestSessionsIssueAndParse(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour, nil)

	token, expires, err := sessions.Issue(&model.User{ID: 42, Login: "quentin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	id, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestSessionsParseRejects(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour, nil)
	valid, _, err := sessions.Issue(&model.User{ID: 1})
	require.NoError(t, err)

	expired := NewSessions(testSecret, time.Hour, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(&model.User{ID: 1})
	require.NoError(t, err)

	other, _, err := NewSessions([]byte("another-secret-another-secret!!!"), time.Hour, nil).Issue(&model.User{ID: 1})
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", old},
		{"wrong secret", other},
		{"no expiry", noExpiry},
		{"tampered", valid + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sessions.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddlewareAnonymous(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour, &MockUserLookup{})

	rec := httptest.NewRecorder()
	sessions.Middleware(echoUser()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestMiddlewareSetsCurrentUser(t *testing.T) {
	users := &MockUserLookup{}
	users.On("UserByID", uint(7)).Return(&model.User{ID: 7, Login: "quentin"}, nil)
	sessions := NewSessions(testSecret, time.Hour, users)
	token, _, err := sessions.Issue(&model.User{ID: 7})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	sessions.Middleware(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "quentin", rec.Body.String())
	users.AssertExpectations(t)
}

func TestMiddlewareRejections(t *testing.T) {
	users := &MockUserLookup{}
	users.On("UserByID", uint(9)).Return(nil, errors.New("record not found"))
	sessions := NewSessions(testSecret, time.Hour, users)
	deleted, _, err := sessions.Issue(&model.User{ID: 9})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{"wrong scheme", "Token token=abc", "Malformed authorization header"},
		{"bad token", "Bearer abc", "Invalid or expired token"},
		{"deleted user", "Bearer " + deleted, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			sessions.Middleware(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireUser(echoUser()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(model.WithCurrentUser(req.Context(), &model.User{ID: 1, Login: "aaron"}))
	rec = httptest.NewRecorder()
	RequireUser(echoUser()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aaron", rec.Body.String())
}
