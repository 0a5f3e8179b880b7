// Package middleware holds the HTTP middleware of the catalog server.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// ErrInvalidToken is returned for tokens that fail to parse or verify
var ErrInvalidToken = errors.New("invalid session token")

// UserLookup resolves the subject of a session token
type UserLookup interface {
	UserByID(id uint) (*model.User, error)
}

// Claims are the claims of a session token. Subject holds the user id.
type Claims struct {
	Login string `json:"login,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens
type Sessions struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

// NewSessions creates a Sessions signing with secret
func NewSessions(secret []byte, ttl time.Duration, users UserLookup) *Sessions {
	return &Sessions{secret: secret, ttl: ttl, users: users, now: time.Now}
}

// Issue signs a token for user, returning it with its expiry
func (s *Sessions) Issue(user *model.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Login: user.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse verifies a token and returns the user id it was issued for
func (s *Sessions) Parse(tokenString string) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return uint(id), nil
}

// Middleware puts the user of a valid Bearer token into the request
// context. Requests without a token go through anonymously; a bad token
// is refused.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization header"))
			return
		}

		userID, err := s.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			logging.Log.WithError(err).Debug("Rejected session token")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Invalid or expired token"))
			return
		}

		user, err := s.users.UserByID(userID)
		if err != nil {
			logging.Log.WithFields(logging.Fields{"user_id": userID}).WithError(err).Debug("Session user not found")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(model.WithCurrentUser(r.Context(), user)))
	})
}

// RequireUser refuses anonymous requests
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if model.CurrentUser(r.Context()) == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authorization missing"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
