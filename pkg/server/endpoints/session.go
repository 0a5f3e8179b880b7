package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// LoginRequest is the body of POST /session. Form posts work too.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SessionResponse carries a new session token
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WhoamiResponse describes the user behind the session token
type WhoamiResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	PersonID *uint  `json:"person_id"`
	IsAdmin  bool   `json:"is_admin"`
}

// RegisterSessionEndpoints registers login and whoami
func RegisterSessionEndpoints(s *server.Server) {
	s.Router.HandleFunc("/session", handleLogin(s.UsersStore, s.Sessions, s.Config)).Methods("POST")

	whoamiRouter := s.Router.PathPrefix("/session").Subrouter()
	whoamiRouter.Use(middleware.RequireUser)
	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func readLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Login = r.PostForm.Get("login")
	req.Password = r.PostForm.Get("password")
	return req, nil
}

func handleLogin(usersStore store.UsersStore, sessions *middleware.Sessions, cfg *config.SeekConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, cfg)
		req, err := readLogin(r)
		if err != nil || req.Login == "" {
			respondWithError(w, http.StatusBadRequest, "login and password are required")
			return
		}

		fail := func(msg string) {
			audit.Log(audit.SessionEvent{Login: req.Login, ClientIP: ip, Success: false, ErrorMessage: msg})
			respondWithError(w, http.StatusUnauthorized, "Invalid login or password")
		}

		user, err := usersStore.UserByLogin(req.Login)
		if err != nil {
			fail("unknown login")
			return
		}
		if !user.CheckPassword(req.Password) {
			fail("wrong password")
			return
		}

		token, expires, err := sessions.Issue(user)
		if err != nil {
			logging.Log.WithError(err).Error("issuing session token")
			audit.Log(audit.SessionEvent{Login: req.Login, ClientIP: ip, Success: false, ErrorMessage: err.Error()})
			respondWithError(w, http.StatusInternalServerError, "Unable to issue session token")
			return
		}

		audit.Log(audit.SessionEvent{Login: user.Login, ClientIP: ip, Success: true})
		respondWithJSON(w, http.StatusCreated, SessionResponse{Token: token, ExpiresAt: expires})
	}
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		respondWithJSON(w, http.StatusOK, WhoamiResponse{
			ID:       user.ID,
			Login:    user.Login,
			PersonID: user.PersonID,
			IsAdmin:  user.IsAdmin,
		})
	}
}
