package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

const flashCookie = "seek_flash"

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithStoreError maps a store failure to a JSON:API error document
func respondWithStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return
	}
	errs := jsonapi.AsErrors(err)
	if len(errs) == 1 && errs[0].Status == strconv.Itoa(http.StatusInternalServerError) {
		logging.Log.WithError(err).Error("request failed")
	}
	jsonapi.WriteErrors(w, errs...)
}

func currentUser(r *http.Request) *model.User {
	return model.CurrentUser(r.Context())
}

func auditUser(r *http.Request) string {
	if user := currentUser(r); user != nil {
		return audit.UserName(user.Login)
	}
	return audit.UserName("")
}

func clientIP(r *http.Request, proxies middleware.ProxyTrust) string {
	return middleware.ClientIP(r, proxies)
}

// idVar reads a numeric route variable
func idVar(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// wantsJSON is true for API clients: format=json, a JSON Accept header or
// a .json suffix on the path
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" || strings.HasSuffix(r.URL.Path, ".json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "json")
}

// setFlash leaves a message for the next page the browser renders
func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + ":" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash left by a previous response
func takeFlash(w http.ResponseWriter, r *http.Request) (kind, message string) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", ""
	}
	kind, message, _ = strings.Cut(raw, ":")
	return kind, message
}

// redirectBack returns the browser to the referring page, or fallback, with
// a flash message
func redirectBack(w http.ResponseWriter, r *http.Request, fallback, kind, message string) {
	target := fallback
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == r.Host) {
			target = u.RequestURI()
		}
	}
	setFlash(w, kind, message)
	http.Redirect(w, r, target, http.StatusFound)
}
