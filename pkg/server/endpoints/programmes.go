package endpoints

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

type programmeHandlers struct {
	programmes store.ProgrammesStore
	serializer *jsonapi.Serializer
	cfg        *config.SeekConfig
}

// RegisterProgrammeEndpoints registers programme CRUD and activation
func RegisterProgrammeEndpoints(s *server.Server) {
	h := &programmeHandlers{programmes: s.ProgrammesStore, serializer: s.Serializer, cfg: s.Config}

	s.Router.HandleFunc("/programmes", h.handleList()).Methods("GET")
	s.Router.HandleFunc("/programmes/{id:[0-9]+}", h.handleShow()).Methods("GET")

	writes := s.Router.PathPrefix("/programmes").Subrouter()
	writes.Use(middleware.RequireUser)
	writes.HandleFunc("", h.handleCreate()).Methods("POST")
	writes.HandleFunc("/awaiting_activation", h.handleAwaitingActivation()).Methods("GET")
	writes.HandleFunc("/{id:[0-9]+}", h.handleUpdate()).Methods("PATCH", "PUT")
	writes.HandleFunc("/{id:[0-9]+}", h.handleDelete()).Methods("DELETE")
	writes.HandleFunc("/{id:[0-9]+}/activate", h.handleActivate()).Methods("POST")
	writes.HandleFunc("/{id:[0-9]+}/reject", h.handleReject()).Methods("POST")
}

func forbidden(w http.ResponseWriter, msg string) {
	jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusForbidden, msg))
}

func (h *programmeHandlers) find(w http.ResponseWriter, r *http.Request) (*model.Programme, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	p, err := h.programmes.Programme(id)
	if err != nil {
		respondWithStoreError(w, err)
		return nil, false
	}
	// Unactivated programmes are only shown to those who can manage them
	if !p.IsActivated && !p.CanManage(currentUser(r)) {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	return p, true
}

func (h *programmeHandlers) resource(p *model.Programme) (*jsonapi.Resource, error) {
	members, err := h.programmes.Members(p.ID)
	if err != nil {
		return nil, err
	}
	return h.serializer.Programme(p, jsonapi.ProgrammeRelations{
		Administrators: p.AdministratorIDs,
		Projects:       members.ProjectIDs,
		People:         members.PersonIDs,
		Institutions:   members.InstitutionIDs,
	}), nil
}

func (h *programmeHandlers) respond(w http.ResponseWriter, status int, p *model.Programme) {
	res, err := h.resource(p)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	jsonapi.Write(w, status, jsonapi.Single(res, h.serializer.Meta()))
}

func (h *programmeHandlers) respondList(w http.ResponseWriter, programmes []model.Programme) {
	items := make([]model.Item, len(programmes))
	for i := range programmes {
		items[i] = &programmes[i]
	}
	jsonapi.Write(w, http.StatusOK, jsonapi.List(h.serializer.Skeletons(items), h.serializer.Meta()))
}

func (h *programmeHandlers) handleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.cfg.ProgrammesEnabled {
			jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Programmes are disabled"))
			return
		}
		user := currentUser(r)
		programmes, err := h.programmes.ListProgrammes(user != nil && user.IsAdmin)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		h.respondList(w, programmes)
	}
}

func (h *programmeHandlers) handleAwaitingActivation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin {
			forbidden(w, "Admin rights required")
			return
		}
		list := h.programmes.AwaitingActivation
		if r.URL.Query().Get("rejected") == "1" {
			list = h.programmes.Rejected
		}
		programmes, err := list()
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		h.respondList(w, programmes)
	}
}

func (h *programmeHandlers) handleShow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.find(w, r)
		if !ok {
			return
		}
		h.respond(w, http.StatusOK, p)
	}
}

// readProgramme applies the attributes and relationships of a request onto
// p. It returns the project ids to move into the programme, if sent.
func readProgramme(res *jsonapi.RequestResource, p *model.Programme) ([]uint, bool, error) {
	var attrs jsonapi.ProgrammeAttributes
	if err := res.DecodeAttributes(&attrs); err != nil {
		return nil, false, err
	}
	attrs.Apply(p)

	admins, ok, err := res.RelationshipIDs("programme_administrators")
	if err != nil {
		return nil, false, err
	}
	if ok {
		p.AdministratorIDs = lo.Uniq(admins)
	}
	return res.RelationshipIDs("projects")
}

func (h *programmeHandlers) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if !model.CanCreateProgramme(user, h.cfg.ProgrammesEnabled, h.cfg.AllowUserProgrammeCreation) {
			forbidden(w, "You are not permitted to create a programme")
			return
		}
		res, err := jsonapi.Parse(r.Body, "programmes", "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if err := res.Require("title"); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		p := &model.Programme{}
		projects, setProjects, err := readProgramme(res, p)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		// whoever creates a programme administers it
		if user.IsRegistered() && !lo.Contains(p.AdministratorIDs, *user.PersonID) {
			p.AdministratorIDs = append(p.AdministratorIDs, *user.PersonID)
		}

		ctx := model.WithCurrentUser(r.Context(), user)
		if err := h.programmes.SaveProgramme(ctx, p); err != nil {
			respondWithStoreError(w, err)
			return
		}
		if setProjects {
			if err := h.programmes.SetProjects(ctx, p.ID, projects); err != nil {
				respondWithStoreError(w, err)
				return
			}
		}
		h.respond(w, http.StatusCreated, p)
	}
}

func (h *programmeHandlers) handleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.find(w, r)
		if !ok {
			return
		}
		user := currentUser(r)
		if !p.CanEdit(user) {
			forbidden(w, "You are not authorized to edit this programme")
			return
		}
		res, err := jsonapi.Parse(r.Body, "programmes", mux.Vars(r)["id"])
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		projects, setProjects, err := readProgramme(res, p)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		ctx := model.WithCurrentUser(r.Context(), user)
		if err := h.programmes.SaveProgramme(ctx, p); err != nil {
			respondWithStoreError(w, err)
			return
		}
		if setProjects {
			if err := h.programmes.SetProjects(ctx, p.ID, projects); err != nil {
				respondWithStoreError(w, err)
				return
			}
		}
		h.respond(w, http.StatusOK, p)
	}
}

func (h *programmeHandlers) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.find(w, r)
		if !ok {
			return
		}
		if !p.CanDelete(currentUser(r)) {
			forbidden(w, "You are not authorized to delete this programme")
			return
		}
		if err := h.programmes.DeleteProgramme(r.Context(), p); err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusOK, &jsonapi.Document{Meta: h.serializer.Meta()})
	}
}

func (h *programmeHandlers) handleActivate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.changeActivation(w, r, "activate", func(p *model.Programme, user *model.User) bool {
			return p.Activate(user)
		})
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *programmeHandlers) handleReject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reason := r.URL.Query().Get("reason")
		if r.Header.Get("Content-Type") == "application/json" {
			var req rejectRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusBadRequest, "Invalid request body"))
				return
			}
			reason = req.Reason
		} else if v := r.FormValue("reason"); v != "" {
			reason = v
		}
		h.changeActivation(w, r, "reject", func(p *model.Programme, user *model.User) bool {
			return p.Reject(user, reason)
		})
	}
}

// changeActivation runs an admin activation decision and records it
func (h *programmeHandlers) changeActivation(w http.ResponseWriter, r *http.Request, operation string, change func(*model.Programme, *model.User) bool) {
	user := currentUser(r)
	id, _ := idVar(r, "id")
	event := audit.ProgrammeEvent{
		User:        auditUser(r),
		ClientIP:    clientIP(r, h.cfg),
		ProgrammeID: strconv.FormatUint(uint64(id), 10),
		Operation:   operation,
	}

	p, err := h.programmes.Programme(id)
	if err != nil {
		audit.Log(event)
		respondWithStoreError(w, err)
		return
	}
	if !p.CanActivate(user) {
		audit.Log(event)
		if p.IsActivated {
			forbidden(w, "The programme is already activated")
			return
		}
		forbidden(w, "Admin rights required")
		return
	}
	change(p, user)
	if p.ActivationRejectionReason != nil {
		event.Reason = *p.ActivationRejectionReason
	}

	err = h.programmes.SaveProgramme(model.WithCurrentUser(r.Context(), user), p)
	event.Success = err == nil
	audit.Log(event)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	h.respond(w, http.StatusOK, p)
}
