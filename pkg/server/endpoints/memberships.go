package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// MembershipAttributes are the writable attributes of a group membership
type MembershipAttributes struct {
	HasLeft        *bool   `json:"has_left"`
	ProjectRoleIDs *[]uint `json:"project_role_ids"`
}

// MembershipResponse is a membership as returned after an update
type MembershipResponse struct {
	ID             uint   `json:"id"`
	PersonID       *uint  `json:"person_id"`
	WorkGroupID    uint   `json:"work_group_id"`
	ProjectID      uint   `json:"project_id,omitempty"`
	HasLeft        bool   `json:"has_left"`
	TimeLeftAt     string `json:"time_left_at,omitempty"`
	ProjectRoleIDs []uint `json:"project_role_ids"`
}

func newMembershipResponse(m *model.GroupMembership) MembershipResponse {
	resp := MembershipResponse{
		ID:             m.ID,
		PersonID:       m.PersonID,
		WorkGroupID:    m.WorkGroupID,
		HasLeft:        m.HasLeft(),
		ProjectRoleIDs: lo.Map(m.ProjectRoles, func(role model.ProjectRole, _ int) uint { return role.ID }),
	}
	if m.WorkGroup != nil {
		resp.ProjectID = m.WorkGroup.ProjectID
	}
	if m.TimeLeftAt != nil {
		resp.TimeLeftAt = m.TimeLeftAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// RegisterMembershipEndpoints registers PATCH /group_memberships/{id}
func RegisterMembershipEndpoints(s *server.Server) {
	memberships := s.Router.PathPrefix("/group_memberships").Subrouter()
	memberships.Use(middleware.RequireUser)
	memberships.HandleFunc("/{id:[0-9]+}", handleUpdateMembership(s.MembershipsStore)).Methods("PATCH", "PUT")
}

// canManageMembership is true for admins and for administrators of the
// membership's project
func canManageMembership(memberships store.MembershipsStore, user *model.User, m *model.GroupMembership) (bool, error) {
	if user.IsAdmin {
		return true, nil
	}
	if !user.IsRegistered() || m.WorkGroup == nil {
		return false, nil
	}
	return memberships.IsProjectAdministrator(*user.PersonID, m.WorkGroup.ProjectID)
}

func handleUpdateMembership(memberships store.MembershipsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idVar(r, "id")
		if !ok {
			jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
			return
		}
		m, err := memberships.Membership(id)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		user := currentUser(r)
		allowed, err := canManageMembership(memberships, user, m)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		if !allowed {
			forbidden(w, "You are not authorized to change this membership")
			return
		}

		res, err := jsonapi.Parse(r.Body, "group_memberships", mux.Vars(r)["id"])
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		var attrs MembershipAttributes
		if err := res.DecodeAttributes(&attrs); err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if attrs.HasLeft != nil {
			m.SetHasLeft(*attrs.HasLeft)
		}
		if attrs.ProjectRoleIDs != nil {
			uniq := lo.Uniq(*attrs.ProjectRoleIDs)
			attrs.ProjectRoleIDs = &uniq
		}

		if err := memberships.UpdateMembership(model.WithCurrentUser(r.Context(), user), m, attrs.ProjectRoleIDs); err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, newMembershipResponse(m))
	}
}
