package endpoints

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

func pendingProgramme() *model.Programme {
	return &model.Programme{ID: 3, Title: "Systems Biology", AdministratorIDs: []uint{9}}
}

func (e *testEnv) expectMembers(programmeID uint, projects ...uint) {
	e.programmes.On("Members", programmeID).Return(&store.ProgrammeMembers{ProjectIDs: projects}, nil).Maybe()
}

func TestListProgrammes(t *testing.T) {
	t.Run("lists activated programmes", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("ListProgrammes", false).Return([]model.Programme{{ID: 1, Title: "ERASysAPP", IsActivated: true}}, nil)

		w := env.do("GET", "/programmes", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		items := decodeDocument(t, w).list(t)
		require.Len(t, items, 1)
		assert.Equal(t, "programmes", items[0].Type)
	})

	t.Run("includes inactive programmes for admins", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("ListProgrammes", true).Return([]model.Programme{}, nil)

		w := env.do("GET", "/programmes", nil, adminUser())

		assert.Equal(t, http.StatusOK, w.Code)
		env.programmes.AssertExpectations(t)
	})

	t.Run("answers 404 when programmes are disabled", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.ProgrammesEnabled = false
		env := newTestEnv(t, cfg)

		w := env.do("GET", "/programmes", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Programmes are disabled")
	})
}

func TestShowProgramme(t *testing.T) {
	t.Run("hides an unactivated programme from others", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("Programme", uint(3)).Return(pendingProgramme(), nil)

		w := env.do("GET", "/programmes/3", nil, registeredUser(4, 5))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("shows an unactivated programme to its administrators", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("Programme", uint(3)).Return(pendingProgramme(), nil)
		env.expectMembers(3, 11)

		w := env.do("GET", "/programmes/3", nil, registeredUser(4, 9))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, false, res.Attributes["is_activated"])
		assert.JSONEq(t, `[{"id":"9","type":"people"}]`, string(res.Relationships["programme_administrators"].Data))
		assert.JSONEq(t, `[{"id":"11","type":"projects"}]`, string(res.Relationships["projects"].Data))
	})
}

func TestCreateProgramme(t *testing.T) {
	body := `{"data":{"type":"programmes","attributes":{"title":"Systems Biology","web_page":"https://sysbio.example.org"},
		"relationships":{"projects":{"data":[{"id":"11","type":"projects"}]}}}}`

	t.Run("admins create and administer it", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("SaveProgramme", mock.Anything, mock.MatchedBy(func(p *model.Programme) bool {
			return p.Title == "Systems Biology" && assert.ObjectsAreEqual([]uint{1}, p.AdministratorIDs)
		})).Run(func(args mock.Arguments) {
			p := args.Get(1).(*model.Programme)
			p.ID = 3
			p.IsActivated = true
		}).Return(nil)
		env.programmes.On("SetProjects", mock.Anything, uint(3), []uint{11}).Return(nil)
		env.expectMembers(3, 11)

		w := env.do("POST", "/programmes", strings.NewReader(body), adminUser())

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := decodeDocument(t, w).single(t)
		assert.Equal(t, "3", res.ID)
		assert.Equal(t, "https://sysbio.example.org", res.Attributes["web_page"])
		env.programmes.AssertExpectations(t)
	})

	t.Run("refuses regular users unless the site allows it", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("POST", "/programmes", strings.NewReader(body), registeredUser(4, 9))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You are not permitted to create a programme")
	})

	t.Run("lets regular users create when allowed", func(t *testing.T) {
		cfg := config.NewDefault()
		cfg.AllowUserProgrammeCreation = true
		env := newTestEnv(t, cfg)
		env.programmes.On("SaveProgramme", mock.Anything, mock.MatchedBy(func(p *model.Programme) bool {
			return assert.ObjectsAreEqual([]uint{9}, p.AdministratorIDs)
		})).Run(func(args mock.Arguments) { args.Get(1).(*model.Programme).ID = 3 }).Return(nil)
		env.programmes.On("SetProjects", mock.Anything, uint(3), []uint{11}).Return(nil)
		env.expectMembers(3)

		w := env.do("POST", "/programmes", strings.NewReader(body), registeredUser(4, 9))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("requires a title", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("POST", "/programmes", strings.NewReader(`{"data":{"type":"programmes","attributes":{}}}`), adminUser())

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Title can't be blank")
	})
}

func TestUpdateProgramme(t *testing.T) {
	t.Run("administrators can edit", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		p.IsActivated = true
		env.programmes.On("Programme", uint(3)).Return(p, nil)
		env.programmes.On("SaveProgramme", mock.Anything, p).Return(nil)
		env.expectMembers(3)

		body := `{"data":{"type":"programmes","id":"3","attributes":{"description":"Models of the cell"}}}`
		w := env.do("PATCH", "/programmes/3", strings.NewReader(body), registeredUser(4, 9))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Models of the cell", p.Description)
		env.programmes.AssertNotCalled(t, "SetProjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("others cannot", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		p.IsActivated = true
		env.programmes.On("Programme", uint(3)).Return(p, nil)

		body := `{"data":{"type":"programmes","id":"3","attributes":{"description":"x"}}}`
		w := env.do("PATCH", "/programmes/3", strings.NewReader(body), registeredUser(4, 5))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You are not authorized to edit this programme")
	})
}

func TestDeleteProgramme(t *testing.T) {
	t.Run("admins only", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("Programme", uint(3)).Return(pendingProgramme(), nil)

		w := env.do("DELETE", "/programmes/3", nil, registeredUser(4, 9))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deletes", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		env.programmes.On("Programme", uint(3)).Return(p, nil)
		env.programmes.On("DeleteProgramme", mock.Anything, p).Return(nil)

		w := env.do("DELETE", "/programmes/3", nil, adminUser())

		assert.Equal(t, http.StatusOK, w.Code)
		env.programmes.AssertExpectations(t)
	})
}

func TestProgrammeActivation(t *testing.T) {
	t.Run("lists programmes awaiting activation for admins", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("AwaitingActivation").Return([]model.Programme{*pendingProgramme()}, nil)

		w := env.do("GET", "/programmes/awaiting_activation", nil, adminUser())

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeDocument(t, w).list(t), 1)
	})

	t.Run("lists rejected programmes for admins", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rejected := pendingProgramme()
		rejected.Reject(adminUser(), "Not a research programme")
		env.programmes.On("Rejected").Return([]model.Programme{*rejected}, nil)

		w := env.do("GET", "/programmes/awaiting_activation?rejected=1", nil, adminUser())

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeDocument(t, w).list(t), 1)
		env.programmes.AssertNotCalled(t, "AwaitingActivation")
	})

	t.Run("hides the queue from others", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("GET", "/programmes/awaiting_activation", nil, registeredUser(4, 9))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Admin rights required")
	})

	t.Run("activates", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		reason := "incomplete"
		p.ActivationRejectionReason = &reason
		env.programmes.On("Programme", uint(3)).Return(p, nil)
		env.programmes.On("SaveProgramme", mock.Anything, p).Return(nil)
		env.expectMembers(3)

		w := env.do("POST", "/programmes/3/activate", nil, adminUser())

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, p.IsActivated)
		assert.Nil(t, p.ActivationRejectionReason)
	})

	t.Run("refuses to activate twice", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		p.IsActivated = true
		env.programmes.On("Programme", uint(3)).Return(p, nil)

		w := env.do("POST", "/programmes/3/activate", nil, adminUser())

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "The programme is already activated")
	})

	t.Run("refuses non admins", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.programmes.On("Programme", uint(3)).Return(pendingProgramme(), nil)

		w := env.do("POST", "/programmes/3/activate", nil, registeredUser(4, 9))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Admin rights required")
	})

	t.Run("rejects with a reason", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		env.programmes.On("Programme", uint(3)).Return(p, nil)
		env.programmes.On("SaveProgramme", mock.Anything, p).Return(nil)
		env.expectMembers(3)

		req := httptest.NewRequest("POST", "/programmes/3/reject", strings.NewReader(`{"reason":"Not a programme"}`))
		req.Header.Set("Content-Type", "application/json")
		w := env.send(req, adminUser())

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, p.IsRejected())
		assert.Equal(t, "Not a programme", decodeDocument(t, w).single(t).Attributes["activation_rejection_reason"])
	})

	t.Run("takes the reason from the query", func(t *testing.T) {
		env := newTestEnv(t, nil)
		p := pendingProgramme()
		env.programmes.On("Programme", uint(3)).Return(p, nil)
		env.programmes.On("SaveProgramme", mock.Anything, p).Return(nil)
		env.expectMembers(3)

		w := env.do("POST", "/programmes/3/reject?reason=duplicate", nil, adminUser())

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "duplicate", *p.ActivationRejectionReason)
	})
}
