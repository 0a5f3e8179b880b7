package endpoints

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jsonapi"
	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/render"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
)

// RegisterSampleEndpoints registers sample types and samples
func RegisterSampleEndpoints(s *server.Server) {
	deps := newAssetDeps(s)
	samplesStore := s.SamplesStore

	s.Router.HandleFunc("/sample_types", handleListSampleTypes(samplesStore, s.Serializer)).Methods("GET")
	s.Router.HandleFunc("/sample_types/{id:[0-9]+}", handleShowSampleType(samplesStore, s.Serializer)).Methods("GET")

	s.Router.HandleFunc("/samples", handleListAssets(deps, "Sample")).Methods("GET")
	s.Router.HandleFunc("/samples/{id:[0-9]+}", handleShowSample(deps, samplesStore)).Methods("GET")

	writes := s.Router.PathPrefix("/samples").Subrouter()
	writes.Use(middleware.RequireUser)
	writes.HandleFunc("", handleCreateSample(deps, samplesStore)).Methods("POST")
	writes.HandleFunc("/{id:[0-9]+}", handleUpdateSample(deps, samplesStore)).Methods("PATCH", "PUT")
	writes.HandleFunc("/{id:[0-9]+}", handleDeleteSample(deps, samplesStore)).Methods("DELETE")
}

func handleListSampleTypes(samplesStore store.SamplesStore, ser *jsonapi.Serializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := samplesStore.SampleTypes()
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		items := make([]model.Item, len(types))
		for i := range types {
			items[i] = &types[i]
		}
		jsonapi.Write(w, http.StatusOK, jsonapi.List(ser.Skeletons(items), ser.Meta()))
	}
}

var sampleTypePage = template.Must(template.New("sample_type").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" href="/css/status-page.css">
    <title>{{.Title}}</title>
  </head>
  <body>
    <main>
      <div class="left-panel">
        <h1>{{.Title}}</h1>
        <div class="description">{{.Description}}</div>
        <h2>Attributes</h2>
        <ul>
          {{range .Attributes}}<li>{{.}}</li>
          {{end}}
        </ul>
        <p>{{.SampleCount}} samples</p>
      </div>
    </main>
  </body>
</html>
`))

type sampleTypePageData struct {
	Title       string
	Description template.HTML
	Attributes  []template.HTML
	SampleCount int
}

func handleShowSampleType(samplesStore store.SamplesStore, ser *jsonapi.Serializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := idVar(r, "id")
		st, err := samplesStore.SampleType(id)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		links, err := samplesStore.SampleTypeLinks(id)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		if wantsJSON(r) {
			rel := jsonapi.SampleTypeRelations{
				Samples:                links.SampleIDs,
				LinkedSampleAttributes: links.LinkedSampleAttributeIDs,
				Tags:                   links.TagIDs,
			}
			jsonapi.Write(w, http.StatusOK, jsonapi.Single(ser.SampleType(st, rel), ser.Meta()))
			return
		}

		description, err := render.Markdown(st.Description)
		if err != nil {
			logging.Log.WithError(err).WithField("sample_type_id", id).Warn("rendering description")
		}
		data := sampleTypePageData{
			Title:       st.Title,
			Description: description,
			SampleCount: len(links.SampleIDs),
		}
		for i := range st.SampleAttributes {
			data.Attributes = append(data.Attributes, render.SampleAttributeDetails(&st.SampleAttributes[i]))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := sampleTypePage.Execute(w, data); err != nil {
			logging.Log.WithError(err).Error("rendering sample type page")
		}
	}
}

// findSample loads the sample of the {id} route variable with its type
func findSample(w http.ResponseWriter, r *http.Request, samplesStore store.SamplesStore) (*model.Sample, bool) {
	id, ok := idVar(r, "id")
	if !ok {
		jsonapi.WriteErrors(w, jsonapi.NewError(http.StatusNotFound, "Not found"))
		return nil, false
	}
	sample, err := samplesStore.Sample(id)
	if err != nil {
		respondWithStoreError(w, err)
		return nil, false
	}
	return sample, true
}

func respondWithSample(w http.ResponseWriter, status int, deps *assetDeps, sample *model.Sample) {
	rel, err := deps.relations(sample)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	jsonapi.Write(w, status, jsonapi.Single(deps.serializer.Sample(sample, rel), deps.serializer.Meta()))
}

func handleShowSample(deps *assetDeps, samplesStore store.SamplesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sample, ok := findSample(w, r, samplesStore)
		if !ok || !deps.authorize(w, r, sample, authz.ActionView) {
			return
		}
		respondWithSample(w, http.StatusOK, deps, sample)
	}
}

// applySampleAttributes sets the values and returns the policy sent
func applySampleAttributes(res *jsonapi.RequestResource, sample *model.Sample) (*jsonapi.PolicyAttribute, error) {
	var attrs jsonapi.SampleAttributes
	if err := res.DecodeAttributes(&attrs); err != nil {
		return nil, err
	}
	if res.HasAttribute("attribute_map") {
		if err := sample.SetData(attrs.AttributeMap); err != nil {
			return nil, err
		}
	}
	return attrs.Policy, nil
}

func handleCreateSample(deps *assetDeps, samplesStore store.SamplesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireRegistered(w, r)
		if !ok {
			return
		}
		res, err := jsonapi.Parse(r.Body, "samples", "")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		sampleTypeID, _, err := res.RelationshipID("sample_type")
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if sampleTypeID == nil {
			jsonapi.WriteErrors(w, jsonapi.FromValidation(model.ValidationErrors{{Field: "sample_type", Message: "Sample type can't be blank"}})...)
			return
		}
		st, err := samplesStore.SampleType(*sampleTypeID)
		if err != nil {
			e := jsonapi.Unprocessable("Sample type not found")
			e.Source = &jsonapi.ErrorSource{Pointer: "/data/relationships/sample_type"}
			jsonapi.WriteErrors(w, e)
			return
		}

		sample := &model.Sample{SampleTypeID: st.ID, SampleType: st}
		policy, err := applySampleAttributes(res, sample)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if !res.HasAttribute("attribute_map") {
			if err := sample.SetData(nil); err != nil {
				jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
				return
			}
		}
		links, err := readLinks(res, policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if links.ProjectIDs == nil || len(*links.ProjectIDs) == 0 {
			jsonapi.WriteErrors(w, jsonapi.FromValidation(model.ValidationErrors{{Field: "projects", Message: "Projects can't be blank"}})...)
			return
		}
		sample.SetContributorID(user.PersonID)

		err = deps.assets.Create(model.WithCurrentUser(r.Context(), user), sample, links)
		deps.auditChange(r, sample, "create", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithSample(w, http.StatusCreated, deps, sample)
	}
}

func handleUpdateSample(deps *assetDeps, samplesStore store.SamplesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sample, ok := findSample(w, r, samplesStore)
		if !ok || !deps.authorize(w, r, sample, authz.ActionEdit) {
			return
		}
		res, err := jsonapi.Parse(r.Body, "samples", mux.Vars(r)["id"])
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if res.HasRelationship("sample_type") {
			e := jsonapi.Unprocessable("The sample type of a sample cannot be changed")
			e.Source = &jsonapi.ErrorSource{Pointer: "/data/relationships/sample_type"}
			jsonapi.WriteErrors(w, e)
			return
		}
		policy, err := applySampleAttributes(res, sample)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}
		if policy != nil && !deps.authorize(w, r, sample, authz.ActionManage) {
			return
		}
		links, err := readLinks(res, policy)
		if err != nil {
			jsonapi.WriteErrors(w, jsonapi.AsErrors(err)...)
			return
		}

		err = deps.assets.Update(model.WithCurrentUser(r.Context(), currentUser(r)), sample, links)
		deps.auditChange(r, sample, "update", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		deps.invalidate(sample)
		respondWithSample(w, http.StatusOK, deps, sample)
	}
}

func handleDeleteSample(deps *assetDeps, samplesStore store.SamplesStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sample, ok := findSample(w, r, samplesStore)
		if !ok || !deps.authorize(w, r, sample, authz.ActionDelete) {
			return
		}
		err := deps.assets.Delete(r.Context(), sample)
		deps.auditChange(r, sample, "delete", err)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		jsonapi.Write(w, http.StatusOK, &jsonapi.Document{Meta: deps.serializer.Meta()})
	}
}
