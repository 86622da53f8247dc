package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"creativecube.dev/internal/audit"
	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/blueprint"
	"creativecube.dev/internal/project"
)

type createProjectRequest struct {
	Name        string  `json:"name"`
	ServiceType string  `json:"service_type"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type assignRequest struct {
	EngineerID string `json:"engineer_id"`
}

func (a *API) handleProjectsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createProject(w, r)
	case http.MethodGet:
		a.listProjects(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/assign"); ok {
		if id == "" {
			writeError(w, r, http.StatusNotFound, "project not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.assignProject(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProject(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.projects.Create(r.Context(), identity.ID, project.Project{
		Name:        strings.TrimSpace(req.Name),
		ServiceType: strings.TrimSpace(req.ServiceType),
		City:        strings.TrimSpace(req.City),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		handleProjectError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.create", map[string]any{
		"project_id":   p.ID,
		"service_type": p.ServiceType,
	})

	w.Header().Set("Location", "/api/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

type projectWithBlueprints struct {
	project.Project
	Blueprints []blueprint.Blueprint `json:"blueprints"`
}

func (a *API) attachBlueprints(r *http.Request, userID string, p project.Project) projectWithBlueprints {
	out := projectWithBlueprints{Project: p, Blueprints: []blueprint.Blueprint{}}
	if a.blueprints == nil {
		return out
	}
	// Listing failures degrade to an empty set; the project itself is the
	// resource being served.
	if list, err := a.blueprints.ListByProject(r.Context(), userID, p.ID); err == nil && list != nil {
		out.Blueprints = list
	}
	return out
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := a.projects.ListByUser(r.Context(), identity.ID)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	items := make([]projectWithBlueprints, 0, len(list))
	for _, p := range list {
		items = append(items, a.attachBlueprints(r, identity.ID, p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := a.projects.Get(r.Context(), identity.ID, id)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.attachBlueprints(r, identity.ID, p))
}

func (a *API) assignProject(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req assignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	engineerID := strings.TrimSpace(req.EngineerID)
	if engineerID == "" {
		writeError(w, r, http.StatusBadRequest, "engineer_id is required")
		return
	}

	p, err := a.projects.Assign(r.Context(), identity.ID, id, engineerID)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "project.assign", map[string]any{
		"project_id":  p.ID,
		"engineer_id": engineerID,
	})
	writeJSON(w, http.StatusOK, p)
}

func handleProjectError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, project.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, project.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "project not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
