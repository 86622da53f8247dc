package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"creativecube.dev/internal/audit"
	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/blueprint"
)

// multipart memory threshold; larger parts spill to temp files.
const uploadMemoryBytes = 8 << 20

func (a *API) handleBlueprintUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	projectID := strings.TrimSpace(r.FormValue("project_id"))
	fileType := strings.TrimSpace(r.FormValue("file_type"))
	if projectID == "" || fileType == "" {
		writeError(w, r, http.StatusBadRequest, "project_id and file_type are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	b, err := a.blueprints.Upload(r.Context(), identity.ID, projectID, fileType, header.Filename, file)
	if err != nil {
		handleBlueprintError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "blueprint.upload", map[string]any{
		"blueprint_id": b.ID,
		"project_id":   b.ProjectID,
		"file_type":    b.FileType,
	})
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) handleBlueprintResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/blueprint/")
	id, action, found := strings.Cut(path, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if !found || action == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		b, err := a.blueprints.Get(r.Context(), identity.ID, id)
		if err != nil {
			handleBlueprintError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}

	switch action {
	case "process":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		res, err := a.blueprints.Process(r.Context(), identity.ID, id)
		if err != nil {
			handleBlueprintError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "blueprint.process", map[string]any{
			"blueprint_id": id,
			"score":        res.ComplianceScore,
		})
		writeJSON(w, http.StatusOK, res)
	case "result":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		res, err := a.blueprints.Result(r.Context(), identity.ID, id)
		if err != nil {
			handleBlueprintError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "download":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		url, err := a.blueprints.DownloadURL(r.Context(), identity.ID, id)
		if err != nil {
			handleBlueprintError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"download_url": url})
	case "report":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		url, err := a.blueprints.GenerateReport(r.Context(), identity.ID, id)
		if err != nil {
			handleBlueprintError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "blueprint.report", map[string]any{
			"blueprint_id": id,
		})
		writeJSON(w, http.StatusOK, map[string]any{"report_url": url})
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func handleBlueprintError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blueprint.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, blueprint.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "blueprint not found")
	case errors.Is(err, blueprint.ErrNoResult):
		writeError(w, r, http.StatusNotFound, "no analysis result")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
