// Package httpapi is the HTTP surface of the CreativeCube API: auth and
// session endpoints, project and blueprint management, the SSE event stream,
// and the operational probes.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/blueprint"
	"creativecube.dev/internal/obs"
	"creativecube.dev/internal/project"
	"creativecube.dev/internal/stream"
)

// ReadyProbe checks readiness, pinging the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API wires the HTTP mux to the domain services.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	sessions   *auth.Service
	tokens     *auth.TokenIssuer
	projects   project.Service
	blueprints *blueprint.Service
	stream     *stream.Stream

	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

// Options carries the collaborators the API needs.
type Options struct {
	ReadyProbe   ReadyProbe
	Version      string
	Sessions     *auth.Service
	Tokens       *auth.TokenIssuer
	Projects     project.Service
	Blueprints   *blueprint.Service
	Stream       *stream.Stream
	MaxBodyBytes int64
}

func New(opts Options) *API {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 32 << 20
	}
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   opts.ReadyProbe,
		version:      opts.Version,
		sessions:     opts.Sessions,
		tokens:       opts.Tokens,
		projects:     opts.Projects,
		blueprints:   opts.Blueprints,
		stream:       opts.Stream,
		maxBodyBytes: opts.MaxBodyBytes,
		rateBurst:    50,
		ratePerSec:   25,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/refresh-token", a.handleRefresh)
	a.mux.HandleFunc("/api/auth/profile", a.handleProfile)

	// projects
	a.mux.HandleFunc("/api/projects", a.handleProjectsCollection)
	a.mux.HandleFunc("/api/projects/", a.handleProjectResource)

	// blueprints
	a.mux.HandleFunc("/api/blueprint/upload", a.handleBlueprintUpload)
	a.mux.HandleFunc("/api/blueprint/", a.handleBlueprintResource)

	// SSE
	a.mux.HandleFunc("/api/events", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "creativecube-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
