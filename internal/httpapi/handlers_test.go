package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"creativecube.dev/internal/analysis"
	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/blob"
	"creativecube.dev/internal/blueprint"
	"creativecube.dev/internal/project"
	"creativecube.dev/internal/stream"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	tokens := auth.NewTokenIssuer(testSecret, "creativecube", "creativecube-api", 30*time.Minute, 14*24*time.Hour)
	sessions := auth.NewService(auth.NewInMemory(), tokens)
	projects := project.NewInMemory()
	blueprints := blueprint.NewService(blueprint.NewInMemory(), projects, blob.NewInMemory(), analysis.NewStub(), stream.New())

	api := New(Options{
		Version:    "test",
		Sessions:   sessions,
		Tokens:     tokens,
		Projects:   projects,
		Blueprints: blueprints,
		Stream:     stream.New(),
	})
	api.rateBurst = 100
	api.ratePerSec = 100

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (c *apiClient) register(email, password string) authResponse {
	c.t.Helper()
	resp := c.post("/api/auth/register", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("unexpected register status: %d", resp.StatusCode)
	}
	payload := decode[authResponse](c.t, resp)
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		c.t.Fatalf("register returned incomplete credentials: %+v", payload)
	}
	return payload
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestAuthFlow(t *testing.T) {
	c := newTestAPI(t)

	creds := c.register("flow@example.com", "correct horse battery staple")

	// duplicate registration conflicts
	resp := c.post("/api/auth/register", map[string]any{
		"email":    "flow@example.com",
		"password": "another password",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}

	// login issues a fresh pair
	resp = c.post("/api/auth/login", map[string]any{
		"email":    "flow@example.com",
		"password": "correct horse battery staple",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	login := decode[authResponse](t, resp)
	if login.RefreshToken == creds.RefreshToken {
		t.Fatal("login did not rotate the refresh token")
	}

	// refresh rotates again; the old token dies
	resp = c.post("/api/auth/refresh-token", map[string]any{
		"email":         "flow@example.com",
		"refresh_token": login.RefreshToken,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", resp.StatusCode)
	}
	refreshed := decode[authResponse](t, resp)

	resp = c.post("/api/auth/refresh-token", map[string]any{
		"email":         "flow@example.com",
		"refresh_token": login.RefreshToken,
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale refresh status = %d, want 401", resp.StatusCode)
	}

	// profile with the newest access token
	resp = c.get("/api/auth/profile", nil, bearerHeader(refreshed.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", resp.StatusCode)
	}
	profile := decode[profileResponse](t, resp)
	if profile.Email != "flow@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	c := newTestAPI(t)
	c.register("user@example.com", "a long enough password")

	resp := c.post("/api/auth/login", map[string]any{
		"email":    "user@example.com",
		"password": "wrong",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", resp.StatusCode)
	}

	resp = c.post("/api/auth/login", map[string]any{
		"email":    "ghost@example.com",
		"password": "wrong",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want 401", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/api/projects", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	resp = c.get("/api/projects", nil, bearerHeader("not-a-token"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", resp.StatusCode)
	}
}

func TestProjectFlow(t *testing.T) {
	c := newTestAPI(t)
	creds := c.register("owner@example.com", "a long enough password")
	headers := bearerHeader(creds.AccessToken)

	resp := c.post("/api/projects", map[string]any{
		"name":         "Warehouse",
		"service_type": "structural",
		"city":         "Riyadh",
		"latitude":     24.7,
		"longitude":    46.7,
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decode[project.Project](t, resp)
	if created.Status != project.StatusQueued {
		t.Fatalf("unexpected status: %s", created.Status)
	}

	resp = c.get("/api/projects/"+created.ID, nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/projects/"+created.ID+"/assign", map[string]any{
		"engineer_id": "engineer-7",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign status = %d, want 200", resp.StatusCode)
	}
	assigned := decode[project.Project](t, resp)
	if assigned.AssignedTo == nil || *assigned.AssignedTo != "engineer-7" {
		t.Fatalf("assignment missing: %+v", assigned)
	}

	// another user cannot see it
	other := c.register("other@example.com", "a long enough password")
	resp = c.get("/api/projects/"+created.ID, nil, bearerHeader(other.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", resp.StatusCode)
	}

	resp = c.post("/api/projects", map[string]any{
		"name":         "Bad",
		"service_type": "plumbing",
		"city":         "Riyadh",
	}, headers)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d, want 400", resp.StatusCode)
	}
}

func (c *apiClient) uploadBlueprint(projectID, fileType, filename, token string) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("project_id", projectID); err != nil {
		c.t.Fatalf("write field: %v", err)
	}
	if err := mw.WriteField("file_type", fileType); err != nil {
		c.t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		c.t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, "%PDF-1.4 test"); err != nil {
		c.t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		c.t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/blueprint/upload", &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestBlueprintFlow(t *testing.T) {
	c := newTestAPI(t)
	creds := c.register("builder@example.com", "a long enough password")
	headers := bearerHeader(creds.AccessToken)

	resp := c.post("/api/projects", map[string]any{
		"name":         "Tower",
		"service_type": "architectural",
		"city":         "Jeddah",
		"latitude":     21.5,
		"longitude":    39.2,
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project status = %d", resp.StatusCode)
	}
	p := decode[project.Project](t, resp)

	resp = c.uploadBlueprint(p.ID, "architectural", "floor1.pdf", creds.AccessToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	b := decode[blueprint.Blueprint](t, resp)
	if b.Status != blueprint.StatusUploaded {
		t.Fatalf("unexpected blueprint status: %s", b.Status)
	}

	// project detail carries its blueprints
	resp = c.get("/api/projects/"+p.ID, nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get project status = %d", resp.StatusCode)
	}
	withBPs := decode[projectWithBlueprints](t, resp)
	if len(withBPs.Blueprints) != 1 || withBPs.Blueprints[0].ID != b.ID {
		t.Fatalf("blueprint not attached to project: %+v", withBPs.Blueprints)
	}

	// result before processing is a 404
	resp = c.get("/api/blueprint/"+b.ID+"/result", nil, headers)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("premature result status = %d, want 404", resp.StatusCode)
	}

	resp = c.post("/api/blueprint/"+b.ID+"/process", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d, want 200", resp.StatusCode)
	}
	res := decode[blueprint.Result](t, resp)
	if res.ComplianceScore != 87.5 {
		t.Fatalf("unexpected score: %v", res.ComplianceScore)
	}

	resp = c.get("/api/blueprint/"+b.ID+"/result", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("result status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/api/blueprint/"+b.ID+"/report", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d, want 200", resp.StatusCode)
	}
	report := decode[map[string]string](t, resp)
	if report["report_url"] == "" {
		t.Fatal("empty report url")
	}

	resp = c.get("/api/blueprint/"+b.ID+"/download", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", resp.StatusCode)
	}
	download := decode[map[string]string](t, resp)
	if download["download_url"] == "" {
		t.Fatal("empty download url")
	}

	// upload against a foreign project is a 404
	other := c.register("intruder@example.com", "a long enough password")
	resp = c.uploadBlueprint(p.ID, "deed", "deed.pdf", other.AccessToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign upload status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	if payload["status"] != "ok" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
