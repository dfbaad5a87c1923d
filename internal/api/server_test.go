package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"symidx/internal/config"
	"symidx/internal/indexer"
	"symidx/internal/logging"
	"symidx/internal/parser"
)

func newTestServer(t *testing.T, root string, scan bool) *Server {
	t.Helper()

	manager := indexer.NewManager(indexer.ManagerConfig{
		RepoRoot: root,
		Workers:  2,
	}, parser.DefaultRegistry(), nil, logging.NewNop())

	if scan {
		if _, err := manager.FullScan(context.Background()); err != nil {
			t.Fatalf("FullScan() error = %v", err)
		}
	}

	return NewServer(manager, config.ServerConfig{Bind: "127.0.0.1", Port: 0}, logging.NewNop())
}

func seedRepo(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"a.py": "class Foo:\n    def bar(self):\n        pass\n",
		"b.py": "from a import Foo\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, t.TempDir(), false)

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if body["index"] != "uninitialized" {
		t.Errorf("index field = %v, want uninitialized", body["index"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestStatusEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status indexer.Status
	decodeBody(t, rec, &status)
	if status.State != "ready" {
		t.Errorf("state = %s, want ready", status.State)
	}
	if status.FilesIndexed != 2 {
		t.Errorf("files_indexed = %d, want 2", status.FilesIndexed)
	}
}

func TestContextEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/context?name=Foo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var ctx indexer.SymbolContext
	decodeBody(t, rec, &ctx)
	if len(ctx.Definitions) != 1 || ctx.Definitions[0].File != "a.py" {
		t.Errorf("definitions = %+v", ctx.Definitions)
	}
	if len(ctx.Usages) != 1 || ctx.Usages[0].File != "b.py" || ctx.Usages[0].Line != 1 {
		t.Errorf("usages = %+v", ctx.Usages)
	}
}

func TestContextEndpointUnknownSymbol(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/context?name=Nope", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Unknown symbols produce an empty but well-formed result
	var body map[string]json.RawMessage
	decodeBody(t, rec, &body)
	for _, key := range []string{"definitions", "usages", "related_symbols"} {
		raw, ok := body[key]
		if !ok {
			t.Errorf("field %q missing", key)
			continue
		}
		if string(raw) != "[]" {
			t.Errorf("field %q = %s, want []", key, raw)
		}
	}
}

func TestContextEndpointValidation(t *testing.T) {
	s := newTestServer(t, t.TempDir(), true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/context", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQueryEndpointsBeforeFirstScan(t *testing.T) {
	s := newTestServer(t, t.TempDir(), false)

	for _, target := range []string{"/api/v1/context?name=Foo", "/api/v1/search?q=foo"} {
		t.Run(target, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, target, "")
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}

			var body errorResponse
			decodeBody(t, rec, &body)
			if body.Error.Code != "NOT_READY" {
				t.Errorf("error code = %s, want NOT_READY", body.Error.Code)
			}
		})
	}
}

func TestSearchEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/search?q=foo", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Query   string              `json:"query"`
		Results []indexer.SearchHit `json:"results"`
	}
	decodeBody(t, rec, &body)
	if len(body.Results) != 1 || body.Results[0].Symbol != "Foo" {
		t.Errorf("results = %+v, want [Foo]", body.Results)
	}
	if body.Results[0].Context != nil {
		t.Error("context populated without depth")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/search?q=foo&depth=1", "")
	decodeBody(t, rec, &body)
	if len(body.Results) != 1 || body.Results[0].Context == nil {
		t.Errorf("results = %+v, want context with depth=1", body.Results)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/search?q=foo&depth=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad depth", rec.Code)
	}
}

func TestHookEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	if err := os.WriteFile(filepath.Join(root, "a.py"), []byte("class Baz:\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/hook", `{"changed_paths":["a.py"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		UpdatedFiles []string `json:"updated_files"`
	}
	decodeBody(t, rec, &body)
	if len(body.UpdatedFiles) != 1 || body.UpdatedFiles[0] != "a.py" {
		t.Errorf("updated_files = %v, want [a.py]", body.UpdatedFiles)
	}

	// The hook is synchronous: the rename is visible immediately
	ctxRec := doRequest(t, s, http.MethodGet, "/api/v1/context?name=Baz", "")
	var ctx indexer.SymbolContext
	decodeBody(t, ctxRec, &ctx)
	if len(ctx.Definitions) != 1 {
		t.Errorf("Baz definitions = %+v after hook", ctx.Definitions)
	}
}

func TestHookEndpointValidation(t *testing.T) {
	s := newTestServer(t, t.TempDir(), true)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"changed_paths":`, http.StatusBadRequest},
		{"empty list", `{"changed_paths":[]}`, http.StatusBadRequest},
		{"missing field", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/v1/hook", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/hook", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405 for GET", rec.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/graph?path=b.py", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var fg indexer.FileGraph
	decodeBody(t, rec, &fg)
	if len(fg.Imports) != 1 || fg.Imports[0] != "a.py" {
		t.Errorf("imports = %v, want [a.py]", fg.Imports)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/graph?path=missing.py", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/graph", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	root := t.TempDir()
	seedRepo(t, root)
	s := newTestServer(t, root, true)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/refresh", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "scheduled" {
		t.Errorf("status field = %v, want scheduled", body["status"])
	}
}
