package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikogura/portfolio-assistant/pkg/chat"
	"github.com/nikogura/portfolio-assistant/pkg/parser"
	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/nikogura/portfolio-assistant/pkg/resume"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
)

func newTestServer(t *testing.T, loaded bool, store resume.Store) http.Handler {
	t.Helper()

	cfg := portfolio.Fallback()
	cfg.Personal.Name = "Jane Doe"
	cfg.Personal.Bio = "Backend engineer in Lisbon."
	cfg.Resume.Title = "Jane Doe CV"
	cfg.PresetQuestions.Me = []string{"Who are you?"}

	p, err := parser.New(&cfg)
	if err != nil {
		t.Fatalf("parser.New failed: %v", err)
	}

	catalog, err := tools.NewCatalog(&cfg, nil)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	chatHandler, err := chat.NewHandler(nil, p, catalog, chat.Options{})
	if err != nil {
		t.Fatalf("chat.NewHandler failed: %v", err)
	}

	srv, err := New(p, catalog, chatHandler, resume.NewHandler(store, nil), Options{ConfigLoaded: loaded})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresHandlers(t *testing.T) {
	_, err := New(nil, nil, nil, nil, Options{})
	if err == nil {
		t.Error("Expected error for missing handlers, got nil")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		loaded bool
		want   string
	}{
		{name: "loaded", loaded: true, want: ConfigLoaded},
		{name: "fallback", loaded: false, want: ConfigFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.loaded, nil), http.MethodGet, "/healthz", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rec.Code)
			}

			var body map[string]string
			err := json.Unmarshal(rec.Body.Bytes(), &body)
			if err != nil {
				t.Fatalf("Failed to decode health: %v", err)
			}

			if body["status"] != "ok" || body["provider"] != "none" || body["config"] != tt.want {
				t.Errorf("Unexpected health body: %v", body)
			}
		})
	}
}

func TestProfileEndpoints(t *testing.T) {
	h := newTestServer(t, true, nil)

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/profile", want: "Jane Doe"},
		{path: "/api/contact", want: "error@example.com"},
		{path: "/api/skills", want: "["},
		{path: "/api/projects", want: "["},
		{path: "/api/entry-level", want: parser.NotSeekingMessage},
		{path: "/api/resume", want: "Jane Doe CV"},
	}

	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", tt.path, rec.Code)
			continue
		}

		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("%s: expected JSON content type, got %s", tt.path, rec.Header().Get("Content-Type"))
		}

		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: expected body to contain %q, got %s", tt.path, tt.want, rec.Body.String())
		}
	}
}

func TestPresets(t *testing.T) {
	h := newTestServer(t, true, nil)

	rec := do(t, h, http.MethodGet, "/api/presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Replies   map[string]parser.PresetReply `json:"replies"`
		Questions []parser.QuestionGroup        `json:"questions"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	if err != nil {
		t.Fatalf("Failed to decode presets: %v", err)
	}

	if len(body.Replies) != 6 {
		t.Errorf("Expected 6 preset replies, got %d", len(body.Replies))
	}

	if len(body.Questions) != 1 || body.Questions[0].Group != "me" {
		t.Errorf("Expected the configured question group, got %+v", body.Questions)
	}
}

func TestPresetLookup(t *testing.T) {
	h := newTestServer(t, true, nil)

	rec := do(t, h, http.MethodPost, "/api/presets", `{"question":"Who are you?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body struct {
		Reply  string          `json:"reply"`
		Tool   string          `json:"tool"`
		Result json.RawMessage `json:"result"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	if err != nil {
		t.Fatalf("Failed to decode preset: %v", err)
	}

	if body.Reply != "Backend engineer in Lisbon." {
		t.Errorf("Unexpected reply: %s", body.Reply)
	}

	if body.Tool != string(tools.GetPresentation) {
		t.Errorf("Expected tool %s, got %s", tools.GetPresentation, body.Tool)
	}

	if !strings.Contains(string(body.Result), "Jane Doe") {
		t.Errorf("Expected presentation result, got %s", body.Result)
	}
}

func TestPresetLookupErrors(t *testing.T) {
	h := newTestServer(t, true, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "unknown question", body: `{"question":"who are you?"}`, status: http.StatusNotFound},
		{name: "not json", body: `nope`, status: http.StatusBadRequest},
		{name: "missing question", body: `{}`, status: http.StatusBadRequest},
		{name: "non-string question", body: `{"question":7}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/presets", tt.body)
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestTools(t *testing.T) {
	h := newTestServer(t, true, nil)

	rec := do(t, h, http.MethodGet, "/api/tools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var defs []tools.Definition
	err := json.Unmarshal(rec.Body.Bytes(), &defs)
	if err != nil {
		t.Fatalf("Failed to decode definitions: %v", err)
	}

	if len(defs) != len(tools.Names()) {
		t.Errorf("Expected %d definitions, got %d", len(tools.Names()), len(defs))
	}

	rec = do(t, h, http.MethodGet, "/api/tools/getContact", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "error@example.com") {
		t.Errorf("Expected contact result, got %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/tools/getWeather", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown tool, got %d", rec.Code)
	}
}

func TestChatRouteWithoutProvider(t *testing.T) {
	h := newTestServer(t, true, nil)

	rec := do(t, h, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), chat.MissingAPIKeyText) {
		t.Errorf("Expected missing key text, got %s", rec.Body.String())
	}
}

func TestResumeDownload(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "cv.pdf"), []byte("%PDF-1.4 cv"), 0600)
	if err != nil {
		t.Fatalf("Failed to write resume: %v", err)
	}

	h := newTestServer(t, true, resume.NewLocalStore(dir, "cv.pdf"))

	rec := do(t, h, http.MethodGet, "/resume/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if rec.Body.String() != "%PDF-1.4 cv" {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = do(t, newTestServer(t, true, nil), http.MethodGet, "/resume/download", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without store, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, true, nil), http.MethodDelete, "/api/profile", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
