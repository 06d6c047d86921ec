package chat

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/nikogura/portfolio-assistant/pkg/llm"
	"github.com/nikogura/portfolio-assistant/pkg/parser"
	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
)

type fakeProvider struct {
	events  []llm.Event
	err     error
	block   bool
	calls   atomic.Int32
	stopped chan struct{}
	lastReq llm.Request
}

func (f *fakeProvider) Name() (name string) {
	name = "fake"
	return name
}

func (f *fakeProvider) Stream(ctx context.Context, req llm.Request, out chan<- llm.Event) (err error) {
	f.calls.Add(1)
	f.lastReq = req

	for _, ev := range f.events {
		err = llm.Emit(ctx, out, ev)
		if err != nil {
			return err
		}
	}

	if f.block {
		<-ctx.Done()
		if f.stopped != nil {
			close(f.stopped)
		}
		err = ctx.Err()
		return err
	}

	err = f.err
	return err
}

func testConfig() *portfolio.Config {
	cfg := portfolio.Config{
		Personal: portfolio.Personal{
			Name:  "Jane Doe",
			Title: "Engineer",
			Email: "jane@example.com",
			Bio:   "I build things.",
		},
		Social: portfolio.Social{LinkedIn: "https://linkedin.com/in/jane"},
	}
	portfolio.Normalize(&cfg)
	return &cfg
}

func newTestHandler(t *testing.T, provider llm.Provider, opts Options) *Handler {
	t.Helper()
	cfg := testConfig()

	p, err := parser.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	catalog, err := tools.NewCatalog(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}

	handler, err := NewHandler(provider, p, catalog, opts)
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}
	return handler
}

func post(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const userHello = `{"messages":[{"role":"user","content":"Hello there"}]}`

func TestMissingAPIKey(t *testing.T) {
	handler := newTestHandler(t, nil, Options{})

	rec := post(handler, userHello)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}

	if rec.Body.String() != MissingAPIKeyText {
		t.Errorf("Expected body '%s', got '%s'", MissingAPIKeyText, rec.Body.String())
	}

	if handler.ProviderName() != "none" {
		t.Errorf("Expected provider 'none', got '%s'", handler.ProviderName())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}

func TestBadRequests(t *testing.T) {
	provider := &fakeProvider{}
	handler := newTestHandler(t, provider, Options{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "not json", body: "hello", want: ErrInvalidBody.Error()},
		{name: "no messages", body: `{"prompt":"hi"}`, want: ErrNoMessages.Error()},
		{name: "messages not array", body: `{"messages":"hi"}`, want: ErrNoMessages.Error()},
		{name: "no user", body: `{"messages":[{"role":"assistant","content":"hi"}]}`, want: ErrNoUserMessage.Error()},
		{name: "empty user", body: `{"messages":[{"role":"user","content":"  "}]}`, want: ErrNoUserMessage.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(handler, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}

			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("Expected body to contain '%s', got '%s'", tt.want, rec.Body.String())
			}
		})
	}

	if provider.calls.Load() != 0 {
		t.Errorf("Provider must not be called for bad requests, got %d calls", provider.calls.Load())
	}
}

func TestProviderErrorsBeforeStream(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "network", err: errors.Wrap(syscall.ECONNREFUSED, "dial"), status: http.StatusServiceUnavailable, body: NetworkErrorText},
		{name: "generic", err: errors.New("quota exceeded"), status: http.StatusInternalServerError, body: "Internal Server Error: quota exceeded"},
		{name: "missing key", err: errors.Wrap(llm.ErrMissingAPIKey, "gemini"), status: http.StatusInternalServerError, body: MissingAPIKeyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeProvider{err: tt.err}, Options{})

			rec := post(handler, userHello)

			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}

			if rec.Body.String() != tt.body {
				t.Errorf("Expected body '%s', got '%s'", tt.body, rec.Body.String())
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{block: true}, Options{MaxDuration: 50 * time.Millisecond})

	rec := post(handler, userHello)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("Expected status 504, got %d", rec.Code)
	}

	if rec.Body.String() != TimeoutText {
		t.Errorf("Expected body '%s', got '%s'", TimeoutText, rec.Body.String())
	}
}

func TestStreamFraming(t *testing.T) {
	provider := &fakeProvider{
		events: []llm.Event{
			{Type: llm.EventToolCall, ToolCallID: "c1", ToolName: "getContact", Input: []byte(`{}`)},
			{Type: llm.EventToolResult, ToolCallID: "c1", ToolName: "getContact", Output: []byte(`{"email":"jane@example.com"}`)},
			{Type: llm.EventStepFinish},
			{Type: llm.EventTextDelta, Text: "Email "},
			{Type: llm.EventTextDelta, Text: "me."},
			{Type: llm.EventStepFinish},
		},
	}
	handler := newTestHandler(t, provider, Options{})

	rec := post(handler, userHello)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if rec.Header().Get(StreamHeader) != "v1" {
		t.Errorf("Expected stream header v1, got '%s'", rec.Header().Get(StreamHeader))
	}

	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got '%s'", rec.Header().Get("Content-Type"))
	}

	body := rec.Body.String()

	ordered := []string{
		`"type":"start"`,
		`"type":"start-step"`,
		`{"type":"tool-input-available","toolCallId":"c1","toolName":"getContact","input":{}}`,
		`{"type":"tool-output-available","toolCallId":"c1","output":{"email":"jane@example.com"}}`,
		`{"type":"finish-step"}`,
		`"type":"text-start"`,
		`"delta":"Email "`,
		`"delta":"me."`,
		`"type":"text-end"`,
		`{"type":"finish-step"}`,
		`{"type":"finish"}`,
		"data: [DONE]\n\n",
	}

	pos := 0
	for _, want := range ordered {
		idx := strings.Index(body[pos:], want)
		if idx < 0 {
			t.Fatalf("Expected '%s' after offset %d in body:\n%s", want, pos, body)
		}
		pos += idx + len(want)
	}

	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("Expected stream to end with [DONE]")
	}

	if provider.lastReq.System == "" || len(provider.lastReq.Tools) != 6 || provider.lastReq.Executor == nil {
		t.Errorf("Expected system prompt, tools and executor in request")
	}
}

func TestErrorAfterStreamStarted(t *testing.T) {
	provider := &fakeProvider{
		events: []llm.Event{{Type: llm.EventTextDelta, Text: "Partial"}},
		err:    errors.New("stream broke"),
	}
	handler := newTestHandler(t, provider, Options{})

	rec := post(handler, userHello)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `{"type":"error","errorText":"Internal Server Error: stream broke"}`) {
		t.Errorf("Expected error chunk, got:\n%s", body)
	}

	if strings.Contains(body, `{"type":"finish"}`) {
		t.Errorf("Errored stream must not finish normally:\n%s", body)
	}
}

func TestEmptyAnswer(t *testing.T) {
	handler := newTestHandler(t, &fakeProvider{}, Options{})

	rec := post(handler, userHello)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), `{"type":"finish"}`) {
		t.Errorf("Expected finish chunk, got:\n%s", rec.Body.String())
	}
}

func TestPresetShortCircuit(t *testing.T) {
	provider := &fakeProvider{}
	handler := newTestHandler(t, provider, Options{})

	rec := post(handler, `{"messages":[{"role":"user","content":"How can I reach you?"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if provider.calls.Load() != 0 {
		t.Errorf("Expected provider to be bypassed, got %d calls", provider.calls.Load())
	}

	body := rec.Body.String()
	for _, want := range []string{
		`"toolName":"getContact"`,
		`"email":"jane@example.com"`,
		`"delta":"Here's how you can reach me..."`,
		"data: [DONE]",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain '%s':\n%s", want, body)
		}
	}
}

func TestPresetOnlyForFirstQuestion(t *testing.T) {
	provider := &fakeProvider{}
	handler := newTestHandler(t, provider, Options{})

	body := `{"messages":[
		{"role":"user","content":"Hello"},
		{"role":"assistant","content":"Hi!"},
		{"role":"user","content":"How can I reach you?"}
	]}`
	post(handler, body)

	if provider.calls.Load() != 1 {
		t.Errorf("Expected provider call for follow-up question, got %d", provider.calls.Load())
	}

	post(handler, `{"messages":[{"role":"user","content":"how can I reach you?"}]}`)

	if provider.calls.Load() != 2 {
		t.Errorf("Expected provider call for non-canonical casing, got %d", provider.calls.Load())
	}
}

func TestClientCancelStopsProvider(t *testing.T) {
	provider := &fakeProvider{
		events:  []llm.Event{{Type: llm.EventTextDelta, Text: "Thinking"}},
		block:   true,
		stopped: make(chan struct{}),
	}
	handler := newTestHandler(t, provider, Options{MaxDuration: time.Minute})

	server := httptest.NewServer(handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL, strings.NewReader(userHello))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read first chunk: %v", err)
	}

	if !strings.HasPrefix(line, "data: ") {
		t.Errorf("Expected SSE data line, got '%s'", line)
	}

	cancel()

	select {
	case <-provider.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Provider did not stop after client disconnect")
	}
}

func TestParseMessagesParts(t *testing.T) {
	body := []byte(`{"messages":[{"role":"user","parts":[{"type":"text","text":"What are "},{"type":"file","url":"x"},{"type":"text","text":"your skills?"}]}]}`)

	messages, err := ParseMessages(body)
	if err != nil {
		t.Fatalf("ParseMessages failed: %v", err)
	}

	if len(messages) != 1 || messages[0].Content != "What are your skills?" {
		t.Errorf("Expected concatenated text parts, got %+v", messages)
	}
}

func TestErrorResponse(t *testing.T) {
	status, text := ErrorResponse(errors.Wrap(context.DeadlineExceeded, "stream"))
	if status != http.StatusGatewayTimeout || text != TimeoutText {
		t.Errorf("Expected 504 '%s', got %d '%s'", TimeoutText, status, text)
	}
}
