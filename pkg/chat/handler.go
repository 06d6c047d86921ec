// Package chat serves the streamed chat endpoint: it validates the
// conversation, short-circuits canonical preset questions and relays provider
// events to the client as a UI message stream.
package chat

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-assistant/pkg/llm"
	"github.com/nikogura/portfolio-assistant/pkg/parser"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	// DefaultMaxDuration is the per-request ceiling.
	DefaultMaxDuration = 30 * time.Second

	maxBodyBytes = 1 << 20
)

// Client-facing error texts.
const (
	MissingAPIKeyText = "Missing API key"
	NetworkErrorText  = "Network error. Please check your connection and try again."
	TimeoutText       = "Request timed out"
	InternalErrorText = "Internal Server Error"
)

// Malformed chat requests. Their text is returned with a 400.
var (
	ErrInvalidBody   = errors.New("request body must be JSON")
	ErrNoMessages    = errors.New("messages must be an array")
	ErrNoUserMessage = errors.New("no user message")
)

// Options tunes a Handler. Zero values select defaults.
type Options struct {
	MaxDuration time.Duration
	MaxSteps    int
	MaxTokens   int
	Logger      *slog.Logger
}

// Handler serves POST /api/chat. It keeps no per-conversation state.
type Handler struct {
	provider    llm.Provider
	parser      *parser.Parser
	catalog     *tools.Catalog
	maxDuration time.Duration
	maxSteps    int
	maxTokens   int
	logger      *slog.Logger
}

// NewHandler creates the chat handler. provider may be nil when no credentials
// are configured; requests then fail with 500 "Missing API key".
func NewHandler(provider llm.Provider, p *parser.Parser, catalog *tools.Catalog, opts Options) (handler *Handler, err error) {
	if p == nil || catalog == nil {
		err = errors.New("parser and tool catalog are required")
		return handler, err
	}

	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultMaxDuration
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	handler = &Handler{
		provider:    provider,
		parser:      p,
		catalog:     catalog,
		maxDuration: opts.MaxDuration,
		maxSteps:    opts.MaxSteps,
		maxTokens:   opts.MaxTokens,
		logger:      opts.Logger,
	}

	return handler, err
}

// ProviderName returns the configured provider name, or "none".
func (h *Handler) ProviderName() (name string) {
	if h.provider == nil {
		name = "none"
		return name
	}
	name = h.provider.Name()
	return name
}

// ServeHTTP handles one chat request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.provider == nil {
		h.logger.Error("chat request rejected", "error", llm.ErrMissingAPIKey)
		writeText(w, http.StatusInternalServerError, MissingAPIKeyText)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	messages, err := ParseMessages(body)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	h.logger.Info("chat request", "provider", h.provider.Name(), "messages", len(messages))

	if reply, question, ok := h.preset(messages); ok {
		err = h.streamPreset(r.Context(), w, reply)
		if err != nil {
			h.logger.Warn("preset stream interrupted", "question", question, "error", err)
		}
		h.logger.Info("chat request finished", "preset", true, "duration", time.Since(start))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.maxDuration)
	defer cancel()

	req := llm.Request{
		System:    h.parser.SystemPrompt(),
		Messages:  messages,
		Tools:     h.catalog.Definitions(),
		Executor:  h.catalog,
		MaxSteps:  h.maxSteps,
		MaxTokens: h.maxTokens,
	}

	events := make(chan llm.Event)
	errc := make(chan error, 1)

	go func() {
		errc <- h.provider.Stream(ctx, req, events)
		close(events)
	}()

	sw := NewStreamWriter(w)
	var writeErr error

	for ev := range events {
		if writeErr != nil {
			continue
		}

		if !sw.Started() {
			writeErr = sw.Begin()
		}

		if writeErr == nil {
			writeErr = sw.Write(ev)
		}

		if writeErr != nil {
			// Client is gone. Stop the provider and drain.
			cancel()
		}
	}

	streamErr := <-errc

	switch {
	case writeErr != nil:
		h.logger.Warn("chat stream interrupted", "error", writeErr)
	case streamErr != nil:
		h.fail(w, sw, r, streamErr)
	case !sw.Started():
		writeErr = sw.Begin()
		if writeErr == nil {
			writeErr = sw.Finish()
		}
	default:
		writeErr = sw.Finish()
	}

	h.logger.Info("chat request finished", "preset", false, "duration", time.Since(start), "write_error", writeErr)
}

// fail reports a provider error as a status code before streaming, or as an
// error chunk after.
func (h *Handler) fail(w http.ResponseWriter, sw *StreamWriter, r *http.Request, err error) {
	kind := llm.Classify(err)

	if kind == llm.KindCanceled && r.Context().Err() != nil {
		h.logger.Info("chat request canceled by client")
		return
	}

	status, text := ErrorResponse(err)
	h.logger.Error("provider failed", "kind", kind.String(), "status", status, "error", err)

	if !sw.Started() {
		writeText(w, status, text)
		return
	}

	writeErr := sw.Error(text)
	if writeErr != nil {
		h.logger.Warn("failed to write error chunk", "error", writeErr)
	}
}

// ErrorResponse maps a provider error to a status code and client text.
func ErrorResponse(err error) (status int, text string) {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		status = http.StatusInternalServerError
		text = MissingAPIKeyText
		return status, text
	}

	switch llm.Classify(err) {
	case llm.KindNetwork:
		status = http.StatusServiceUnavailable
		text = NetworkErrorText
	case llm.KindTimeout:
		status = http.StatusGatewayTimeout
		text = TimeoutText
	default:
		status = http.StatusInternalServerError
		text = InternalErrorText + ": " + err.Error()
	}

	return status, text
}

// preset reports whether the conversation is a single canonical question.
func (h *Handler) preset(messages []llm.Message) (reply parser.PresetReply, question string, ok bool) {
	users := 0
	for _, msg := range messages {
		if msg.Role == llm.RoleUser {
			users++
		}
	}

	last := messages[len(messages)-1]
	if users != 1 || last.Role != llm.RoleUser {
		return reply, question, ok
	}

	question = last.Content
	reply, ok = h.parser.Preset(question)
	return reply, question, ok
}

// streamPreset answers a canonical question without the model: the bound
// tool's output followed by the canned reply.
func (h *Handler) streamPreset(ctx context.Context, w http.ResponseWriter, reply parser.PresetReply) (err error) {
	output, err := h.catalog.Invoke(ctx, string(reply.Tool), nil)
	if err != nil {
		status, text := ErrorResponse(err)
		writeText(w, status, text)
		return err
	}

	callID := "call_" + uuid.NewString()
	events := []llm.Event{
		{Type: llm.EventToolCall, ToolCallID: callID, ToolName: string(reply.Tool), Input: []byte(`{}`)},
		{Type: llm.EventToolResult, ToolCallID: callID, ToolName: string(reply.Tool), Output: output},
		{Type: llm.EventStepFinish},
		{Type: llm.EventTextDelta, Text: reply.Reply},
	}

	sw := NewStreamWriter(w)
	err = sw.Begin()
	if err != nil {
		return err
	}

	for _, ev := range events {
		err = sw.Write(ev)
		if err != nil {
			return err
		}
	}

	err = sw.Finish()
	return err
}

// ParseMessages extracts the conversation from a chat request body. Each
// message carries either a content string or UI parts, whose text parts are
// concatenated.
func ParseMessages(body []byte) (messages []llm.Message, err error) {
	if !gjson.ValidBytes(body) {
		err = ErrInvalidBody
		return messages, err
	}

	list := gjson.GetBytes(body, "messages")
	if !list.IsArray() {
		err = ErrNoMessages
		return messages, err
	}

	hasUser := false
	list.ForEach(func(_, item gjson.Result) bool {
		role := item.Get("role").String()
		content := messageText(item)

		if role == llm.RoleUser && strings.TrimSpace(content) != "" {
			hasUser = true
		}

		messages = append(messages, llm.Message{Role: role, Content: content})
		return true
	})

	if !hasUser {
		err = ErrNoUserMessage
		return messages, err
	}

	return messages, err
}

func messageText(item gjson.Result) (text string) {
	content := item.Get("content")
	if content.Type == gjson.String {
		text = content.String()
		return text
	}

	var b strings.Builder
	item.Get("parts").ForEach(func(_, part gjson.Result) bool {
		if part.Get("type").String() == "text" {
			b.WriteString(part.Get("text").String())
		}
		return true
	})

	text = b.String()
	return text
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
