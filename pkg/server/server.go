// Package server exposes the portfolio, the tools and the chat endpoint over HTTP.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikogura/portfolio-assistant/pkg/chat"
	"github.com/nikogura/portfolio-assistant/pkg/parser"
	"github.com/nikogura/portfolio-assistant/pkg/resume"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Config states reported by /healthz.
const (
	ConfigLoaded   = "loaded"
	ConfigFallback = "fallback"
)

// Options configures a Server.
type Options struct {
	// ConfigLoaded is false when the fallback portfolio is being served.
	ConfigLoaded bool
	Logger       *slog.Logger
}

// Server routes HTTP requests to the parser, tool catalog, chat handler and
// resume download.
type Server struct {
	parser  *parser.Parser
	catalog *tools.Catalog
	chat    *chat.Handler
	resume  *resume.Handler
	loaded  bool
	logger  *slog.Logger
}

// New creates a server. All handlers are required.
func New(p *parser.Parser, catalog *tools.Catalog, chatHandler *chat.Handler, resumeHandler *resume.Handler, opts Options) (s *Server, err error) {
	if p == nil || catalog == nil || chatHandler == nil || resumeHandler == nil {
		err = errors.New("parser, catalog, chat and resume handlers are required")
		return s, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s = &Server{
		parser:  p,
		catalog: catalog,
		chat:    chatHandler,
		resume:  resumeHandler,
		loaded:  opts.ConfigLoaded,
		logger:  opts.Logger,
	}

	return s, err
}

// AddRoutes registers every route on mux.
func (s *Server) AddRoutes(mux *http.ServeMux) {
	mux.Handle("/api/chat", s.chat)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("POST /api/presets", s.handlePresetLookup)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("GET /api/contact", s.handleContact)
	mux.HandleFunc("GET /api/skills", s.handleSkills)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/entry-level", s.handleEntryLevel)
	mux.HandleFunc("GET /api/resume", s.handleResume)
	mux.HandleFunc("GET /api/tools", s.handleTools)
	mux.HandleFunc("GET /api/tools/{name}", s.handleTool)
	mux.Handle("GET /resume/download", s.resume)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routed, request-logging handler.
func (s *Server) Handler() (handler http.Handler) {
	mux := http.NewServeMux()
	s.AddRoutes(mux)
	handler = s.logRequests(mux)
	return handler
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"replies":   s.parser.PresetReplies(),
		"questions": s.parser.SuggestedQuestions(),
	})
}

type presetResponse struct {
	Reply  string          `json:"reply"`
	Tool   tools.Name      `json:"tool"`
	Result json.RawMessage `json:"result"`
}

func (s *Server) handlePresetLookup(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil || !gjson.ValidBytes(body) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	question := gjson.GetBytes(body, "question")
	if question.Type != gjson.String {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	reply, found := s.parser.Preset(question.String())
	if !found {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no preset reply for question"})
		return
	}

	result, err := s.catalog.Invoke(r.Context(), string(reply.Tool), nil)
	if err != nil {
		s.logger.Error("preset tool failed", "tool", reply.Tool, "error", err)
		http.Error(w, "preset tool failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, presetResponse{Reply: reply.Reply, Tool: reply.Tool, Result: result})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.parser.ProfileInfo())
}

func (s *Server) handleContact(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.parser.ContactInfo())
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.parser.SkillsData())
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.parser.ProjectData())
}

func (s *Server) handleEntryLevel(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"text": s.parser.EntryLevelInfo()})
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.parser.ResumeDetails())
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Definitions())
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	output, err := s.catalog.Invoke(r.Context(), r.PathValue("name"), nil)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("tool failed", "tool", r.PathValue("name"), "error", err)
		http.Error(w, "tool failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(output)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := ConfigFallback
	if s.loaded {
		state = ConfigLoaded
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": s.chat.ProviderName(),
		"config":   state,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// statusRecorder captures the response status for request logs. It forwards
// Flush so streamed chat responses are not buffered.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) (handler http.Handler) {
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
	return handler
}
