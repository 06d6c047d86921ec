package resume

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler serves the resume file for download.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a download handler. A nil store answers 404.
func NewHandler(store Store, logger *slog.Logger) (handler *Handler) {
	if logger == nil {
		logger = slog.Default()
	}
	handler = &Handler{store: store, logger: logger}
	return handler
}

// ServeHTTP writes the resume as an attachment.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.store == nil {
		http.Error(w, "Resume not available", http.StatusNotFound)
		return
	}

	data, name, err := h.store.Fetch(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch resume", "location", h.store.Location(), "error", err)
		http.Error(w, "Resume not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", ContentType(DetectType(name, data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	_, err = w.Write(data)
	if err != nil {
		h.logger.Warn("failed to write resume", "error", err)
	}
}
