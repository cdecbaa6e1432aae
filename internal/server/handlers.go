package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/search"
)

const (
	messageInternalError = "Internal server error"
	healthTimeout        = 2 * time.Second
)

type errorResponse struct {
	Error string `json:"error"`
}

// SearchHandler serves GET /api/search?query=<text>[&mode=any|ml|en].
type SearchHandler struct {
	searcher search.Searcher
}

func NewSearchHandler(searcher search.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	text := strings.TrimSpace(params.Get("query"))
	if text == "" {
		writeJSON(w, http.StatusOK, []dictionary.Entry{})
		return
	}

	mode, err := search.ParseMode(params.Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, search.ErrInvalidMode.Error())
		return
	}

	entries, err := h.searcher.Search(r.Context(), search.Query{Text: text, Mode: mode})
	if err != nil {
		if errors.Is(err, search.ErrInvalidMode) {
			writeError(w, http.StatusBadRequest, search.ErrInvalidMode.Error())
			return
		}
		slog.Default().Error("search failed",
			"query", text,
			"mode", mode,
			"request_id", RequestID(r.Context()),
			"error", err)
		writeError(w, http.StatusInternalServerError, messageInternalError)
		return
	}
	if entries == nil {
		entries = []dictionary.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func healthHandler(db database.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Default().Warn("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
