// Package web serves the landing page and the search page.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/lookup"
	"github.com/at-ishikawa/pacha/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ModeOption is one choice of the search mode toggle.
type ModeOption struct {
	Value   search.Mode
	Label   string
	Checked bool
}

// SearchPage is the data rendered by search.html.
type SearchPage struct {
	Query      string
	Mode       search.Mode
	Modes      []ModeOption
	State      lookup.State
	Results    []dictionary.Entry
	Message    string
	DebounceMS int64
	TimeoutMS  int64
}

// Handler renders the pages and serves their static assets.
type Handler struct {
	searcher search.Searcher
	cfg      config.WebConfig
	landing  *template.Template
	search   *template.Template
	static   http.Handler
}

// NewHandler parses the embedded templates.
func NewHandler(searcher search.Searcher, cfg config.WebConfig) (*Handler, error) {
	landing, err := parsePage("landing.html")
	if err != nil {
		return nil, err
	}
	searchPage, err := parsePage("search.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("fs.Sub(static) > %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = lookup.DefaultDebounce
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = lookup.DefaultTimeout
	}

	return &Handler{
		searcher: searcher,
		cfg:      cfg,
		landing:  landing,
		search:   searchPage,
		static:   cacheControl(http.StripPrefix("/static/", http.FileServer(http.FS(static)))),
	}, nil
}

func parsePage(name string) (*template.Template, error) {
	tmpl, err := template.New("layout.html").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS(%s) > %w", name, err)
	}
	return tmpl, nil
}

var templateFuncs = template.FuncMap{
	"join": func(items []string, sep string) string {
		return strings.Join(items, sep)
	},
	"stateName": func(s lookup.State) string {
		return s.String()
	},
}

// Routes returns the page router: /, /search and /static/*.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.handleLanding)
	r.Get("/search", h.handleSearch)
	r.Handle("/static/*", h.static)
	return r
}

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.landing, nil)
}

// handleSearch renders results on the server so the page works without JavaScript.
// The embedded script takes over for as-you-type lookups.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page := SearchPage{
		Query:      strings.TrimSpace(params.Get("q")),
		Mode:       search.ModeAny,
		State:      lookup.StateIdle,
		DebounceMS: h.cfg.Debounce.Milliseconds(),
		TimeoutMS:  h.cfg.RequestTimeout.Milliseconds(),
	}
	status := http.StatusOK

	mode, err := search.ParseMode(params.Get("mode"))
	if err != nil && page.Query == "" {
		// A blank query never reaches the searcher, as on /api/search.
		mode, err = search.ModeAny, nil
	}
	if err != nil {
		page.State = lookup.StateError
		page.Message = lookup.ErrorMessage
		page.Modes = modeOptions(page.Mode)
		h.render(w, http.StatusBadRequest, h.search, page)
		return
	}
	page.Mode = mode
	page.Modes = modeOptions(mode)

	if page.Query != "" {
		entries, err := h.searcher.Search(r.Context(), search.Query{Text: page.Query, Mode: mode})
		switch {
		case err != nil:
			slog.Default().Error("search page lookup failed",
				"query", page.Query,
				"mode", mode,
				"error", err)
			page.State = lookup.StateError
			page.Message = lookup.ErrorMessage
			if !errors.Is(err, search.ErrInvalidMode) {
				status = http.StatusInternalServerError
			}
		case len(entries) == 0:
			page.State = lookup.StateEmpty
		default:
			page.State = lookup.StateResults
			page.Results = entries
		}
	}
	h.render(w, status, h.search, page)
}

func modeOptions(selected search.Mode) []ModeOption {
	options := make([]ModeOption, 0, len(search.Modes))
	for _, mode := range search.Modes {
		options = append(options, ModeOption{
			Value:   mode,
			Label:   mode.Label(),
			Checked: mode == selected,
		})
	}
	return options
}

func (h *Handler) render(w http.ResponseWriter, status int, tmpl *template.Template, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Default().Error("failed to render page",
			"template", tmpl.Name(),
			"error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// staticMaxAge is sent for embedded assets, which only change with a new binary.
const staticMaxAge = time.Hour

func cacheControl(next http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(staticMaxAge.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}
