// Package search implements dictionary lookup over the entry store.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=../mocks/search/mock_searcher.go -package=mock_search

// ErrInternal is returned when the entry store fails. The cause is wrapped but
// callers must not expose it.
var ErrInternal = errors.New("internal error")

// Query is a single lookup request.
type Query struct {
	Text string
	Mode Mode
}

// Searcher looks up dictionary entries.
type Searcher interface {
	Search(ctx context.Context, query Query) ([]dictionary.Entry, error)
}

// Service performs case-insensitive literal substring searches with a result cap.
type Service struct {
	repo  dictionary.EntryRepository
	limit int
	cache *resultCache
}

// NewService creates a Service. A cache is set up only when cfg.CacheSize is positive.
func NewService(repo dictionary.EntryRepository, cfg config.SearchConfig) (*Service, error) {
	if cfg.ResultLimit <= 0 {
		return nil, fmt.Errorf("result limit must be positive, got %d", cfg.ResultLimit)
	}

	service := &Service{
		repo:  repo,
		limit: cfg.ResultLimit,
	}
	if cfg.CacheSize > 0 {
		cache, err := newResultCache(cfg.CacheSize, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("newResultCache() > %w", err)
		}
		service.cache = cache
	}
	return service, nil
}

// Search returns at most the configured number of entries containing query.Text,
// in store order. Blank text returns an empty list without querying the store.
func (s *Service) Search(ctx context.Context, query Query) ([]dictionary.Entry, error) {
	mode := query.Mode
	if mode == "" {
		mode = ModeAny
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	text := strings.TrimSpace(query.Text)
	if text == "" {
		metrics.RecordSearch(string(mode), "blank")
		return []dictionary.Entry{}, nil
	}

	key := cacheKey{mode: mode, folded: dictionary.Fold(text)}
	if s.cache != nil {
		entries, ok := s.cache.get(key)
		metrics.RecordCache(ok)
		if ok {
			metrics.RecordSearch(string(mode), outcome(entries))
			return entries, nil
		}
	}

	start := time.Now()
	entries, err := s.repo.Search(ctx, dictionary.SearchFilter{
		Pattern: dictionary.ContainsPattern(text),
		Fields:  mode.fields(),
		Limit:   s.limit,
	})
	metrics.ObserveStoreSearch(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordSearch(string(mode), "error")
		return nil, fmt.Errorf("%w: repo.Search() > %w", ErrInternal, err)
	}

	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	if entries == nil {
		entries = []dictionary.Entry{}
	}

	slog.Default().Debug("search",
		"query", text,
		"mode", mode,
		"results", len(entries))
	metrics.RecordSearch(string(mode), outcome(entries))

	if s.cache != nil {
		s.cache.set(key, entries)
	}
	return entries, nil
}

func outcome(entries []dictionary.Entry) string {
	if len(entries) == 0 {
		return "empty"
	}
	return "hit"
}
