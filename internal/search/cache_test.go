package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pacha/internal/dictionary"
)

func TestResultCache(t *testing.T) {
	cache, err := newResultCache(2, time.Minute)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	maram := []dictionary.Entry{{Headword: "maram"}}
	cache.set(cacheKey{mode: ModeAny, folded: "mar"}, maram)

	got, ok := cache.get(cacheKey{mode: ModeAny, folded: "mar"})
	assert.True(t, ok)
	assert.Equal(t, maram, got)

	_, ok = cache.get(cacheKey{mode: ModeEnglish, folded: "mar"})
	assert.False(t, ok, "mode is part of the key")

	now = now.Add(2 * time.Minute)
	_, ok = cache.get(cacheKey{mode: ModeAny, folded: "mar"})
	assert.False(t, ok, "expired entries are dropped")
	assert.Equal(t, 0, cache.lru.Len())
}

func TestResultCache_CallersDoNotShareResults(t *testing.T) {
	cache, err := newResultCache(2, time.Minute)
	require.NoError(t, err)

	key := cacheKey{mode: ModeAny, folded: "mar"}
	stored := []dictionary.Entry{{Headword: "maram", PartsOfSpeech: dictionary.PartsOfSpeech{"noun"}, Senses: []string{"tree"}}}
	cache.set(key, stored)
	stored[0].Senses[0] = "changed by the producer"

	first, ok := cache.get(key)
	require.True(t, ok)
	first[0].Headword = "changed"
	first[0].Senses[0] = "changed"
	first[0].PartsOfSpeech[0] = "changed"

	second, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, []dictionary.Entry{
		{Headword: "maram", PartsOfSpeech: dictionary.PartsOfSpeech{"noun"}, Senses: []string{"tree"}},
	}, second)
}

func TestResultCache_Eviction(t *testing.T) {
	cache, err := newResultCache(1, time.Minute)
	require.NoError(t, err)

	cache.set(cacheKey{mode: ModeAny, folded: "a"}, nil)
	cache.set(cacheKey{mode: ModeAny, folded: "b"}, nil)

	_, ok := cache.get(cacheKey{mode: ModeAny, folded: "a"})
	assert.False(t, ok)
	_, ok = cache.get(cacheKey{mode: ModeAny, folded: "b"})
	assert.True(t, ok)
}

func TestNewResultCache_InvalidSize(t *testing.T) {
	_, err := newResultCache(0, time.Minute)
	assert.Error(t, err)
}
