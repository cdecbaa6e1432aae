package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/net/html"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/lookup"
	mock_search "github.com/at-ishikawa/pacha/internal/mocks/search"
	"github.com/at-ishikawa/pacha/internal/search"
)

func newTestHandler(t *testing.T, searcher search.Searcher) http.Handler {
	t.Helper()
	handler, err := NewHandler(searcher, config.WebConfig{
		Debounce:       250 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return handler.Routes()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLandingPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestHandler(t, mock_search.NewMockSearcher(ctrl))

	rec := get(t, handler, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Project പച്ച")
	assert.Contains(t, body, `id="features"`)
	assert.Contains(t, body, `id="about"`)
	assert.Contains(t, body, `data-scroll-target="features"`)
	assert.Contains(t, body, `href="/search"`)
	assert.Contains(t, body, `/static/landing.js`)
}

func TestSearchPage(t *testing.T) {
	maram := dictionary.Entry{
		Headword:      "maram",
		PartsOfSpeech: dictionary.PartsOfSpeech{"noun", "adjective"},
		Senses:        []string{"tree", "wood"},
	}

	tests := []struct {
		name         string
		target       string
		setupMock    func(m *mock_search.MockSearcher)
		wantStatus   int
		wantState    string
		wantContains []string
		wantMissing  []string
	}{
		{
			name:       "no query renders the idle page",
			target:     "/search",
			setupMock:  func(m *mock_search.MockSearcher) {},
			wantStatus: http.StatusOK,
			wantState:  "idle",
			wantContains: []string{
				`data-debounce="250"`,
				`data-timeout="5000"`,
				`value="any" checked`,
				`/static/search.js`,
			},
			wantMissing: []string{"No results found"},
		},
		{
			name:       "blank query does not search",
			target:     "/search?q=%20%20",
			setupMock:  func(m *mock_search.MockSearcher) {},
			wantStatus: http.StatusOK,
			wantState:  "idle",
		},
		{
			name:         "blank query ignores an invalid mode",
			target:       "/search?q=&mode=xx",
			setupMock:    func(m *mock_search.MockSearcher) {},
			wantStatus:   http.StatusOK,
			wantState:    "idle",
			wantContains: []string{`value="any" checked`},
			wantMissing:  []string{lookup.ErrorMessage},
		},
		{
			name:   "results are rendered server side",
			target: "/search?q=tree&mode=en",
			setupMock: func(m *mock_search.MockSearcher) {
				m.EXPECT().
					Search(gomock.Any(), search.Query{Text: "tree", Mode: search.ModeEnglish}).
					Return([]dictionary.Entry{maram}, nil)
			},
			wantStatus: http.StatusOK,
			wantState:  "results",
			wantContains: []string{
				`<h3 class="search__headword">maram</h3>`,
				`noun, adjective`,
				`<li>tree</li>`,
				`<li>wood</li>`,
				`value="en" checked`,
				`value="tree"`,
			},
		},
		{
			name:   "no matches",
			target: "/search?q=zzz",
			setupMock: func(m *mock_search.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]dictionary.Entry{}, nil)
			},
			wantStatus:   http.StatusOK,
			wantState:    "empty",
			wantContains: []string{"No results found"},
		},
		{
			name:   "failure shows the fixed message only",
			target: "/search?q=mar",
			setupMock: func(m *mock_search.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))
			},
			wantStatus:   http.StatusInternalServerError,
			wantState:    "error",
			wantContains: []string{lookup.ErrorMessage},
			wantMissing:  []string{"connection refused"},
		},
		{
			name:         "invalid mode",
			target:       "/search?q=mar&mode=xx",
			setupMock:    func(m *mock_search.MockSearcher) {},
			wantStatus:   http.StatusBadRequest,
			wantState:    "error",
			wantContains: []string{lookup.ErrorMessage},
		},
		{
			name:   "markup in entries is escaped",
			target: "/search?q=%3Cb%3E",
			setupMock: func(m *mock_search.MockSearcher) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]dictionary.Entry{
					{Headword: "<b>bold</b>", Senses: []string{"<script>x</script>"}},
				}, nil)
			},
			wantStatus:   http.StatusOK,
			wantState:    "results",
			wantContains: []string{"&lt;b&gt;bold&lt;/b&gt;", "&lt;script&gt;x&lt;/script&gt;"},
			wantMissing:  []string{"<script>x</script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			searcher := mock_search.NewMockSearcher(ctrl)
			tt.setupMock(searcher)

			rec := get(t, newTestHandler(t, searcher), tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := rec.Body.String()
			assert.Contains(t, body, `data-state="`+tt.wantState+`"`)
			for _, want := range tt.wantContains {
				assert.Contains(t, body, want)
			}
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, body, missing)
			}
		})
	}
}

func TestStaticAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := newTestHandler(t, mock_search.NewMockSearcher(ctrl))

	tests := []struct {
		path         string
		wantContains string
	}{
		{path: "/static/search.js", wantContains: "Something went wrong. Please try again."},
		{path: "/static/landing.js", wantContains: "NAVBAR_OFFSET"},
		{path: "/static/style.css", wantContains: ".landing__nav.is-scrolled"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, handler, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
		})
	}

	assert.Equal(t, http.StatusNotFound, get(t, handler, "/static/missing.js").Code)
}

func TestSearchScriptMatchesSessionMessage(t *testing.T) {
	content, err := staticFS.ReadFile("static/search.js")
	require.NoError(t, err)
	assert.Contains(t, string(content), `"`+lookup.ErrorMessage+`"`)
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result.WriteString(nodeText(c))
	}
	return result.String()
}

// textsByClass returns the trimmed text of every element carrying class, in document order.
func textsByClass(n *html.Node, class string) []string {
	var texts []string
	if n.Type == html.ElementNode && hasClass(n, class) {
		texts = append(texts, strings.TrimSpace(nodeText(n)))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		texts = append(texts, textsByClass(c, class)...)
	}
	return texts
}

func TestSearchPage_ResultsKeepStoreOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mock_search.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]dictionary.Entry{
		{Headword: "maram", PartsOfSpeech: dictionary.PartsOfSpeech{"noun"}, Senses: []string{"tree", "wood"}},
		{Headword: "marakkuka", PartsOfSpeech: dictionary.PartsOfSpeech{"verb"}, Senses: []string{"to forget"}},
		{Headword: "amaram", Senses: []string{"rudder"}},
	}, nil)

	rec := get(t, newTestHandler(t, searcher), "/search?q=mar")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := html.Parse(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"maram", "marakkuka", "amaram"}, textsByClass(doc, "search__headword"))
	assert.Equal(t, []string{"noun", "verb"}, textsByClass(doc, "search__pos"))
	assert.Equal(t, []string{""}, textsByClass(doc, "search__status"))
}
