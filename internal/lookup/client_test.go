package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/search"
)

func TestClient_Search(t *testing.T) {
	tests := []struct {
		name         string
		query        search.Query
		statusCode   int
		responseBody string
		wantQuery    string
		wantMode     string
		want         []dictionary.Entry
		wantErr      bool
	}{
		{
			name:         "entries are decoded",
			query:        search.Query{Text: " mar ", Mode: search.ModeMalayalam},
			statusCode:   http.StatusOK,
			responseBody: `[{"headword":"maram","pos":["noun"],"senses":["tree","wood"]}]`,
			wantQuery:    "mar",
			wantMode:     "ml",
			want: []dictionary.Entry{
				{Headword: "maram", PartsOfSpeech: dictionary.PartsOfSpeech{"noun"}, Senses: []string{"tree", "wood"}},
			},
		},
		{
			name:         "legacy scalar pos is accepted",
			query:        search.Query{Text: "vellam"},
			statusCode:   http.StatusOK,
			responseBody: `[{"headword":"vellam","pos":"noun","senses":["water"]}]`,
			wantQuery:    "vellam",
			want: []dictionary.Entry{
				{Headword: "vellam", PartsOfSpeech: dictionary.PartsOfSpeech{"noun"}, Senses: []string{"water"}},
			},
		},
		{
			name:         "empty array",
			query:        search.Query{Text: "zzz"},
			statusCode:   http.StatusOK,
			responseBody: `[]`,
			wantQuery:    "zzz",
			want:         []dictionary.Entry{},
		},
		{
			name:         "server error",
			query:        search.Query{Text: "mar"},
			statusCode:   http.StatusInternalServerError,
			responseBody: `{"error":"Internal server error"}`,
			wantQuery:    "mar",
			wantErr:      true,
		},
		{
			name:         "bad request",
			query:        search.Query{Text: "mar", Mode: "xx"},
			statusCode:   http.StatusBadRequest,
			responseBody: `{"error":"invalid search mode"}`,
			wantQuery:    "mar",
			wantMode:     "xx",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/search", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.Query().Get("query"))
				assert.Equal(t, tt.wantMode, r.URL.Query().Get("mode"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			client := NewClient(config.ClientConfig{BaseURL: server.URL, Timeout: time.Second})
			defer client.Close()

			got, err := client.Search(context.Background(), tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRequestFailed)
				assert.Contains(t, err.Error(), tt.responseBody)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Search_BlankSendsNoRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL)
	}))
	defer server.Close()

	client := NewClient(config.ClientConfig{BaseURL: server.URL})
	defer client.Close()

	got, err := client.Search(context.Background(), search.Query{Text: "  "})
	require.NoError(t, err)
	assert.Equal(t, []dictionary.Entry{}, got)
}

func TestClient_Search_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(config.ClientConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	defer client.Close()

	_, err := client.Search(context.Background(), search.Query{Text: "mar"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
