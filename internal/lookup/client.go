// Package lookup talks to a running dictionary server and drives lookup sessions.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resty.dev/v3"

	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/search"
)

// ErrRequestFailed is returned when the server cannot be reached or answers with a non-2xx status.
var ErrRequestFailed = errors.New("search request failed")

// Client calls the search endpoint of a dictionary server.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Client for the server at cfg.BaseURL.
func NewClient(cfg config.ClientConfig) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		httpClient: client,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// Search queries /api/search. Blank text returns an empty list without a request.
func (client *Client) Search(ctx context.Context, query search.Query) ([]dictionary.Entry, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return []dictionary.Entry{}, nil
	}

	request := client.httpClient.R().
		SetContext(ctx).
		SetQueryParam("query", text).
		SetResult(&[]dictionary.Entry{})
	if query.Mode != "" {
		request.SetQueryParam("mode", string(query.Mode))
	}

	response, err := request.Get("/api/search")
	if err != nil {
		return nil, fmt.Errorf("%w: httpClient.Get(/api/search) > %w", ErrRequestFailed, err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("%w: response error %d: %s", ErrRequestFailed, response.StatusCode(), response.String())
	}

	result, ok := response.Result().(*[]dictionary.Entry)
	if !ok || result == nil || *result == nil {
		return []dictionary.Entry{}, nil
	}
	return *result, nil
}
