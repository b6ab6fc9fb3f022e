// Package notion is a minimal client for the Notion REST API covering the
// calls orgsync makes: database query pagination, block children, page
// reads, and single-property updates.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the settings for a Client. It is constructed once and passed
// by reference; there is no ambient header state.
type Config struct {
	// BaseURL is the API endpoint, default https://api.notion.com.
	BaseURL string
	// Token is the bearer credential.
	Token string
	// Version is the Notion-Version header value.
	Version string
}

// DefaultVersion is the API version this client is written against.
const DefaultVersion = "2022-06-28"

// APIError is a non-success response from the remote API. Callers log the
// status and body and treat the call as non-recoverable for this run.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error (status %d): %s", e.StatusCode, e.Body)
}

// Client is a Notion HTTP/JSON client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new Notion client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.notion.com"
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do issues one request and decodes the JSON response into out.
// A non-2xx status yields an *APIError carrying the response body.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", c.cfg.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// QueryDatabase fetches one page of database entries. An empty startCursor
// requests the first page.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, startCursor string) (*QueryResult, error) {
	payload := map[string]any{}
	if startCursor != "" {
		payload["start_cursor"] = startCursor
	}

	var result QueryResult
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BlockChildren fetches the child content blocks of a page.
func (c *Client) BlockChildren(ctx context.Context, pageID string) (*BlockList, error) {
	var result BlockList
	path := fmt.Sprintf("/v1/blocks/%s/children", pageID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPage fetches a single page.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	path := fmt.Sprintf("/v1/pages/%s", pageID)
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateProperty issues a partial update setting one named rich-text
// property to a single run of literal text.
func (c *Client) UpdateProperty(ctx context.Context, pageID, propName, text string) error {
	payload := map[string]any{
		"properties": map[string]any{
			propName: map[string]any{
				"rich_text": []map[string]any{
					{"text": map[string]any{"content": text}},
				},
			},
		},
	}
	path := fmt.Sprintf("/v1/pages/%s", pageID)
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

// VerifyProperty re-fetches the page and reports whether the named
// property's concatenated plain text exactly equals expected. An update is
// only durable once this returns true.
func (c *Client) VerifyProperty(ctx context.Context, pageID, propName, expected string) (bool, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return false, err
	}
	if !page.HasText(propName) {
		return false, nil
	}
	return page.PropertyText(propName) == expected, nil
}
