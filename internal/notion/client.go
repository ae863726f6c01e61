// Implements the Notion API client with rate limiting.

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

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is the pinned Notion API version.
	APIVersion = "2022-06-28"
	// RequestsPerSecond is the documented average rate limit.
	RequestsPerSecond = 3
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// maxPageSize is the largest page_size the API accepts.
	maxPageSize = 100
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL           string
	APIVersion        string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client is a rate-limited Notion API client.
type Client struct {
	token      string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Notion API client.
func NewClient(token string, opts Options) *Client {
	c := &Client{
		token:      token,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiVersion: opts.APIVersion,
		httpClient: opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL
	}
	if c.apiVersion == "" {
		c.apiVersion = APIVersion
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = RequestsPerSecond
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return c
}

// do performs an HTTP request with rate limiting.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return nil, apiErr
	}

	return respBody, nil
}

// QueryOptions defines options for querying a database.
type QueryOptions struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// Sort defines a sort order for database queries.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // "created_time" or "last_edited_time"
	Direction string `json:"direction"`           // "ascending" or "descending"
}

// QueryDatabase queries a database for one page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, opts *QueryOptions) (*QueryResponse, error) {
	if opts == nil {
		opts = &QueryOptions{}
	}
	if opts.PageSize == 0 {
		opts.PageSize = maxPageSize
	}

	data, err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
	}

	var resp QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return &resp, nil
}

// QueryDatabaseAll queries all pages in a database, following next_cursor.
func (c *Client) QueryDatabaseAll(ctx context.Context, databaseID string, opts *QueryOptions) ([]Page, error) {
	var pages []Page
	var cursor string

	for {
		reqOpts := &QueryOptions{
			PageSize: maxPageSize,
		}
		if opts != nil {
			reqOpts.Filter = opts.Filter
			reqOpts.Sorts = opts.Sorts
		}
		reqOpts.StartCursor = cursor

		resp, err := c.QueryDatabase(ctx, databaseID, reqOpts)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return pages, nil
}

// GetPage retrieves a page by ID.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	data, err := c.do(ctx, http.MethodGet, "/pages/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve page %s: %w", id, err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

type createPageRequest struct {
	Parent     Parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

// CreatePage creates a page in a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error) {
	req := &createPageRequest{
		Parent:     Parent{Type: "database_id", DatabaseID: databaseID},
		Properties: props,
	}
	data, err := c.do(ctx, http.MethodPost, "/pages", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create page in database %s: %w", databaseID, err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

type updatePageRequest struct {
	Properties Properties `json:"properties"`
}

// UpdatePage updates properties of a page. Properties not named are left as is.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error) {
	data, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, &updatePageRequest{Properties: props})
	if err != nil {
		return nil, fmt.Errorf("failed to update page %s: %w", pageID, err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}
