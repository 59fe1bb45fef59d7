package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultAirtableURL is the Airtable REST API root.
	DefaultAirtableURL = "https://api.airtable.com/v0"

	// airtablePageSize is the largest page Airtable returns per list request.
	airtablePageSize = 100

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// AirtableClient implements StoreClient over the Airtable REST API.
//
// Requests are throttled client-side (Airtable allows 5 requests per second per base).
// No request timeout is set; the http.Client's own settings govern latency.
type AirtableClient struct {
	baseURL    string
	baseID     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// AirtableOption configures an AirtableClient.
type AirtableOption func(*AirtableClient)

// WithBaseURL overrides the API root (used by tests and proxies).
func WithBaseURL(baseURL string) AirtableOption {
	return func(c *AirtableClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) AirtableOption {
	return func(c *AirtableClient) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the maximum number of requests per second.
// A non-positive value disables throttling.
func WithRateLimit(perSecond float64) AirtableOption {
	return func(c *AirtableClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewAirtableClient creates a client for one base.
//
// Parameters:
//   - apiKey: Personal access token
//   - baseID: Airtable base identifier (app...)
//   - logger: Structured logger for operational logging
//   - opts: Optional overrides
func NewAirtableClient(apiKey, baseID string, logger *slog.Logger, opts ...AirtableOption) *AirtableClient {
	c := &AirtableClient{
		baseURL:    DefaultAirtableURL,
		baseID:     baseID,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SelectAll returns every row of the table.
func (c *AirtableClient) SelectAll(ctx context.Context, table string) ([]Record, error) {
	return c.list(ctx, table, url.Values{})
}

// SelectFiltered returns the rows matching filter, evaluated server-side.
func (c *AirtableClient) SelectFiltered(ctx context.Context, table string, filter Filter) ([]Record, error) {
	params := url.Values{}
	params.Set("filterByFormula", filter.Formula())
	return c.list(ctx, table, params)
}

func (c *AirtableClient) list(ctx context.Context, table string, params url.Values) ([]Record, error) {
	var records []Record
	params.Set("pageSize", strconv.Itoa(airtablePageSize))

	for page := 1; ; page++ {
		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}

		records = append(records, resp.Records...)

		c.logger.Debug("Fetched page",
			"table", table,
			"page", page,
			"records", len(resp.Records),
		)

		if resp.Offset == "" {
			return records, nil
		}
		params.Set("offset", resp.Offset)
	}
}

// Insert creates a row. Typecast lets the store coerce select options and dates.
func (c *AirtableClient) Insert(ctx context.Context, table string, fields map[string]any) (Record, error) {
	var created Record
	body := writeRequest{Fields: fields, Typecast: true}
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), body, &created); err != nil {
		return Record{}, err
	}
	return created, nil
}

// Update patches the given fields of a row.
func (c *AirtableClient) Update(ctx context.Context, table, id string, fields map[string]any) error {
	body := writeRequest{Fields: fields, Typecast: true}
	return c.do(ctx, http.MethodPatch, c.tableURL(table)+"/"+url.PathEscape(id), body, nil)
}

func (c *AirtableClient) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *AirtableClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("Store request",
		"method", method,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError reads an Airtable error body. The "error" member is either an
// object {"type", "message"} or a bare string such as "NOT_FOUND".
func decodeAPIError(resp *http.Response) error {
	apiErr := &StoreAPIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}

	var detail errorDetail
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		apiErr.Type = detail.Type
		if detail.Message != "" {
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil {
		apiErr.Type = code
	}
	return apiErr
}
