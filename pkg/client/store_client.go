package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Record is one row of a remote table. Fields are addressed by name, never by position.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// Filter is an exact-match condition on a named field.
type Filter struct {
	Field string
	Value string
}

// Formula renders the filter as a store formula, e.g. {Name} = 'Two Sum'.
// Backslashes and single quotes in the value are escaped so a name such as
// "Pow(x, n)'s Cousin" cannot terminate the string literal.
func (f Filter) Formula() string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(f.Value)
	return fmt.Sprintf("{%s} = '%s'", f.Field, escaped)
}

// Matches reports whether a record satisfies the filter, comparing the field's
// string form exactly (case-sensitive).
func (f Filter) Matches(r Record) bool {
	v, ok := r.Fields[f.Field]
	if !ok || v == nil {
		return f.Value == ""
	}
	return fmt.Sprint(v) == f.Value
}

// StoreClient issues requests to the external tabular store.
// It has no caching of its own; every call is a network round trip.
type StoreClient interface {
	// SelectAll returns every row of the table, following pagination to the end.
	SelectAll(ctx context.Context, table string) ([]Record, error)

	// SelectFiltered returns the rows of the table that match the filter.
	SelectFiltered(ctx context.Context, table string, filter Filter) ([]Record, error)

	// Insert creates a row and returns it with its store-assigned ID.
	Insert(ctx context.Context, table string, fields map[string]any) (Record, error)

	// Update overwrites the given fields of a row; omitted fields are untouched.
	Update(ctx context.Context, table, id string, fields map[string]any) error
}

// StoreAPIError is an error response from the store's HTTP API.
// It includes the HTTP status code for error classification.
type StoreAPIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *StoreAPIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("store API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("store API error %d: %s", e.StatusCode, e.Message)
}

// HTTPStatusCode returns the HTTP status code of the store response.
func (e *StoreAPIError) HTTPStatusCode() int {
	return e.StatusCode
}

// HTTPStatusCodeError is an interface for errors that include HTTP status codes.
type HTTPStatusCodeError interface {
	error
	HTTPStatusCode() int
}

// IsRetryableHTTPStatus determines if an HTTP status code is worth a manual retry.
//
// Non-retryable status codes (4xx client errors):
//   - 400 Bad Request - malformed formula or field value
//   - 401 Unauthorized - invalid access key
//   - 403 Forbidden - key lacks access to the base
//   - 404 Not Found - base, table or record doesn't exist
//   - 409 Conflict
//   - 422 Unprocessable Entity - unknown field name or invalid select option
//
// Retryable status codes:
//   - 408 Request Timeout
//   - 429 Too Many Requests (store rate limit)
//   - 500, 502, 503, 504
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 400, 401, 403, 404, 409, 422:
		return false
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		// For unknown codes, treat 4xx as non-retryable, 5xx as retryable
		if statusCode >= 400 && statusCode < 500 {
			return false
		}
		return true
	}
}

// IsRetryableError classifies an error returned by a StoreClient.
// Nothing in this module retries automatically; callers use this to decide
// whether to offer the user a retry.
//
// Classification strategy:
// 1. Context cancellation and deadline are not retryable
// 2. If error implements HTTPStatusCodeError, check status code
// 3. Network errors are retryable
// 4. Anything else is not
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr HTTPStatusCodeError
	if errors.As(err, &httpErr) {
		return IsRetryableHTTPStatus(httpErr.HTTPStatusCode())
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
