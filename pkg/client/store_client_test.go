package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test IsRetryableHTTPStatus

func TestIsRetryableHTTPStatus_400_BadRequest(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(400))
}

func TestIsRetryableHTTPStatus_401_Unauthorized(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(401))
}

func TestIsRetryableHTTPStatus_403_Forbidden(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(403))
}

func TestIsRetryableHTTPStatus_404_NotFound(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(404))
}

func TestIsRetryableHTTPStatus_422_UnprocessableEntity(t *testing.T) {
	assert.False(t, IsRetryableHTTPStatus(422))
}

func TestIsRetryableHTTPStatus_429_TooManyRequests(t *testing.T) {
	assert.True(t, IsRetryableHTTPStatus(429))
}

func TestIsRetryableHTTPStatus_503_ServiceUnavailable(t *testing.T) {
	assert.True(t, IsRetryableHTTPStatus(503))
}

func TestIsRetryableHTTPStatus_405_Unknown4xx(t *testing.T) {
	// Unknown 4xx codes should be non-retryable
	assert.False(t, IsRetryableHTTPStatus(405))
}

func TestIsRetryableHTTPStatus_501_Unknown5xx(t *testing.T) {
	// Unknown 5xx codes should be retryable
	assert.True(t, IsRetryableHTTPStatus(501))
}

// Test StoreAPIError

func TestStoreAPIError_Error(t *testing.T) {
	err := &StoreAPIError{StatusCode: 422, Type: "INVALID_VALUE_FOR_COLUMN", Message: "bad select option"}
	assert.Equal(t, "store API error 422 (INVALID_VALUE_FOR_COLUMN): bad select option", err.Error())

	err = &StoreAPIError{StatusCode: 500, Message: "boom"}
	assert.Equal(t, "store API error 500: boom", err.Error())
}

func TestStoreAPIError_HTTPStatusCode(t *testing.T) {
	err := &StoreAPIError{StatusCode: 502, Message: "bad gateway"}
	assert.Equal(t, 502, err.HTTPStatusCode())
}

// Test IsRetryableError

func TestIsRetryableError_StoreAPIError_NonRetryable(t *testing.T) {
	err := &StoreAPIError{StatusCode: 401, Message: "invalid token"}
	assert.False(t, IsRetryableError(err))
}

func TestIsRetryableError_StoreAPIError_RateLimited(t *testing.T) {
	err := &StoreAPIError{StatusCode: 429, Message: "too many requests"}
	assert.True(t, IsRetryableError(err))
}

func TestIsRetryableError_WrappedStoreAPIError(t *testing.T) {
	err := fmt.Errorf("list problems: %w", &StoreAPIError{StatusCode: 503})
	assert.True(t, IsRetryableError(err))
}

func TestIsRetryableError_NetworkError(t *testing.T) {
	err := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	assert.True(t, IsRetryableError(err))
}

func TestIsRetryableError_ContextCanceled(t *testing.T) {
	assert.False(t, IsRetryableError(context.Canceled))
	assert.False(t, IsRetryableError(fmt.Errorf("wait: %w", context.DeadlineExceeded)))
}

func TestIsRetryableError_GenericError(t *testing.T) {
	assert.False(t, IsRetryableError(errors.New("failed to decode response")))
}

func TestIsRetryableError_NilError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
}

// Test Filter

func TestFilter_Formula(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name:   "plain name",
			filter: Filter{Field: "Name", Value: "Two Sum"},
			want:   "{Name} = 'Two Sum'",
		},
		{
			name:   "single quote is escaped",
			filter: Filter{Field: "Name", Value: "Pow(x, n)'s Cousin"},
			want:   `{Name} = 'Pow(x, n)\'s Cousin'`,
		},
		{
			name:   "backslash is escaped before quotes",
			filter: Filter{Field: "Name", Value: `a\'b`},
			want:   `{Name} = 'a\\\'b'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Formula())
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	rec := Record{ID: "rec1", Fields: map[string]any{"Name": "Two Sum", "Comfort": 3}}

	assert.True(t, Filter{Field: "Name", Value: "Two Sum"}.Matches(rec))
	assert.False(t, Filter{Field: "Name", Value: "two sum"}.Matches(rec))
	assert.True(t, Filter{Field: "Comfort", Value: "3"}.Matches(rec))
	assert.False(t, Filter{Field: "Missing", Value: "x"}.Matches(rec))
	assert.True(t, Filter{Field: "Missing", Value: ""}.Matches(rec))
}
