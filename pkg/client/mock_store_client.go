package client

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStoreClient is a mock implementation of StoreClient for testing.
// It uses testify/mock to allow test assertions on method calls.
type MockStoreClient struct {
	mock.Mock
}

// SelectAll mocks listing a whole table.
func (m *MockStoreClient) SelectAll(ctx context.Context, table string) ([]Record, error) {
	args := m.Called(ctx, table)
	records, _ := args.Get(0).([]Record)
	return records, args.Error(1)
}

// SelectFiltered mocks a filtered list.
func (m *MockStoreClient) SelectFiltered(ctx context.Context, table string, filter Filter) ([]Record, error) {
	args := m.Called(ctx, table, filter)
	records, _ := args.Get(0).([]Record)
	return records, args.Error(1)
}

// Insert mocks row creation.
func (m *MockStoreClient) Insert(ctx context.Context, table string, fields map[string]any) (Record, error) {
	args := m.Called(ctx, table, fields)
	record, _ := args.Get(0).(Record)
	return record, args.Error(1)
}

// Update mocks a partial row update.
func (m *MockStoreClient) Update(ctx context.Context, table, id string, fields map[string]any) error {
	args := m.Called(ctx, table, id, fields)
	return args.Error(0)
}

// NewMockStoreClient creates a new mock store client.
func NewMockStoreClient() *MockStoreClient {
	return &MockStoreClient{}
}
