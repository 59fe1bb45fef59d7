package client

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStoreClient is an in-process StoreClient for local development and tests.
// Unlike MockStoreClient (testify/mock), it needs no expectations: it keeps rows
// in memory, assigns record IDs, and counts calls per operation.
//
// Use this for local development when LEETRACK_BACKEND=memory.
type MemoryStoreClient struct {
	mu     sync.Mutex
	tables map[string][]Record
	calls  map[string]int
	logger *slog.Logger
}

// Operation names reported by Calls.
const (
	OpSelectAll      = "SelectAll"
	OpSelectFiltered = "SelectFiltered"
	OpInsert         = "Insert"
	OpUpdate         = "Update"
)

// NewMemoryStoreClient creates an empty in-memory store.
func NewMemoryStoreClient(logger *slog.Logger) *MemoryStoreClient {
	return &MemoryStoreClient{
		tables: make(map[string][]Record),
		calls:  make(map[string]int),
		logger: logger,
	}
}

// Seed appends a row without counting it as a call and returns its ID.
func (m *MemoryStoreClient) Seed(table string, fields map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.newRecord(fields)
	m.tables[table] = append(m.tables[table], rec)
	return rec.ID
}

// Calls returns how many times op has been invoked.
func (m *MemoryStoreClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MemoryStoreClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// SelectAll returns a copy of every row.
func (m *MemoryStoreClient) SelectAll(ctx context.Context, table string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[OpSelectAll]++
	m.logger.Debug("[MemoryStore] SelectAll", "table", table, "rows", len(m.tables[table]))

	rows := make([]Record, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		rows = append(rows, cloneRecord(r))
	}
	return rows, nil
}

// SelectFiltered returns a copy of every row matching filter.
func (m *MemoryStoreClient) SelectFiltered(ctx context.Context, table string, filter Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[OpSelectFiltered]++
	m.logger.Debug("[MemoryStore] SelectFiltered", "table", table, "formula", filter.Formula())

	var rows []Record
	for _, r := range m.tables[table] {
		if filter.Matches(r) {
			rows = append(rows, cloneRecord(r))
		}
	}
	return rows, nil
}

// Insert appends a row with a fresh ID.
func (m *MemoryStoreClient) Insert(ctx context.Context, table string, fields map[string]any) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[OpInsert]++
	rec := m.newRecord(fields)
	m.tables[table] = append(m.tables[table], rec)

	m.logger.Debug("[MemoryStore] Insert", "table", table, "id", rec.ID)
	return cloneRecord(rec), nil
}

// Update merges fields into an existing row. A nil value clears the field.
func (m *MemoryStoreClient) Update(ctx context.Context, table, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[OpUpdate]++
	rows := m.tables[table]
	i := slices.IndexFunc(rows, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return &StoreAPIError{StatusCode: 404, Type: "NOT_FOUND", Message: fmt.Sprintf("record %s not found in %s", id, table)}
	}

	for k, v := range fields {
		if v == nil {
			delete(rows[i].Fields, k)
			continue
		}
		rows[i].Fields[k] = v
	}

	m.logger.Debug("[MemoryStore] Update", "table", table, "id", id, "fields", len(fields))
	return nil
}

func (m *MemoryStoreClient) newRecord(fields map[string]any) Record {
	id := NewRecordID()
	copied := maps.Clone(fields)
	if copied == nil {
		copied = make(map[string]any)
	}
	return Record{ID: id, CreatedTime: time.Now().UTC(), Fields: copied}
}

// NewRecordID returns a store-style record ID: "rec" followed by 14 hex characters.
func NewRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

func cloneRecord(r Record) Record {
	r.Fields = maps.Clone(r.Fields)
	return r
}
