package store

import (
	"context"
	"sort"
	"sync"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
)

// Memory is an in-process Upserter. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]map[string]map[string]string // schema -> key -> payload
	batches []Batch
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]map[string]map[string]string)}
}

// Upsert stores the payload of every row under its key, replacing rows
// already stored under the same key.
func (m *Memory) Upsert(ctx context.Context, schema importer.ColumnSchema, rows []importer.ParsedRow) (importer.UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return importer.UpsertResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.records[schema.Key]
	if !ok {
		table = make(map[string]map[string]string)
		m.records[schema.Key] = table
	}

	res := importer.UpsertResult{Total: len(rows)}
	for _, row := range rows {
		key := rowKey(row)
		if _, exists := table[key]; exists {
			res.Updated++
		} else {
			res.Inserted++
		}
		table[key] = row.Payload(schema)
	}

	m.batches = append(m.batches, batchFromContext(ctx, schema.Key, res))
	return res, nil
}

// Get returns a copy of the payload stored under key.
func (m *Memory) Get(schema, key string) (map[string]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.records[schema][key]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out, true
}

// Keys returns the stored keys of schema in sorted order.
func (m *Memory) Keys(schema string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.records[schema]))
	for k := range m.records[schema] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecentBatches returns up to limit imports, newest first. A limit of zero
// or less returns all of them.
func (m *Memory) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.batches)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Batch, 0, n)
	for i := len(m.batches) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.batches[i])
	}
	return out, nil
}
