package imagestore

import (
	"context"
	"sort"
	"sync"
)

type memEntry struct {
	Entry
	seq uint64
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	bytes   int64
	seq     uint64
	limits  Limits
	opts    options
	closed  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory(limits Limits, opts ...Option) *Memory {
	return &Memory{
		entries: make(map[string]*memEntry),
		limits:  limits.withDefaults(),
		opts:    applyOptions(opts),
	}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, id string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrStoreClosed
	}
	e, ok := m.entries[id]
	if !ok {
		return "", false, nil
	}
	return e.Data, true, nil
}

// Save implements Store. Eviction and insert happen under one lock.
func (m *Memory) Save(ctx context.Context, id, data string) ([]string, error) {
	if err := validateSave(id, data); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	if _, ok := m.entries[id]; ok {
		return nil, ErrDuplicateID
	}

	size := int64(len(data))
	var evicted []string
	if needsEviction(len(m.entries), m.bytes, size, m.limits) {
		cands := make([]candidate, 0, len(m.entries))
		for _, e := range m.entries {
			cands = append(cands, candidate{id: e.ID, at: e.CreatedAt.UnixNano(), seq: e.seq})
		}
		evicted = selectVictims(cands, evictionCount(len(cands)), id)
		for _, vid := range evicted {
			m.bytes -= m.entries[vid].Size
			delete(m.entries, vid)
		}
	}

	m.seq++
	m.entries[id] = &memEntry{
		Entry: Entry{ID: id, Data: data, Size: size, CreatedAt: m.opts.now()},
		seq:   m.seq,
	}
	m.bytes += size
	return evicted, nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	sorted := make([]*memEntry, 0, len(m.entries))
	for _, e := range m.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].seq < sorted[j].seq
	})

	out := make([]Entry, len(sorted))
	for i, e := range sorted {
		out[i] = e.Entry
	}
	return out, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	m.bytes -= e.Size
	delete(m.entries, id)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}

// Compile-time interface check.
var _ Store = (*Memory)(nil)
