// Package store provides an in-memory ledger.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tidebook/accounts-engine/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[int]ledger.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[int]ledger.Record)}
}

func (m *Memory) Insert(_ context.Context, r ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.SNo]; ok {
		return &ledger.DuplicateIDError{SNo: r.SNo}
	}
	m.records[r.SNo] = r
	return nil
}

func (m *Memory) Update(_ context.Context, r ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.SNo]; !ok {
		return &ledger.NotFoundError{SNo: r.SNo}
	}
	m.records[r.SNo] = r
	return nil
}

func (m *Memory) Delete(_ context.Context, sno int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[sno]; !ok {
		return &ledger.NotFoundError{SNo: sno}
	}
	delete(m.records, sno)
	return nil
}

func (m *Memory) Get(_ context.Context, sno int) (ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[sno]
	if !ok {
		return ledger.Record{}, &ledger.NotFoundError{SNo: sno}
	}
	return r, nil
}

func (m *Memory) ListAll(_ context.Context) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(), nil
}

func (m *Memory) ListByCustomer(_ context.Context, text string) ([]ledger.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(text)
	var out []ledger.Record
	for _, r := range m.sortedLocked() {
		if strings.Contains(strings.ToLower(r.CustomerName), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) DistinctCustomers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for _, r := range m.records {
		if !seen[r.CustomerName] {
			seen[r.CustomerName] = true
			names = append(names, r.CustomerName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) DistinctItems(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var items []string
	for _, r := range m.records {
		if r.Item != "" && !seen[r.Item] {
			seen[r.Item] = true
			items = append(items, r.Item)
		}
	}
	sort.Strings(items)
	return items, nil
}

func (m *Memory) LatestRateForItem(_ context.Context, item string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := -1
	var rate float64
	for sno, r := range m.records {
		if r.Item == item && sno > best {
			best = sno
			rate = r.Rate
		}
	}
	return rate, best >= 0, nil
}

func (m *Memory) NextSNo(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for sno := range m.records {
		if sno > max {
			max = sno
		}
	}
	return max + 1, nil
}

func (m *Memory) Exists(_ context.Context, sno int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[sno]
	return ok, nil
}

func (m *Memory) sortedLocked() []ledger.Record {
	out := make([]ledger.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SNo < out[j].SNo })
	return out
}
