package ledger

import (
	"context"
	"sync"
)

// Mock records persist calls in memory for tests.
type Mock struct {
	mu sync.Mutex

	BreakdownErr error
	PerWeightErr error

	Breakdowns     []BreakdownRecord
	PerWeightCosts []PerWeightCall
}

// PerWeightCall captures a SavePerWeightCost invocation.
type PerWeightCall struct {
	JobReference  string
	PerWeightCost string
}

// SaveBreakdown appends the record and returns the configured error.
func (m *Mock) SaveBreakdown(_ context.Context, rec BreakdownRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BreakdownErr != nil {
		return m.BreakdownErr
	}
	m.Breakdowns = append(m.Breakdowns, rec)
	return nil
}

// SavePerWeightCost appends the call and returns the configured error.
func (m *Mock) SavePerWeightCost(_ context.Context, jobRef, perWeightCost string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PerWeightErr != nil {
		return m.PerWeightErr
	}
	m.PerWeightCosts = append(m.PerWeightCosts, PerWeightCall{JobReference: jobRef, PerWeightCost: perWeightCost})
	return nil
}

// LastBreakdown returns the most recent breakdown record, if any.
func (m *Mock) LastBreakdown() (BreakdownRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Breakdowns) == 0 {
		return BreakdownRecord{}, false
	}
	return m.Breakdowns[len(m.Breakdowns)-1], true
}
