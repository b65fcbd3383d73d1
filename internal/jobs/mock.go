package jobs

import "context"

// Mock returns canned records and is useful for testing and development.
type Mock struct {
	Records map[string]Record
	Err     error
	Calls   int
}

// GetJob returns the configured record for jobRef or the configured error.
func (m *Mock) GetJob(_ context.Context, jobRef, period string) (Record, error) {
	m.Calls++
	if m.Err != nil {
		return Record{}, m.Err
	}
	if rec, ok := m.Records[jobRef]; ok {
		return rec, nil
	}
	return Record{}, ErrJobNotFound(jobRef)
}
