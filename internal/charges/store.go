package charges

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborline/backend-brokerage/internal/common"
)

// Store holds the editable charge set for exactly one job reference, plus the
// last committed calculation and persist outcome. All access is serialised so
// concurrent workstation requests see a consistent set.
type Store struct {
	mu       sync.Mutex
	set      ChargeSet
	result   *Result
	warnings []string

	// Monotonic calculation sequence. Commit and persist outcomes carry the
	// sequence they were computed under so stale results of overlapping
	// calculations are discarded instead of clobbering newer state.
	calcSeq    uint64
	resultSeq  uint64
	persistSeq uint64
}

// NewStore creates a store with a defaulted charge set for the job reference.
func NewStore(jobRef, period string) *Store {
	return &Store{set: NewChargeSet(jobRef, period)}
}

// JobReference returns the job this store belongs to.
func (s *Store) JobReference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.JobReference
}

// SetField replaces the raw value of a standard charge, duty, or weight.
// Values are stored exactly as given; numeric validity is resolved at
// aggregation time, mirroring tolerant form input.
func (s *Store) SetField(key, raw string) error {
	if !IsEditableKey(key) {
		return common.ValidationError("unknown charge field")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case FieldDuty:
		s.set.Duty = raw
	case FieldWeight:
		s.set.Weight = raw
	default:
		s.set.Standard[key] = raw
	}
	return nil
}

// AddCustomField validates and appends a user-defined charge, returning the
// stored entry with its assigned id.
func (s *Store) AddCustomField(name, value string) (CustomField, error) {
	if err := validateCustomField(name, value); err != nil {
		return CustomField{}, err
	}
	field := CustomField{ID: uuid.NewString(), Name: name, Value: value}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.CustomFields = append(s.set.CustomFields, field)
	return field, nil
}

// UpdateCustomField replaces the entry matching id in place. An unknown id is
// a no-op, not an error; the entry may have been removed by a parallel edit.
func (s *Store) UpdateCustomField(id, name, value string) error {
	if err := validateCustomField(name, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.set.CustomFields {
		if s.set.CustomFields[i].ID == id {
			s.set.CustomFields[i].Name = name
			s.set.CustomFields[i].Value = value
			return nil
		}
	}
	return nil
}

// RemoveCustomField deletes the entry with matching id, if present.
func (s *Store) RemoveCustomField(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.set.CustomFields {
		if s.set.CustomFields[i].ID == id {
			s.set.CustomFields = append(s.set.CustomFields[:i], s.set.CustomFields[i+1:]...)
			return
		}
	}
}

func validateCustomField(name, value string) error {
	if name == "" {
		return common.ValidationError("name required")
	}
	if value == "" {
		return common.ValidationError("value required")
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return common.ValidationError("value required")
	}
	return nil
}

// External is a partial charge set supplied by an upstream job record.
// Nil fields are absent and leave the current value untouched; duty and
// weight are server-authoritative and always overwrite when present.
type External struct {
	Duty         *string
	Weight       *string
	Standard     map[string]string
	CustomFields []CustomField
}

// LoadFromExternal seeds the set from an external record. Custom fields are
// replaced wholesale when the record carries any; ids are assigned fresh.
func (s *Store) LoadFromExternal(ext External) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ext.Duty != nil {
		s.set.Duty = *ext.Duty
	}
	if ext.Weight != nil {
		s.set.Weight = *ext.Weight
	}
	for key, value := range ext.Standard {
		if IsStandardKey(key) {
			s.set.Standard[key] = value
		}
	}
	if ext.CustomFields != nil {
		replacement := make([]CustomField, 0, len(ext.CustomFields))
		for _, cf := range ext.CustomFields {
			if cf.ID == "" {
				cf.ID = uuid.NewString()
			}
			replacement = append(replacement, cf)
		}
		s.set.CustomFields = replacement
	}
}

// Snapshot returns a deep copy of the current charge set.
func (s *Store) Snapshot() ChargeSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Result returns the last committed calculation, if one exists.
func (s *Store) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Warnings returns the persist warnings of the last recorded outcome.
func (s *Store) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// BeginCalculation issues the next calculation sequence together with a
// snapshot of the set to aggregate.
func (s *Store) BeginCalculation() (uint64, ChargeSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calcSeq++
	return s.calcSeq, s.set.Clone()
}

// CommitResult stores the result computed under seq. It reports false when a
// newer calculation has already committed, in which case the result is
// discarded.
func (s *Store) CommitResult(seq uint64, res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.resultSeq {
		return false
	}
	s.resultSeq = seq
	s.result = &res
	return true
}

// RecordPersistOutcome stores the persist warnings produced under seq for
// jobRef. It reports false, leaving state untouched, when the store has since
// been loaded for a different job or a newer outcome was already recorded.
func (s *Store) RecordPersistOutcome(seq uint64, jobRef string, warnings []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if jobRef != s.set.JobReference {
		return false
	}
	if seq <= s.persistSeq {
		return false
	}
	s.persistSeq = seq
	s.warnings = warnings
	return true
}
