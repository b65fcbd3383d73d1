// Package charges implements the landed-cost workspace: the editable charge
// set for the currently selected job, the aggregation that derives total and
// per-weight cost from it, and the reconciliation against the upstream
// system-of-record.
package charges

// Standard charge keys plus the two server-authoritative fields.
const (
	FieldShipping        = "shipping"
	FieldCustomClearance = "customClearance"
	FieldDetention       = "detention"
	FieldCFS             = "cfs"
	FieldTransport       = "transport"
	FieldLabour          = "labour"
	FieldDuty            = "duty"
	FieldWeight          = "weight"
)

// StandardKeys lists the fixed charge fields in display order.
var StandardKeys = []string{
	FieldShipping,
	FieldCustomClearance,
	FieldDetention,
	FieldCFS,
	FieldTransport,
	FieldLabour,
}

// IsStandardKey reports whether key names one of the fixed charge fields.
func IsStandardKey(key string) bool {
	for _, k := range StandardKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsEditableKey reports whether key is accepted by SetField.
func IsEditableKey(key string) bool {
	return key == FieldDuty || key == FieldWeight || IsStandardKey(key)
}

// CustomField is a user-defined charge line. The id is the sole key for
// edit and delete and stays unique for the lifetime of the charge set.
type CustomField struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ChargeSet aggregates the charges for one job reference. All numeric fields
// hold raw strings exactly as entered; parsing happens at aggregation time so
// transiently partial input never causes an error.
type ChargeSet struct {
	JobReference string            `json:"jobReference"`
	Period       string            `json:"period"`
	Duty         string            `json:"duty"`
	Standard     map[string]string `json:"standardCharges"`
	CustomFields []CustomField     `json:"customFields"`
	Weight       string            `json:"weight"`
}

// NewChargeSet returns a defaulted set for the given job reference.
func NewChargeSet(jobRef, period string) ChargeSet {
	standard := make(map[string]string, len(StandardKeys))
	for _, key := range StandardKeys {
		standard[key] = "0.00"
	}
	return ChargeSet{
		JobReference: jobRef,
		Period:       period,
		Duty:         "0.00",
		Standard:     standard,
		Weight:       "0",
	}
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s ChargeSet) Clone() ChargeSet {
	out := s
	out.Standard = make(map[string]string, len(s.Standard))
	for k, v := range s.Standard {
		out.Standard[k] = v
	}
	out.CustomFields = make([]CustomField, len(s.CustomFields))
	copy(out.CustomFields, s.CustomFields)
	return out
}

// Result is the derived calculation output, formatted to two decimals.
type Result struct {
	TotalCost     string `json:"totalCost"`
	PerWeightCost string `json:"perWeightCost"`
}
