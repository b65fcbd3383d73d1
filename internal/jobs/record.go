package jobs

import (
	"encoding/json"
	"strings"
)

// FlexNumber holds a numeric value that upstream systems serialise either as
// a JSON string or a JSON number. The raw textual form is preserved so the
// tolerant parsing rules of the charge aggregator apply uniformly.
type FlexNumber string

// UnmarshalJSON accepts "123.45", 123.45, and null.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexNumber(n.String())
	return nil
}

// MarshalJSON always emits the string form.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String returns the raw textual value.
func (f FlexNumber) String() string { return string(f) }

// NamedCharge is a user-defined charge line inside an upstream breakdown.
type NamedCharge struct {
	Name  string     `json:"name"`
	Value FlexNumber `json:"value"`
}

// Breakdown is the previously stored charge breakdown for a job, if any.
type Breakdown struct {
	Shipping        FlexNumber    `json:"shipping"`
	CustomClearance FlexNumber    `json:"customClearance"`
	Detention       FlexNumber    `json:"detention"`
	CFS             FlexNumber    `json:"cfs"`
	Transport       FlexNumber    `json:"transport"`
	Labour          FlexNumber    `json:"labour"`
	CustomFields    []NamedCharge `json:"customFields"`
}

// Record is the upstream job/shipment record consumed when a workstation
// selects a job. TotalDuty and NetWeight are authoritative on the server side;
// the breakdown is optional and absent for jobs never costed before.
type Record struct {
	JobReference    string     `json:"jobReference"`
	Period          string     `json:"period"`
	TotalDuty       FlexNumber `json:"totalDuty"`
	NetWeight       FlexNumber `json:"netWeight"`
	ChargeBreakdown *Breakdown `json:"chargeBreakdown,omitempty"`
}
