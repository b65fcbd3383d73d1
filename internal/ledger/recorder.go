// Package ledger pushes finished calculations back to the external
// system-of-record. The two writes it issues are independent by contract:
// the full charge breakdown and the per-weight cost live behind separate
// upstream endpoints and neither one is transactional with the other.
package ledger

import "context"

// NamedCharge is a user-defined charge line in an outbound breakdown.
type NamedCharge struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BreakdownRecord is the full charge breakdown persisted after a calculation.
type BreakdownRecord struct {
	JobReference    string        `json:"jobReference"`
	Period          string        `json:"period"`
	Shipping        string        `json:"shipping"`
	CustomClearance string        `json:"customClearance"`
	Detention       string        `json:"detention"`
	CFS             string        `json:"cfs"`
	Transport       string        `json:"transport"`
	Labour          string        `json:"labour"`
	Weight          string        `json:"weight"`
	TotalCost       string        `json:"totalCost"`
	CustomFields    []NamedCharge `json:"customFields"`
}

// Recorder models the outbound persistence collaborator.
type Recorder interface {
	SaveBreakdown(ctx context.Context, rec BreakdownRecord) error
	SavePerWeightCost(ctx context.Context, jobRef, perWeightCost string) error
}
