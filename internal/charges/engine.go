package charges

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Aggregate reduces a charge set to its calculation result. It is pure and
// deterministic: repeated calls on the same set yield identical output.
//
// Unparseable or empty values contribute zero and never produce an error.
// The returned slice names every field whose non-empty value was discarded
// during parsing so the caller can emit a diagnostic; empty input is normal
// while the operator is still typing and is not reported.
func Aggregate(set ChargeSet) (Result, []string) {
	var coerced []string

	total := parseAmount(set.Duty, FieldDuty, &coerced)
	for _, key := range StandardKeys {
		total = total.Add(parseAmount(set.Standard[key], key, &coerced))
	}
	for _, cf := range set.CustomFields {
		total = total.Add(parseAmount(cf.Value, "custom:"+cf.Name, &coerced))
	}

	weight := parseAmount(set.Weight, FieldWeight, &coerced)

	perWeight := "0.00"
	if weight.IsPositive() {
		perWeight = total.Div(weight).StringFixed(2)
	}
	return Result{TotalCost: total.StringFixed(2), PerWeightCost: perWeight}, coerced
}

// parseAmount turns a raw field value into a decimal, recording the field
// name when a non-empty value had to be dropped.
func parseAmount(raw, field string, coerced *[]string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		*coerced = append(*coerced, field)
		return decimal.Zero
	}
	return d
}
