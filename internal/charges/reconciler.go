package charges

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborline/backend-brokerage/internal/common"
	"github.com/harborline/backend-brokerage/internal/jobs"
	"github.com/harborline/backend-brokerage/internal/ledger"
	"github.com/harborline/backend-brokerage/internal/obs"
)

// Adapter bridges the charge store and aggregator to the external
// collaborators: the upstream job provider on load and the ledger recorder
// after each calculation.
type Adapter struct {
	Jobs     jobs.Provider
	Ledger   ledger.Recorder
	Registry *Registry
	Log      zerolog.Logger
}

// ErrNoActiveJob builds the error returned when a workstation has no
// selected job.
func ErrNoActiveJob(station string) *common.AppError {
	return common.NewAppError("NO_ACTIVE_JOB", "no job selected for workstation "+station, http.StatusNotFound, nil)
}

// LoadJob fetches the upstream record for jobRef and installs a freshly
// seeded store for the workstation, replacing whatever job was active.
// A record without a prior charge breakdown seeds zero-value charges.
func (a *Adapter) LoadJob(ctx context.Context, station, jobRef, period string) (*Store, error) {
	rec, err := a.Jobs.GetJob(ctx, jobRef, period)
	if err != nil {
		return nil, err
	}
	store := NewStore(rec.JobReference, rec.Period)
	store.LoadFromExternal(externalFromRecord(rec))
	a.Registry.Select(station, store)
	a.Log.Info().Str("station", station).Str("job_ref", rec.JobReference).Str("period", rec.Period).Msg("job_loaded")
	return store, nil
}

// externalFromRecord maps an upstream record onto the partial set consumed
// by LoadFromExternal. Duty and weight come straight from the record; the
// breakdown is optional and contributes only the fields it carries.
func externalFromRecord(rec jobs.Record) External {
	duty := rec.TotalDuty.String()
	weight := rec.NetWeight.String()
	ext := External{Duty: &duty, Weight: &weight}
	bd := rec.ChargeBreakdown
	if bd == nil {
		return ext
	}
	ext.Standard = map[string]string{
		FieldShipping:        bd.Shipping.String(),
		FieldCustomClearance: bd.CustomClearance.String(),
		FieldDetention:       bd.Detention.String(),
		FieldCFS:             bd.CFS.String(),
		FieldTransport:       bd.Transport.String(),
		FieldLabour:          bd.Labour.String(),
	}
	ext.CustomFields = make([]CustomField, 0, len(bd.CustomFields))
	for _, cf := range bd.CustomFields {
		ext.CustomFields = append(ext.CustomFields, CustomField{Name: cf.Name, Value: cf.Value.String()})
	}
	return ext
}

// Recalculate aggregates the workstation's current charge set, commits the
// result for display, then pushes it out via the two independent persist
// calls. Persist failures are returned as warnings, never as errors; the
// committed result stands regardless of persistence outcome.
func (a *Adapter) Recalculate(ctx context.Context, station string) (Result, []string, error) {
	store, ok := a.Registry.Get(station)
	if !ok {
		return Result{}, nil, ErrNoActiveJob(station)
	}

	ctx, span := otel.Tracer("charges.Adapter").Start(ctx, "Adapter.Recalculate")
	defer span.End()

	seq, set := store.BeginCalculation()
	span.SetAttributes(attribute.String("job.reference", set.JobReference))

	res, coerced := Aggregate(set)
	for _, field := range coerced {
		a.Log.Warn().Str("job_ref", set.JobReference).Str("field", field).Msg("charge_value_coerced_to_zero")
		if obs.CoercionsTotal != nil {
			obs.CoercionsTotal.WithLabelValues(field).Inc()
		}
	}
	if !store.CommitResult(seq, res) {
		a.Log.Debug().Str("job_ref", set.JobReference).Uint64("seq", seq).Msg("stale_result_discarded")
	}
	if obs.CalculationsTotal != nil {
		obs.CalculationsTotal.WithLabelValues("ok").Inc()
	}

	warnings := a.persist(ctx, set, res)
	if !store.RecordPersistOutcome(seq, set.JobReference, warnings) {
		if obs.StalePersistDiscards != nil {
			obs.StalePersistDiscards.Inc()
		}
		a.Log.Debug().Str("job_ref", set.JobReference).Uint64("seq", seq).Msg("stale_persist_outcome_discarded")
	}
	return res, warnings, nil
}

// persist issues the two external writes concurrently. They are independent
// by contract; each failure yields its own warning and neither blocks the
// other.
func (a *Adapter) persist(ctx context.Context, set ChargeSet, res Result) []string {
	breakdown := breakdownRecord(set, res)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var warnings []string

	record := func(call, warning string, fn func() error) {
		defer wg.Done()
		start := time.Now()
		err := fn()
		result := "ok"
		if err != nil {
			result = "error"
			a.Log.Warn().Err(err).Str("job_ref", set.JobReference).Str("call", call).Msg("persist_failed")
			mu.Lock()
			warnings = append(warnings, warning)
			mu.Unlock()
		}
		if obs.LedgerPersistTotal != nil {
			obs.LedgerPersistTotal.WithLabelValues(call, result).Inc()
		}
		if obs.LedgerPersistLatency != nil {
			obs.LedgerPersistLatency.WithLabelValues(call).Observe(obs.DurationMillis(time.Since(start)))
		}
	}

	wg.Add(2)
	go record("breakdown", "charge breakdown was not saved", func() error {
		return a.Ledger.SaveBreakdown(ctx, breakdown)
	})
	go record("per_weight_cost", "per-weight cost was not saved", func() error {
		return a.Ledger.SavePerWeightCost(ctx, set.JobReference, res.PerWeightCost)
	})
	wg.Wait()
	return warnings
}

func breakdownRecord(set ChargeSet, res Result) ledger.BreakdownRecord {
	fields := make([]ledger.NamedCharge, 0, len(set.CustomFields))
	for _, cf := range set.CustomFields {
		fields = append(fields, ledger.NamedCharge{Name: cf.Name, Value: cf.Value})
	}
	return ledger.BreakdownRecord{
		JobReference:    set.JobReference,
		Period:          set.Period,
		Shipping:        set.Standard[FieldShipping],
		CustomClearance: set.Standard[FieldCustomClearance],
		Detention:       set.Standard[FieldDetention],
		CFS:             set.Standard[FieldCFS],
		Transport:       set.Standard[FieldTransport],
		Labour:          set.Standard[FieldLabour],
		Weight:          set.Weight,
		TotalCost:       res.TotalCost,
		CustomFields:    fields,
	}
}
