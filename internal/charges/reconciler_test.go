package charges_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/harborline/backend-brokerage/internal/charges"
	"github.com/harborline/backend-brokerage/internal/common"
	"github.com/harborline/backend-brokerage/internal/jobs"
	"github.com/harborline/backend-brokerage/internal/ledger"
)

func jobFixture() jobs.Record {
	return jobs.Record{
		JobReference: "JOB-1",
		Period:       "2025",
		TotalDuty:    "1000.00",
		NetWeight:    "500",
		ChargeBreakdown: &jobs.Breakdown{
			Shipping:  "200.00",
			CFS:       "150.50",
			Transport: "300.25",
			CustomFields: []jobs.NamedCharge{
				{Name: "Insurance", Value: "75.25"},
			},
		},
	}
}

func newAdapter(provider jobs.Provider, recorder ledger.Recorder) *charges.Adapter {
	return &charges.Adapter{
		Jobs:     provider,
		Ledger:   recorder,
		Registry: charges.NewRegistry(0),
		Log:      zerolog.Nop(),
	}
}

func TestLoadJobSeedsWorkspace(t *testing.T) {
	adapter := newAdapter(&jobs.Mock{Records: map[string]jobs.Record{"JOB-1": jobFixture()}}, &ledger.Mock{})

	store, err := adapter.LoadJob(context.Background(), "station-1", "JOB-1", "2025")
	require.NoError(t, err)

	set := store.Snapshot()
	require.Equal(t, "1000.00", set.Duty)
	require.Equal(t, "500", set.Weight)
	require.Equal(t, "200.00", set.Standard[charges.FieldShipping])
	require.Equal(t, "150.50", set.Standard[charges.FieldCFS])
	require.Len(t, set.CustomFields, 1)
	require.Equal(t, "Insurance", set.CustomFields[0].Name)
	require.NotEmpty(t, set.CustomFields[0].ID)
}

func TestLoadJobWithoutBreakdownDefaultsCharges(t *testing.T) {
	rec := jobs.Record{JobReference: "JOB-2", Period: "2025", TotalDuty: "10.00", NetWeight: "4"}
	adapter := newAdapter(&jobs.Mock{Records: map[string]jobs.Record{"JOB-2": rec}}, &ledger.Mock{})

	store, err := adapter.LoadJob(context.Background(), "station-1", "JOB-2", "2025")
	require.NoError(t, err)

	set := store.Snapshot()
	require.Equal(t, "10.00", set.Duty)
	require.Equal(t, "0.00", set.Standard[charges.FieldShipping])
	require.Empty(t, set.CustomFields)
}

func TestLoadJobNotFound(t *testing.T) {
	adapter := newAdapter(&jobs.Mock{}, &ledger.Mock{})
	_, err := adapter.LoadJob(context.Background(), "station-1", "NOPE", "")
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "JOB_NOT_FOUND", appErr.Code)
}

func TestRecalculatePersistsBothCalls(t *testing.T) {
	recorder := &ledger.Mock{}
	adapter := newAdapter(&jobs.Mock{Records: map[string]jobs.Record{"JOB-1": jobFixture()}}, recorder)

	_, err := adapter.LoadJob(context.Background(), "station-1", "JOB-1", "2025")
	require.NoError(t, err)

	res, warnings, err := adapter.Recalculate(context.Background(), "station-1")
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "1726.00", res.TotalCost)
	require.Equal(t, "3.45", res.PerWeightCost)

	breakdown, ok := recorder.LastBreakdown()
	require.True(t, ok)
	require.Equal(t, "JOB-1", breakdown.JobReference)
	require.Equal(t, "2025", breakdown.Period)
	require.Equal(t, "200.00", breakdown.Shipping)
	require.Equal(t, "1726.00", breakdown.TotalCost)
	require.Equal(t, []ledger.NamedCharge{{Name: "Insurance", Value: "75.25"}}, breakdown.CustomFields)

	require.Len(t, recorder.PerWeightCosts, 1)
	require.Equal(t, ledger.PerWeightCall{JobReference: "JOB-1", PerWeightCost: "3.45"}, recorder.PerWeightCosts[0])
}

func TestRecalculateNoActiveJob(t *testing.T) {
	adapter := newAdapter(&jobs.Mock{}, &ledger.Mock{})
	_, _, err := adapter.Recalculate(context.Background(), "station-1")
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "NO_ACTIVE_JOB", appErr.Code)
}

func TestRecalculatePersistFailureIsNonFatal(t *testing.T) {
	recorder := &ledger.Mock{PerWeightErr: errors.New("upstream down")}
	adapter := newAdapter(&jobs.Mock{Records: map[string]jobs.Record{"JOB-1": jobFixture()}}, recorder)

	store, err := adapter.LoadJob(context.Background(), "station-1", "JOB-1", "2025")
	require.NoError(t, err)

	res, warnings, err := adapter.Recalculate(context.Background(), "station-1")
	require.NoError(t, err, "persist failures never fail the calculation")
	require.Equal(t, "1726.00", res.TotalCost)
	require.Equal(t, []string{"per-weight cost was not saved"}, warnings)

	committed, ok := store.Result()
	require.True(t, ok, "result stays committed despite the failed write")
	require.Equal(t, res, committed)
	require.Equal(t, warnings, store.Warnings())
}

// blockingRecorder gates breakdown saves so the test can interleave two
// overlapping calculations deterministically.
type blockingRecorder struct {
	ledger.Mock
	release chan struct{}
	once    sync.Once
	blocked chan struct{}
}

func (b *blockingRecorder) SaveBreakdown(ctx context.Context, rec ledger.BreakdownRecord) error {
	var first bool
	b.once.Do(func() { first = true })
	if first {
		close(b.blocked)
		<-b.release
		return errors.New("breakdown endpoint down")
	}
	return b.Mock.SaveBreakdown(ctx, rec)
}

func TestOverlappingRecalculationsKeepNewestOutcome(t *testing.T) {
	recorder := &blockingRecorder{release: make(chan struct{}), blocked: make(chan struct{})}

	adapter := newAdapter(&jobs.Mock{Records: map[string]jobs.Record{"JOB-1": jobFixture()}}, recorder)
	store, err := adapter.LoadJob(context.Background(), "station-1", "JOB-1", "2025")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = adapter.Recalculate(context.Background(), "station-1")
	}()

	// Wait until the first calculation is stuck persisting, then run a
	// second one to completion before releasing the first.
	<-recorder.blocked
	_, warnings, err := adapter.Recalculate(context.Background(), "station-1")
	require.NoError(t, err)
	require.Empty(t, warnings)
	close(recorder.release)
	<-done

	// The first calculation finished last and its breakdown write failed,
	// but that outcome is stale and must not overwrite the clean one.
	require.Empty(t, store.Warnings())
}
