package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/harborline/backend-brokerage/internal/common"
	"github.com/harborline/backend-brokerage/internal/jobs"
	"github.com/harborline/backend-brokerage/internal/resilience"
)

func TestFlexNumberAcceptsStringAndNumber(t *testing.T) {
	var rec jobs.Record
	payload := []byte(`{"jobReference":"JOB-1","period":"2025","totalDuty":"1000.00","netWeight":500,"chargeBreakdown":{"shipping":200,"cfs":"150.50","customFields":[{"name":"Insurance","value":75.25}]}}`)
	require.NoError(t, json.Unmarshal(payload, &rec))
	require.Equal(t, "1000.00", rec.TotalDuty.String())
	require.Equal(t, "500", rec.NetWeight.String())
	require.NotNil(t, rec.ChargeBreakdown)
	require.Equal(t, "200", rec.ChargeBreakdown.Shipping.String())
	require.Equal(t, "150.50", rec.ChargeBreakdown.CFS.String())
	require.Len(t, rec.ChargeBreakdown.CustomFields, 1)
	require.Equal(t, "75.25", rec.ChargeBreakdown.CustomFields[0].Value.String())
}

func TestFlexNumberNull(t *testing.T) {
	var rec jobs.Record
	require.NoError(t, json.Unmarshal([]byte(`{"jobReference":"JOB-2","totalDuty":null}`), &rec))
	require.Equal(t, "", rec.TotalDuty.String())
}

func TestHTTPProviderFetchesJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/JOB-77", r.URL.Path)
		require.Equal(t, "2025", r.URL.Query().Get("period"))
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobReference":"JOB-77","period":"2025","totalDuty":"1000.00","netWeight":"500"}`))
	}))
	defer srv.Close()

	provider := &jobs.HTTPProvider{
		BaseURL: srv.URL,
		APIKey:  "secret",
		HTTP:    &resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
	rec, err := provider.GetJob(context.Background(), "JOB-77", "2025")
	require.NoError(t, err)
	require.Equal(t, "JOB-77", rec.JobReference)
	require.Equal(t, "1000.00", rec.TotalDuty.String())
}

func TestHTTPProviderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	provider := &jobs.HTTPProvider{
		BaseURL: srv.URL,
		HTTP:    &resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
	_, err := provider.GetJob(context.Background(), "MISSING", "")
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "JOB_NOT_FOUND", appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestCachedProviderHitSkipsUpstream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mock := &jobs.Mock{Records: map[string]jobs.Record{
		"JOB-5": {JobReference: "JOB-5", Period: "2025", TotalDuty: "42.00", NetWeight: "10"},
	}}
	cached := &jobs.CachedProvider{
		Inner: mock,
		Cache: jobs.NewCache(client, time.Minute),
		Log:   zerolog.Nop(),
	}

	ctx := context.Background()
	first, err := cached.GetJob(ctx, "JOB-5", "2025")
	require.NoError(t, err)
	require.Equal(t, "42.00", first.TotalDuty.String())
	require.Equal(t, 1, mock.Calls)

	second, err := cached.GetJob(ctx, "JOB-5", "2025")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, mock.Calls, "second lookup should be served from cache")
}

func TestCachedProviderCacheErrorFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	mock := &jobs.Mock{Records: map[string]jobs.Record{
		"JOB-9": {JobReference: "JOB-9", TotalDuty: "5.00"},
	}}
	cached := &jobs.CachedProvider{
		Inner: mock,
		Cache: jobs.NewCache(client, time.Minute),
		Log:   zerolog.Nop(),
	}
	rec, err := cached.GetJob(context.Background(), "JOB-9", "")
	require.NoError(t, err)
	require.Equal(t, "5.00", rec.TotalDuty.String())
	require.Equal(t, 1, mock.Calls)
}
