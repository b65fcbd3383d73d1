package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborline/backend-brokerage/internal/ledger"
	"github.com/harborline/backend-brokerage/internal/resilience"
)

func TestSaveBreakdownPayload(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rec := &ledger.HTTPRecorder{
		BaseURL: srv.URL,
		APIKey:  "secret",
		HTTP:    &resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
	err := rec.SaveBreakdown(context.Background(), ledger.BreakdownRecord{
		JobReference:    "JOB-1",
		Period:          "2025",
		Shipping:        "200.00",
		CustomClearance: "0",
		Detention:       "0",
		CFS:             "150.50",
		Transport:       "300.25",
		Labour:          "0",
		Weight:          "500",
		TotalCost:       "1726.00",
		CustomFields:    []ledger.NamedCharge{{Name: "Insurance", Value: "75.25"}},
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/jobs/JOB-1/charges", gotPath)
	require.Equal(t, "JOB-1", gotBody["jobReference"])
	require.Equal(t, "2025", gotBody["period"])
	require.Equal(t, "1726.00", gotBody["totalCost"])
	fields, ok := gotBody["customFields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 1)
}

func TestSavePerWeightCostPayload(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &ledger.HTTPRecorder{
		BaseURL: srv.URL,
		HTTP:    &resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
	}
	err := rec.SavePerWeightCost(context.Background(), "JOB-1", "3.45")
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/jobs/JOB-1/per-weight-cost", gotPath)
	require.Equal(t, map[string]string{"jobReference": "JOB-1", "perWeightCost": "3.45"}, gotBody)
}

func TestRecorderSurfacesServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &ledger.HTTPRecorder{
		BaseURL: srv.URL,
		HTTP:    &resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 2},
	}
	err := rec.SavePerWeightCost(context.Background(), "JOB-1", "3.45")
	require.Error(t, err)
}
