package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/harborline/backend-brokerage/internal/resilience"
)

// HTTPRecorder issues the persist calls against the upstream REST API.
type HTTPRecorder struct {
	BaseURL string
	APIKey  string
	HTTP    *resilience.HTTPClient
}

// SaveBreakdown performs POST {base}/jobs/{jobRef}/charges with the full
// breakdown payload.
func (r *HTTPRecorder) SaveBreakdown(ctx context.Context, rec BreakdownRecord) error {
	endpoint := fmt.Sprintf("%s/jobs/%s/charges", r.BaseURL, url.PathEscape(rec.JobReference))
	return r.post(ctx, endpoint, rec)
}

// SavePerWeightCost performs PUT {base}/jobs/{jobRef}/per-weight-cost carrying
// only the derived per-kg value.
func (r *HTTPRecorder) SavePerWeightCost(ctx context.Context, jobRef, perWeightCost string) error {
	endpoint := fmt.Sprintf("%s/jobs/%s/per-weight-cost", r.BaseURL, url.PathEscape(jobRef))
	payload := map[string]string{"jobReference": jobRef, "perWeightCost": perWeightCost}
	return r.send(ctx, http.MethodPut, endpoint, payload)
}

func (r *HTTPRecorder) post(ctx context.Context, endpoint string, payload any) error {
	return r.send(ctx, http.MethodPost, endpoint, payload)
}

func (r *HTTPRecorder) send(ctx context.Context, method, endpoint string, payload any) error {
	if r == nil || r.HTTP == nil {
		return fmt.Errorf("ledger: http recorder not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("X-Api-Key", r.APIKey)
	}
	resp, err := r.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("persist %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("persist %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return nil
}
