package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/harborline/backend-brokerage/internal/common"
	"github.com/harborline/backend-brokerage/internal/resilience"
)

// Provider fetches job records from the upstream system-of-record.
type Provider interface {
	GetJob(ctx context.Context, jobRef, period string) (Record, error)
}

// ErrJobNotFound builds the canonical not-found error for a job reference.
func ErrJobNotFound(jobRef string) *common.AppError {
	return common.NewAppError("JOB_NOT_FOUND", "job "+jobRef+" not found", http.StatusNotFound, nil)
}

// HTTPProvider retrieves job records over the upstream REST API.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	HTTP    *resilience.HTTPClient
}

// GetJob performs GET {base}/jobs/{jobRef}?period={period}.
func (p *HTTPProvider) GetJob(ctx context.Context, jobRef, period string) (Record, error) {
	if p == nil || p.HTTP == nil {
		return Record{}, fmt.Errorf("jobs: http provider not configured")
	}
	endpoint := fmt.Sprintf("%s/jobs/%s", p.BaseURL, url.PathEscape(jobRef))
	if period != "" {
		endpoint += "?period=" + url.QueryEscape(period)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Set("X-Api-Key", p.APIKey)
	}
	resp, err := p.HTTP.Do(ctx, req)
	if err != nil {
		return Record{}, common.NewAppError("UPSTREAM_UNAVAILABLE", "job lookup failed", http.StatusBadGateway, fmt.Errorf("fetch job %s: %w", jobRef, err))
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Record{}, ErrJobNotFound(jobRef)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Record{}, common.NewAppError("UPSTREAM_UNAVAILABLE", "job lookup failed", http.StatusBadGateway, fmt.Errorf("fetch job %s: unexpected status %d", jobRef, resp.StatusCode))
	}
	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode job %s: %w", jobRef, err)
	}
	if rec.JobReference == "" {
		rec.JobReference = jobRef
	}
	if rec.Period == "" {
		rec.Period = period
	}
	return rec, nil
}
