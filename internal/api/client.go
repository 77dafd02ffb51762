// Package api is the HTTP client for the collector's /power/* endpoints.
// Every response arrives in the {success, data, count} envelope; failures are
// split into the three cases the dashboard cares about: the network being
// down, a non-2xx status, and a well-formed envelope carrying success=false.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gridwatch/powerdash/internal/domain"
)

var (
	// ErrUnreachable wraps transport-level failures.
	ErrUnreachable = errors.New("collector unreachable")
	// ErrEnvelope marks a response whose envelope reports failure or
	// carries no data.
	ErrEnvelope = errors.New("bad response envelope")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(base string) *Client {
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Last7(ctx context.Context) ([]domain.PowerReading, error) {
	var out []domain.PowerReading
	if err := c.getJSON(ctx, "/power/last7", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PeakUsage(ctx context.Context) ([]domain.PeakUsage, error) {
	var out []domain.PeakUsage
	if err := c.getJSON(ctx, "/power/analysis/peak-usage", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LoadPattern(ctx context.Context) ([]domain.LoadPattern, error) {
	var out []domain.LoadPattern
	if err := c.getJSON(ctx, "/power/analysis/load-pattern", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PowerFactor(ctx context.Context) (*domain.PowerFactorSummary, error) {
	var out domain.PowerFactorSummary
	if err := c.getJSON(ctx, "/power/analysis/power-factor", &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Statistics(ctx context.Context, days int) (*domain.Statistics, error) {
	params := url.Values{}
	params.Set("days", fmt.Sprintf("%d", days))
	var out domain.Statistics
	if err := c.getJSON(ctx, "/power/statistics", &out, params); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Alerts(ctx context.Context) ([]domain.Alert, error) {
	var out []domain.Alert
	if err := c.getJSON(ctx, "/power/alerts", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AlertSummary(ctx context.Context) (*domain.AlertSummary, error) {
	var out domain.AlertSummary
	if err := c.getJSON(ctx, "/power/alerts/summary", &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MonthlyReports(ctx context.Context) ([]domain.MonthlyReport, error) {
	var out []domain.MonthlyReport
	if err := c.getJSON(ctx, "/power/reports/monthly", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CurrentMonthReport(ctx context.Context) (*domain.MonthlyReport, error) {
	var out domain.MonthlyReport
	if err := c.getJSON(ctx, "/power/reports/current-month", &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) HourlyAll(ctx context.Context) ([]domain.EnergyBucket, error) {
	return c.buckets(ctx, "/power/hourly/all")
}

func (c *Client) DailyAll(ctx context.Context) ([]domain.EnergyBucket, error) {
	return c.buckets(ctx, "/power/daily/all")
}

func (c *Client) MonthlyAll(ctx context.Context) ([]domain.EnergyBucket, error) {
	return c.buckets(ctx, "/power/monthly/all")
}

func (c *Client) buckets(ctx context.Context, path string) ([]domain.EnergyBucket, error) {
	var out []domain.EnergyBucket
	if err := c.getJSON(ctx, path, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Health probes the collector's /health endpoint, which replies outside the
// envelope format.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any, params url.Values) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	start := time.Now()
	err := c.doGet(ctx, path, u, out)
	fetchDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		fetchesTotal.WithLabelValues(path, "error").Inc()
		return err
	}
	fetchesTotal.WithLabelValues(path, "ok").Inc()
	return nil
}

func (c *Client) doGet(ctx context.Context, path, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}

	var env domain.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	// A missing data field decodes to a nil RawMessage, but an explicit
	// "data": null arrives as the literal bytes; both mean no payload.
	if !env.Success || len(env.Data) == 0 || string(env.Data) == "null" {
		if env.Error != "" {
			return fmt.Errorf("%w: %s", ErrEnvelope, env.Error)
		}
		return ErrEnvelope
	}
	return json.Unmarshal(env.Data, out)
}
