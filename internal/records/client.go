// Package records talks to the university academic records service: person
// lookup, kardex, payment history and invoice detail. The upstream is known
// to drop fields, return empty result sets and fail transiently, so every
// call runs under a per-attempt timeout with bounded retry and backoff.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

// Config governs connection, auth and retry behaviour.
type Config struct {
	BaseURL      string
	APIToken     string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Observer receives upstream call timings. Satisfied by the metrics service.
type Observer interface {
	ObserveUpstreamRequest(endpoint string, duration time.Duration, failed bool)
}

// Client is the HTTP client for the academic records service.
type Client struct {
	cfg      Config
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// NewClient constructs a records client.
func NewClient(cfg Config, logger *zap.Logger, observer Observer) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		observer: observer,
	}
}

// LookupPersons searches persons whose ID document contains the fragment.
// An empty result is a valid answer, not an error.
func (c *Client) LookupPersons(ctx context.Context, fragment string) ([]models.PersonSummary, error) {
	endpoint := "/api/personas"
	var persons []models.PersonSummary
	q := url.Values{"documento": {fragment}}
	if err := c.get(ctx, endpoint, endpoint+"?"+q.Encode(), &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

// AcademicHistory fetches the per-term kardex blocks for a student.
func (c *Client) AcademicHistory(ctx context.Context, studentExternalID string) ([]models.KardexTermBlock, error) {
	endpoint := "/api/estudiantes/kardex"
	var blocks []models.KardexTermBlock
	path := fmt.Sprintf("/api/estudiantes/%s/kardex", url.PathEscape(studentExternalID))
	if err := c.get(ctx, endpoint, path, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// PaymentHistory fetches the raw payment rows for a student.
func (c *Client) PaymentHistory(ctx context.Context, studentExternalID string) ([]models.PaymentRow, error) {
	endpoint := "/api/estudiantes/pagos"
	var rows []models.PaymentRow
	path := fmt.Sprintf("/api/estudiantes/%s/pagos", url.PathEscape(studentExternalID))
	if err := c.get(ctx, endpoint, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InvoiceDetail fetches the detail rows of one invoice.
func (c *Client) InvoiceDetail(ctx context.Context, masterNumber, regionID, order string) ([]models.InvoiceRow, error) {
	endpoint := "/api/facturas"
	var rows []models.InvoiceRow
	path := fmt.Sprintf("/api/facturas/%s/%s/%s",
		url.PathEscape(masterNumber), url.PathEscape(regionID), url.PathEscape(order))
	if err := c.get(ctx, endpoint, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, dest interface{}) error {
	start := time.Now()
	err := c.doWithRetry(ctx, path, dest)
	if c.observer != nil {
		c.observer.ObserveUpstreamRequest(endpoint, time.Since(start), err != nil)
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, path string, dest interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBackoff * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return appErrors.Wrap(ctx.Err(), appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "records request cancelled")
			case <-timer.C:
			}
		}

		retry, err := c.doOnce(ctx, path, dest)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
		c.logger.Warn("records request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return appErrors.Wrap(lastErr, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status,
		fmt.Sprintf("records request exhausted %d attempts", c.cfg.MaxRetries+1))
}

// doOnce performs a single attempt. The bool result indicates whether the
// failure is retryable (network error, 429 or 5xx).
func (c *Client) doOnce(ctx context.Context, path string, dest interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "build records request")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("token", c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, appErrors.Wrap(ctx.Err(), appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "records request cancelled")
		}
		return true, appErrors.Wrap(err, appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "records request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Upstream answers 404 for students with no data; treat as empty.
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return true, appErrors.Wrap(
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)),
			appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "records service error")
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, appErrors.Wrap(
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)),
			appErrors.ErrUpstreamFailure.Code, appErrors.ErrUpstreamFailure.Status, "records request rejected")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "decode records response")
	}
	return false, nil
}
