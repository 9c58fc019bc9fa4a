// Package backend holds the HTTP clients for the dedicated prediction
// services, one per route. Clients validate their endpoint configuration
// at construction so a misconfigured route fails startup instead of
// silently routing everything to the fallback.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mobility-intake/internal/common/config"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
)

const (
	healthPath = "/health"

	// maxResponseBytes bounds how much of a backend response we read.
	maxResponseBytes = 1 << 20
)

// Client is the transport shared by the route backends. It satisfies
// health.Prober.
type Client struct {
	name        string
	baseURL     string
	predictPath string

	probeClient   *http.Client
	predictClient *http.Client
	logger        logger.Logger
}

func newClient(name, defaultPredictPath string, rc config.RouteConfig, oc config.OrchestratorConfig, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(rc.BackendURL) == "" {
		return nil, commonerrors.NewBackendNotConfiguredError(name)
	}
	u, err := url.Parse(rc.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, commonerrors.NewInvalidConfigurationError(
			fmt.Sprintf("route %s: unusable backend_url %q", name, rc.BackendURL))
	}

	predictPath := rc.PredictPath
	if predictPath == "" {
		predictPath = defaultPredictPath
	}

	probeTimeout := time.Duration(rc.ProbeTimeout) * time.Millisecond
	if probeTimeout <= 0 {
		probeTimeout = oc.ProbeTimeoutDuration()
	}
	predictTimeout := time.Duration(rc.PredictTimeout) * time.Millisecond
	if predictTimeout <= 0 {
		predictTimeout = oc.PredictTimeoutDuration()
	}

	return &Client{
		name:          name,
		baseURL:       strings.TrimRight(u.String(), "/"),
		predictPath:   predictPath,
		probeClient:   &http.Client{Timeout: probeTimeout},
		predictClient: &http.Client{Timeout: predictTimeout},
		logger:        log.With(map[string]interface{}{"backend": name}),
	}, nil
}

func (c *Client) Name() string { return c.name }

// CheckLiveness probes GET {base}/health. Anything short of a 200 with
// {"status":"healthy"} counts as down; no failure mode escapes as an
// error or panic.
func (c *Client) CheckLiveness(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.probeClient.Do(req)
	if err != nil {
		c.logger.Debug("health probe failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false
	}
	return gjson.GetBytes(body, "status").String() == "healthy"
}

// predict POSTs the payload to the route's prediction path and returns
// the raw success body. Timeouts and transport failures map onto the
// backend-unavailability error codes the orchestrator recovers from.
func (c *Client) predict(ctx context.Context, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.NewPredictFailedError(c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.predictPath, bytes.NewReader(data))
	if err != nil {
		return nil, commonerrors.NewPredictFailedError(c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.predictClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, commonerrors.NewPredictTimeoutError(c.name)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewPredictTimeoutError(c.name)
		}
		return nil, commonerrors.NewPredictFailedError(c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, commonerrors.NewPredictFailedError(c.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, commonerrors.NewPredictFailedError(c.name, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}
