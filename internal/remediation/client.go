// Package remediation is the HTTP client for the optional generative
// remediation-text collaborator. The core sends a minimal fact record and
// treats the returned prose as opaque.
package remediation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/config"
	"github.com/payshield/payment-triage/internal/router"
)

// Client calls a remediation-suggestion service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a remediation client, or nil when no endpoint is
// configured. Callers treat a nil client as an absent capability.
func NewClient(cfg config.RemediationConfig, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

type suggestResponse struct {
	Suggestion string `json:"suggestion"`
}

// Suggest asks the collaborator for remediation prose for a failure
// context.
func (c *Client) Suggest(ctx context.Context, sctx router.SuggestionContext) (string, error) {
	payload, err := json.Marshal(sctx)
	if err != nil {
		return "", fmt.Errorf("encoding suggestion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling remediation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remediation service returned status %d", resp.StatusCode)
	}

	var out suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding suggestion response: %w", err)
	}

	c.logger.Debug("remediation suggestion received",
		zap.String("reason_code", sctx.ReasonCode),
		zap.Int("length", len(out.Suggestion)))

	return strings.TrimSpace(out.Suggestion), nil
}
