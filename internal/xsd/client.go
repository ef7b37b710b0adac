// Package xsd is the HTTP client for the external structural
// schema-validation collaborator. The core never compiles schemas itself;
// it ships the raw XML plus a schema reference and treats the returned
// diagnostics as opaque strings.
package xsd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/payshield/payment-triage/internal/config"
)

// Client calls a schema-validation service over HTTP.
type Client struct {
	endpoint  string
	schemaRef string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a schema-validation client, or nil when no endpoint is
// configured. Callers treat a nil client as an absent capability.
func NewClient(cfg config.SchemaConfig, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		schemaRef: cfg.SchemaRef,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

type validateRequest struct {
	XML       string `json:"xml"`
	SchemaRef string `json:"schema_ref"`
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate submits the XML document for structural validation. The returned
// error reports transport or service failure only; schema violations come
// back as diagnostics with valid=false.
func (c *Client) Validate(ctx context.Context, xmlText string) (bool, []string, error) {
	payload, err := json.Marshal(validateRequest{XML: xmlText, SchemaRef: c.schemaRef})
	if err != nil {
		return false, nil, fmt.Errorf("encoding schema validation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, nil, fmt.Errorf("building schema validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, nil, fmt.Errorf("calling schema validator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("schema validator returned status %d", resp.StatusCode)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, nil, fmt.Errorf("decoding schema validation response: %w", err)
	}

	c.logger.Debug("schema validation completed",
		zap.Bool("valid", out.Valid),
		zap.Int("errors", len(out.Errors)))

	return out.Valid, out.Errors, nil
}
