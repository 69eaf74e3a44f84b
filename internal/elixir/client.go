// Package elixir submits records to the external structural/semantic schema
// validator service and normalizes its findings. The service is advisory: any
// transport failure is swallowed and validation proceeds without its
// contribution.
package elixir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sampleval/internal/telemetry"
)

const (
	// draft07Marker is injected when a schema does not declare its dialect.
	draft07Marker = "http://json-schema.org/draft-07/schema#"

	// oneOfArtifact is a known false positive produced by oneOf-based schema
	// unions; it carries no actionable information and is always dropped.
	oneOfArtifact = "should match exactly one schema in oneOf"
)

// Finding is one normalized validator result: a path into the submitted
// object and the messages reported there.
type Finding struct {
	Path     string
	Messages []string
}

// Client talks to the validator service.
type Client struct {
	url     string
	http    *http.Client
	log     telemetry.Logger
	metrics telemetry.MetricsRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes swallowed transport failures to the supplied logger.
func WithLogger(l telemetry.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records call durations and outcomes.
func WithMetrics(m telemetry.MetricsRecorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New builds a client for the validator endpoint. A non-positive timeout
// defaults to thirty seconds.
func New(url string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		url:     url,
		http:    &http.Client{Timeout: timeout},
		log:     telemetry.NopLogger{},
		metrics: telemetry.NopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type submission struct {
	Schema map[string]any `json:"schema"`
	Object any            `json:"object"`
}

type resultItem struct {
	DataPath     string   `json:"dataPath"`
	InstancePath string   `json:"instancePath"`
	Errors       []string `json:"errors"`
}

// Validate submits object against schema and returns the normalized findings.
// The caller's schema is not mutated; a draft-07 dialect marker is added to
// the submitted copy when absent. Failures of any kind yield no findings.
func (c *Client) Validate(ctx context.Context, object any, schema map[string]any) []Finding {
	started := time.Now()
	findings, err := c.validate(ctx, object, schema)
	c.metrics.Observe(ctx, "elixir_validate", err == nil, time.Since(started))
	if err != nil {
		c.log.Warn("schema validator unavailable, skipping pass", "error", err)
		return nil
	}
	return findings
}

func (c *Client) validate(ctx context.Context, object any, schema map[string]any) ([]Finding, error) {
	if _, ok := schema["$schema"]; !ok {
		withMarker := make(map[string]any, len(schema)+1)
		for k, v := range schema {
			withMarker[k] = v
		}
		withMarker["$schema"] = draft07Marker
		schema = withMarker
	}

	payload, err := json.Marshal(submission{Schema: schema, Object: object})
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submit: status %d", resp.StatusCode)
	}

	var items []resultItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var findings []Finding
	for _, item := range items {
		messages := make([]string, 0, len(item.Errors))
		for _, msg := range item.Errors {
			if msg != oneOfArtifact {
				messages = append(messages, msg)
			}
		}
		if len(messages) == 0 {
			continue
		}
		path := item.DataPath
		if path == "" {
			path = item.InstancePath
		}
		findings = append(findings, Finding{Path: path, Messages: messages})
	}
	return findings, nil
}
