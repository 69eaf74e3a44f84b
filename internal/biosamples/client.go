// Package biosamples resolves external sample accessions to the minimal
// lineage projection the relationship pass needs: species, material type and
// declared parent accessions.
package biosamples

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"sampleval/internal/telemetry"
)

const defaultBaseURL = "https://www.ebi.ac.uk/biosamples/samples"

// accessionPattern matches BioSamples accessions (SAMEA..., SAMN..., SAMD...).
var accessionPattern = regexp.MustCompile(`^SAM[END][AG]?\d+$`)

// IsAccession reports whether v looks like an external sample accession.
func IsAccession(v string) bool { return accessionPattern.MatchString(v) }

// Lineage is the projection of an external sample used for relationship
// validation.
type Lineage struct {
	Species          string
	Material         string
	ParentAccessions []string
}

// Client fetches samples from the BioSamples service.
type Client struct {
	baseURL string
	http    *http.Client
	log     telemetry.Logger
	metrics telemetry.MetricsRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes fetch failures to the supplied logger.
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

// New builds a client; an empty base URL selects the EBI production service
// and a non-positive timeout defaults to ten seconds.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     telemetry.NopLogger{},
		metrics: telemetry.NopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sampleDocument struct {
	Characteristics map[string][]struct {
		Text string `json:"text"`
	} `json:"characteristics"`
	Relationships []struct {
		Source string `json:"source"`
		Type   string `json:"type"`
		Target string `json:"target"`
	} `json:"relationships"`
}

// Fetch retrieves one accession's lineage projection. Parent accessions come
// from "child of" and "derived from" relationships where the sample is the
// source.
func (c *Client) Fetch(ctx context.Context, accession string) (Lineage, error) {
	started := time.Now()
	lineage, err := c.fetch(ctx, accession)
	c.metrics.Observe(ctx, "biosamples_fetch", err == nil, time.Since(started))
	if err != nil {
		c.log.Warn("biosamples fetch failed", "accession", accession, "error", err)
		return Lineage{}, err
	}
	return lineage, nil
}

func (c *Client) fetch(ctx context.Context, accession string) (Lineage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+accession, nil)
	if err != nil {
		return Lineage{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Lineage{}, fmt.Errorf("fetch %s: %w", accession, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Lineage{}, fmt.Errorf("fetch %s: status %d", accession, resp.StatusCode)
	}

	var doc sampleDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Lineage{}, fmt.Errorf("decode %s: %w", accession, err)
	}

	var lineage Lineage
	if entries := doc.Characteristics["organism"]; len(entries) > 0 {
		lineage.Species = entries[0].Text
	}
	if entries := doc.Characteristics["material"]; len(entries) > 0 {
		lineage.Material = entries[0].Text
	}
	for _, rel := range doc.Relationships {
		if rel.Source != accession {
			continue
		}
		if rel.Type == "child of" || rel.Type == "derived from" {
			lineage.ParentAccessions = append(lineage.ParentAccessions, rel.Target)
		}
	}
	return lineage, nil
}
