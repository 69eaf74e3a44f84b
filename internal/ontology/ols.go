package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOLSBaseURL = "https://www.ebi.ac.uk/ols/api"

// OLSClient implements Lookup against the EBI Ontology Lookup Service search
// endpoint.
type OLSClient struct {
	baseURL string
	http    *http.Client
}

// NewOLSClient builds a client for the given base URL (empty selects the EBI
// production endpoint). A non-positive timeout defaults to ten seconds.
func NewOLSClient(baseURL string, timeout time.Duration) *OLSClient {
	if baseURL == "" {
		baseURL = defaultOLSBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OLSClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type olsResponse struct {
	Response struct {
		Docs []TermDoc `json:"docs"`
	} `json:"response"`
}

// Search queries the service for a term identifier. Colons in the identifier
// are underscored to match the service's indexed form.
func (c *OLSClient) Search(ctx context.Context, termID string) ([]TermDoc, error) {
	q := url.Values{}
	q.Set("q", strings.ReplaceAll(termID, ":", "_"))
	q.Set("rows", "100")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build ols request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ols search %s: %w", termID, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ols search %s: status %d", termID, resp.StatusCode)
	}
	var body olsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode ols response: %w", err)
	}
	return body.Response.Docs, nil
}
