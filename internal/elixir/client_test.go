package elixir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidateNormalizesFindings(t *testing.T) {
	var received submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode submission: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"dataPath": "/organism/term", "errors": ["should have required property 'term'"]},
			{"dataPath": "", "instancePath": "/breed", "errors": ["should match pattern"]},
			{"dataPath": "/health_status[0]", "errors": ["should match exactly one schema in oneOf"]}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	findings := client.Validate(context.Background(),
		map[string]any{"organism": map[string]any{}},
		map[string]any{"type": "object"})

	if len(findings) != 2 {
		t.Fatalf("findings = %+v, want 2 after filtering", findings)
	}
	if findings[0].Path != "/organism/term" || findings[0].Messages[0] != "should have required property 'term'" {
		t.Fatalf("first finding = %+v", findings[0])
	}
	if findings[1].Path != "/breed" {
		t.Fatalf("instancePath fallback failed: %+v", findings[1])
	}

	if received.Schema["$schema"] != "http://json-schema.org/draft-07/schema#" {
		t.Fatalf("draft-07 marker missing: %v", received.Schema)
	}
	if received.Schema["type"] != "object" {
		t.Fatalf("schema body lost: %v", received.Schema)
	}
}

func TestValidateDoesNotMutateCallerSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	schema := map[string]any{"type": "string"}
	client := New(srv.URL, time.Second)
	client.Validate(context.Background(), "LBO:0000001", schema)
	if _, ok := schema["$schema"]; ok {
		t.Fatalf("caller schema mutated: %v", schema)
	}
}

func TestValidateKeepsExplicitDialect(t *testing.T) {
	var received submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	client.Validate(context.Background(), "x", map[string]any{
		"$schema": "http://json-schema.org/draft-04/schema#",
	})
	if received.Schema["$schema"] != "http://json-schema.org/draft-04/schema#" {
		t.Fatalf("explicit dialect overwritten: %v", received.Schema)
	}
}

func TestValidateSwallowsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	if findings := client.Validate(context.Background(), map[string]any{}, map[string]any{}); findings != nil {
		t.Fatalf("failure must yield no findings, got %+v", findings)
	}

	srv.Close()
	if findings := client.Validate(context.Background(), map[string]any{}, map[string]any{}); findings != nil {
		t.Fatalf("connection refusal must yield no findings, got %+v", findings)
	}
}

func TestValidateDropsEmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"dataPath": "/organism", "errors": []}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	if findings := client.Validate(context.Background(), map[string]any{}, map[string]any{}); len(findings) != 0 {
		t.Fatalf("empty message lists must be dropped, got %+v", findings)
	}
}
