package ontology

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOLSClientSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"docs":[
			{"label":"Bos taurus","ontology_name":"ncbitaxon"},
			{"label":"cattle","ontology_name":"efo"}
		]}}`))
	}))
	defer srv.Close()

	client := NewOLSClient(srv.URL, time.Second)
	docs, err := client.Search(context.Background(), "NCBITaxon:9913")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != "NCBITaxon_9913" {
		t.Fatalf("query = %q, want colons underscored", gotQuery)
	}
	if len(docs) != 2 || docs[0].Label != "Bos taurus" || docs[0].OntologyName != "ncbitaxon" {
		t.Fatalf("unexpected docs %+v", docs)
	}
}

func TestOLSClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewOLSClient(srv.URL, time.Second)
	if _, err := client.Search(context.Background(), "PATO:0000384"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
