package ontology

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeLookup struct {
	docs  map[string][]TermDoc
	err   error
	calls int
}

func (f *fakeLookup) Search(_ context.Context, termID string) ([]TermDoc, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[termID], nil
}

func TestCheckSentinelBypassesLookup(t *testing.T) {
	lookup := &fakeLookup{}
	checker := NewChecker(lookup)
	for _, v := range []string{"restricted access", "not applicable", "not collected", "not provided", ""} {
		res := checker.Check(context.Background(), v, "PATO", "whatever")
		if len(res.Errors) != 0 || len(res.Warnings) != 0 {
			t.Fatalf("sentinel %q produced findings: %+v", v, res)
		}
	}
	if lookup.calls != 0 {
		t.Fatalf("sentinels must not reach the lookup (%d calls)", lookup.calls)
	}
}

func TestCheckUnknownTerm(t *testing.T) {
	checker := NewChecker(&fakeLookup{docs: map[string][]TermDoc{}})
	res := checker.Check(context.Background(), "PATO:9999999", "PATO", "odd")
	want := []string{"Term PATO:9999999 not found"}
	if !reflect.DeepEqual(res.Errors, want) {
		t.Fatalf("errors = %v, want %v", res.Errors, want)
	}
}

func TestCheckLookupFailureIsNotFound(t *testing.T) {
	checker := NewChecker(&fakeLookup{err: errors.New("connection refused")})
	res := checker.Check(context.Background(), "PATO:0000384", "PATO", "male")
	if len(res.Errors) != 1 || res.Errors[0] != "Term PATO:0000384 not found" {
		t.Fatalf("errors = %v", res.Errors)
	}
}

func TestCheckLabelMatch(t *testing.T) {
	lookup := &fakeLookup{docs: map[string][]TermDoc{
		"PATO:0000384": {
			{Label: "male", OntologyName: "pato"},
			{Label: "male organism", OntologyName: "efo"},
		},
	}}
	checker := NewChecker(lookup)

	res := checker.Check(context.Background(), "PATO:0000384", "PATO", "Male")
	if len(res.Errors) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("case-insensitive match produced findings: %+v", res)
	}

	res = checker.Check(context.Background(), "PATO:0000384", "PATO", "masculine")
	want := "Provided value 'masculine' doesn't precisely match 'male' for term 'PATO:0000384'"
	if len(res.Warnings) != 1 || res.Warnings[0] != want {
		t.Fatalf("warnings = %v, want %q", res.Warnings, want)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("label drift must be a warning, got errors %v", res.Errors)
	}
}

func TestCheckFallsBackToAllOntologies(t *testing.T) {
	lookup := &fakeLookup{docs: map[string][]TermDoc{
		"BTO:0000042": {{Label: "liver", OntologyName: "bto"}},
	}}
	checker := NewChecker(lookup)
	res := checker.Check(context.Background(), "BTO:0000042", "UBERON", "liver")
	if len(res.Errors) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("fallback label set should match: %+v", res)
	}
}

func TestCheckMemoizesPerTerm(t *testing.T) {
	lookup := &fakeLookup{docs: map[string][]TermDoc{
		"NCBITaxon:9913": {{Label: "Bos taurus", OntologyName: "ncbitaxon"}},
	}}
	checker := NewChecker(lookup)
	for i := 0; i < 5; i++ {
		checker.Check(context.Background(), "NCBITaxon:9913", "NCBITaxon", "Bos taurus")
	}
	if lookup.calls != 1 {
		t.Fatalf("expected a single lookup, got %d", lookup.calls)
	}
}

func TestCheckIdempotent(t *testing.T) {
	lookup := &fakeLookup{docs: map[string][]TermDoc{
		"LBO:0000002": {{Label: "chicken breed", OntologyName: "lbo"}},
	}}
	checker := NewChecker(lookup)
	first := checker.Check(context.Background(), "LBO:0000002", "LBO", "poultry breed")
	second := checker.Check(context.Background(), "LBO:0000002", "LBO", "poultry breed")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated checks diverged: %+v vs %+v", first, second)
	}
}
