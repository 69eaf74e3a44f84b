// Package engine implements the multi-pass batch validation flow: per-record
// structural and semantic validation, then relationship validation between
// the records of a batch, merged into one report keyed by field path.
package engine

import (
	"context"

	"sampleval/internal/biosamples"
	"sampleval/internal/elixir"
	"sampleval/internal/ontology"
	"sampleval/internal/telemetry"
	"sampleval/pkg/ruleset"
)

// Record is one decoded sample metadata document.
type Record = map[string]any

// TermChecker verifies ontology term identifiers and labels.
type TermChecker interface {
	Check(ctx context.Context, termID, expectedOntology, expectedLabel string) ontology.Result
}

// SchemaValidator submits an object and schema to the external validator
// service. Implementations swallow transport failures and return no findings.
type SchemaValidator interface {
	Validate(ctx context.Context, object any, schema map[string]any) []elixir.Finding
}

// LineageResolver fetches the projection of an externally accessioned sample.
type LineageResolver interface {
	Fetch(ctx context.Context, accession string) (biosamples.Lineage, error)
}

// Validator validates records of one sample kind against its ruleset and the
// configured collaborators. All collaborators are optional: a Validator with
// none wired still performs the full local rule surface.
type Validator struct {
	rules  *ruleset.Ruleset
	schema map[string]any // governing JSON schema for the external pass

	terms     TermChecker
	schemaVal SchemaValidator
	lineage   LineageResolver

	log     telemetry.Logger
	metrics telemetry.MetricsRecorder
}

// Option configures a Validator.
type Option func(*Validator)

// WithTermChecker wires the ontology consistency pass.
func WithTermChecker(t TermChecker) Option {
	return func(v *Validator) { v.terms = t }
}

// WithSchemaValidator wires the external schema validation pass and the
// breed graph-restriction check.
func WithSchemaValidator(s SchemaValidator) Option {
	return func(v *Validator) { v.schemaVal = s }
}

// WithSchema sets the governing JSON schema submitted alongside each record
// in the external pass.
func WithSchema(schema map[string]any) Option {
	return func(v *Validator) { v.schema = schema }
}

// WithLineageResolver wires resolution of relationship references that point
// outside the batch.
func WithLineageResolver(r LineageResolver) Option {
	return func(v *Validator) { v.lineage = r }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l telemetry.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// WithMetrics sets the metrics recorder; the default discards everything.
func WithMetrics(m telemetry.MetricsRecorder) Option {
	return func(v *Validator) {
		if m != nil {
			v.metrics = m
		}
	}
}

// New constructs a Validator for the given ruleset.
func New(rules *ruleset.Ruleset, opts ...Option) (*Validator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	v := &Validator{
		rules:   rules,
		log:     telemetry.NopLogger{},
		metrics: telemetry.NopMetrics{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}
