package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sampleval/internal/biosamples"
	"sampleval/pkg/outcome"
)

// Mode selects how batch records are identified: new submissions by their
// declared sample name, updates by their existing accession.
type Mode string

const (
	ModeNew    Mode = "new"
	ModeUpdate Mode = "update"
)

// Submission status strings reported on every batch.
const (
	StatusReady     = "Ready for submission"
	StatusFixIssues = "Fix issues"
)

// BatchReport is the result of one batch validation call.
type BatchReport struct {
	// ID uniquely names this validation run.
	ID string `json:"id"`
	// Kind is the sample kind of the ruleset the batch was validated
	// against.
	Kind string `json:"kind"`
	// Outcomes maps record identifiers to their outcome trees.
	Outcomes map[string]*outcome.Node `json:"outcomes"`
	// Order lists the identifiers in input order.
	Order []string `json:"order"`
	// BatchErrors are call-level findings not tied to any one record.
	BatchErrors []string `json:"batch_errors,omitempty"`
	// Status is StatusReady or StatusFixIssues.
	Status string `json:"status"`
}

// HasErrors reports whether any outcome or batch-level finding blocks
// submission.
func (r *BatchReport) HasErrors() bool {
	if len(r.BatchErrors) > 0 {
		return true
	}
	for _, node := range r.Outcomes {
		if node.HasErrors() {
			return true
		}
	}
	return false
}

// ValidateBatch runs both passes over the batch: per-record validation
// first, then relationship validation across the structurally valid records.
// The returned report carries one outcome tree per record, keyed by the
// record's identifier under the given mode.
func (v *Validator) ValidateBatch(ctx context.Context, records []Record, mode Mode) (*BatchReport, error) {
	switch mode {
	case ModeNew, ModeUpdate:
	default:
		return nil, fmt.Errorf("unknown batch mode %q", mode)
	}

	start := time.Now()
	report := &BatchReport{
		ID:       uuid.NewString(),
		Kind:     v.rules.Kind,
		Outcomes: make(map[string]*outcome.Node, len(records)),
	}
	v.log.Info("validating batch", "kind", v.rules.Kind, "mode", string(mode), "records", len(records))

	if mode == ModeUpdate {
		for i, rec := range records {
			id := v.recordIdentifier(rec, i, mode)
			if !biosamples.IsAccession(id) {
				report.BatchErrors = append(report.BatchErrors, fmt.Sprintf(
					"Record '%s' does not carry a valid accession and cannot be updated", id))
			}
		}
		if len(report.BatchErrors) > 0 {
			report.Status = StatusFixIssues
			v.metrics.Observe(ctx, "validate_batch", false, time.Since(start))
			return report, nil
		}
	}

	entries := make([]*batchEntry, 0, len(records))
	for i, rec := range records {
		id := v.recordIdentifier(rec, i, mode)
		node, ok := v.validateRecord(ctx, rec)
		if _, dup := report.Outcomes[id]; dup {
			node.AddWarning(fmt.Sprintf("Duplicate identifier '%s' in batch", id))
		} else {
			report.Order = append(report.Order, id)
		}
		report.Outcomes[id] = node
		entries = append(entries, &batchEntry{id: id, rec: rec, node: node, structural: ok})
	}

	v.validateRelationships(ctx, entries)

	report.Status = StatusReady
	if report.HasErrors() {
		report.Status = StatusFixIssues
	}
	v.log.Info("batch validated", "id", report.ID, "status", report.Status)
	v.metrics.Observe(ctx, "validate_batch", report.Status == StatusReady, time.Since(start))
	return report, nil
}

// recordIdentifier picks the identifier used to key a record's outcome: the
// declared sample name for new submissions, the accession for updates, then
// the alias field, then a positional fallback.
func (v *Validator) recordIdentifier(rec Record, index int, mode Mode) string {
	key := "sample_name"
	if mode == ModeUpdate {
		key = "biosample_id"
	}
	if custom, ok := rec["custom"].(map[string]any); ok {
		if obj, ok := custom[key].(map[string]any); ok {
			if id, ok := obj["value"].(string); ok && id != "" {
				return id
			}
		}
	}
	if obj, ok := rec["alias"].(map[string]any); ok {
		if id, ok := obj["value"].(string); ok && id != "" {
			return id
		}
	}
	return fmt.Sprintf("%s_%d", v.rules.Kind, index+1)
}
