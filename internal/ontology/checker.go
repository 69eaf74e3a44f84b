// Package ontology checks term identifiers and their human-readable labels
// against an ontology lookup service, memoizing lookups per checker instance.
package ontology

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sampleval/pkg/ruleset"
)

// TermDoc is one lookup entry for a term identifier.
type TermDoc struct {
	Label        string `json:"label"`
	OntologyName string `json:"ontology_name"`
}

// Lookup resolves a term identifier to its known entries.
type Lookup interface {
	Search(ctx context.Context, termID string) ([]TermDoc, error)
}

// Result is the outcome fragment of a single term check.
type Result struct {
	Errors   []string
	Warnings []string
}

// Checker validates terms through a Lookup, caching results for its own
// lifetime. The cache is append-only and safe for concurrent use; reusing a
// Checker across validation runs is a performance optimization, not a
// correctness requirement.
type Checker struct {
	lookup Lookup

	mu    sync.Mutex
	cache map[string][]TermDoc
}

// NewChecker wraps a Lookup with a per-instance memoization cache.
func NewChecker(lookup Lookup) *Checker {
	return &Checker{lookup: lookup, cache: make(map[string][]TermDoc)}
}

// Check verifies that termID is known and, when expectedLabel is supplied,
// that it matches the authoritative label. Sentinel term values bypass lookup.
// An unknown term is an error; a label mismatch is only a warning, since
// label drift is cosmetic rather than structural.
func (c *Checker) Check(ctx context.Context, termID, expectedOntology, expectedLabel string) Result {
	var res Result
	if termID == "" || ruleset.IsSentinel(termID) {
		return res
	}

	docs, err := c.fetch(ctx, termID)
	if err != nil || len(docs) == 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("Term %s not found", termID))
		return res
	}

	if expectedLabel == "" {
		return res
	}
	labels := make([]string, 0, len(docs))
	for _, doc := range docs {
		if expectedOntology != "" && strings.EqualFold(doc.OntologyName, expectedOntology) {
			labels = append(labels, strings.ToLower(doc.Label))
		}
	}
	if len(labels) == 0 {
		for _, doc := range docs {
			labels = append(labels, strings.ToLower(doc.Label))
		}
	}
	if !containsString(labels, strings.ToLower(expectedLabel)) {
		best := "unknown"
		if len(labels) > 0 {
			best = labels[0]
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Provided value '%s' doesn't precisely match '%s' for term '%s'",
			expectedLabel, best, termID))
	}
	return res
}

func (c *Checker) fetch(ctx context.Context, termID string) ([]TermDoc, error) {
	c.mu.Lock()
	docs, ok := c.cache[termID]
	c.mu.Unlock()
	if ok {
		return docs, nil
	}
	docs, err := c.lookup.Search(ctx, termID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[termID] = docs
	c.mu.Unlock()
	return docs, nil
}

func containsString(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
