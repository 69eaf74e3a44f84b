package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sampleval/internal/biosamples"
	"sampleval/pkg/fieldpath"
	"sampleval/pkg/outcome"
	"sampleval/pkg/ruleset"
)

// batchEntry carries one record through both passes of a batch validation.
type batchEntry struct {
	id         string
	rec        Record
	node       *outcome.Node
	structural bool // record passed the structural pass
}

// refStrings extracts the reference values of a relationship field, in
// declaration order. A single object counts as a one-element list; listShaped
// reports whether the raw value was a list, which decides whether paths carry
// an index.
func refStrings(raw any) (refs []string, listShaped bool) {
	switch t := raw.(type) {
	case map[string]any:
		if v, ok := t["value"].(string); ok {
			refs = append(refs, v)
		}
	case []any:
		listShaped = true
		for _, el := range t {
			obj, ok := el.(map[string]any)
			if !ok {
				refs = append(refs, "")
				continue
			}
			v, _ := obj["value"].(string)
			refs = append(refs, v)
		}
	}
	return refs, listShaped
}

// validateRelationships runs the second pass over the batch: reference
// existence, species consistency, allowed parent material, and mutual-parent
// detection. Only structurally valid records participate.
func (v *Validator) validateRelationships(ctx context.Context, entries []*batchEntry) {
	start := time.Now()

	local := make(map[string]*batchEntry, len(entries))
	for _, e := range entries {
		if e.structural {
			local[e.id] = e
		}
	}

	external := v.resolveExternal(ctx, entries, local)

	for _, e := range entries {
		if !e.structural {
			continue
		}
		for _, fieldName := range v.rules.ReferenceFields {
			refs, listShaped := refStrings(e.rec[fieldName])
			for i, target := range refs {
				path := fieldpath.Path{fieldpath.Field(fieldName)}
				if listShaped {
					path = path.Child(fieldpath.Index(i))
				}
				if target == "" || ruleset.IsSentinel(target) {
					continue
				}

				var parentSpecies, parentMaterial string
				parent, isLocal := local[target]
				if isLocal {
					parentSpecies = organismText(parent.rec)
					parentMaterial = localMaterial(parent.rec, v.rules.Kind)
				} else if lin, ok := external[target]; ok {
					parentSpecies = lin.Species
					parentMaterial = normalizeMaterial(lin.Material)
				} else {
					e.node.AttachError(path, fmt.Sprintf(
						"Relationships part: no entity '%s' found", target))
					continue
				}

				childSpecies := organismText(e.rec)
				if childSpecies != "" && parentSpecies != "" && childSpecies != parentSpecies {
					e.node.AttachError(path, fmt.Sprintf(
						"Relationships part: the specie of the child '%s' doesn't match the specie of the parent '%s'",
						childSpecies, parentSpecies))
				}

				if parentMaterial != "" && !containsString(v.rules.AllowedParentMaterials, parentMaterial) {
					e.node.AttachError(path, fmt.Sprintf(
						"Relationships part: referenced entity '%s' does not match condition 'should be %s'",
						target, strings.Join(v.rules.AllowedParentMaterials, " or ")))
				}

				if isLocal && v.listsAsParent(parent.rec, e.id) {
					e.node.AttachError(path, fmt.Sprintf(
						"Relationships part: parent '%s' is listing the child as its parent", target))
				}
			}
		}
	}

	v.metrics.Observe(ctx, "validate_relationships", true, time.Since(start))
}

// resolveExternal fetches every distinct accession-shaped reference that does
// not name a record of the batch, once each. Fetch failures leave the
// accession unresolved, which surfaces as the no-entity error downstream.
func (v *Validator) resolveExternal(ctx context.Context, entries []*batchEntry, local map[string]*batchEntry) map[string]biosamples.Lineage {
	resolved := make(map[string]biosamples.Lineage)
	if v.lineage == nil {
		return resolved
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.structural {
			continue
		}
		for _, fieldName := range v.rules.ReferenceFields {
			refs, _ := refStrings(e.rec[fieldName])
			for _, target := range refs {
				if target == "" || ruleset.IsSentinel(target) || seen[target] {
					continue
				}
				seen[target] = true
				if _, ok := local[target]; ok {
					continue
				}
				if !biosamples.IsAccession(target) {
					continue
				}
				lin, err := v.lineage.Fetch(ctx, target)
				if err != nil {
					v.log.Warn("accession resolution failed", "accession", target, "error", err)
					continue
				}
				resolved[target] = lin
			}
		}
	}
	return resolved
}

// listsAsParent reports whether the given record declares id among its own
// relationship references.
func (v *Validator) listsAsParent(rec Record, id string) bool {
	for _, fieldName := range v.rules.ReferenceFields {
		refs, _ := refStrings(rec[fieldName])
		for _, target := range refs {
			if target == id {
				return true
			}
		}
	}
	return false
}

func organismText(rec Record) string {
	if obj, ok := rec["organism"].(map[string]any); ok {
		if text, ok := obj["text"].(string); ok {
			return text
		}
	}
	return ""
}

// localMaterial reads the declared material of an in-batch record, falling
// back to the batch's sample kind when the core section does not carry one.
func localMaterial(rec Record, kind string) string {
	if core, ok := rec["samples_core"].(map[string]any); ok {
		if mat, ok := core["material"].(map[string]any); ok {
			if text, ok := mat["text"].(string); ok && text != "" {
				return normalizeMaterial(text)
			}
		}
	}
	return kind
}

func normalizeMaterial(raw string) string {
	return strings.ReplaceAll(strings.ToLower(raw), " ", "_")
}
