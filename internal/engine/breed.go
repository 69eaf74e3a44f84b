package engine

import (
	"context"

	"sampleval/pkg/fieldpath"
	"sampleval/pkg/outcome"
)

// breedSentinels are accepted as breed values without any compatibility
// check.
var breedSentinels = map[string]bool{
	"not applicable":    true,
	"restricted access": true,
}

// checkBreedSpecies verifies that the declared breed term falls under the
// breed subtree registered for the declared species. Species without a
// registered subtree pass silently. The error lands on the species field,
// since the species claim is what the breed contradicts.
func (v *Validator) checkBreedSpecies(ctx context.Context, rec Record, node *outcome.Node) {
	if v.schemaVal == nil {
		return
	}
	speciesObj, ok := rec["organism"].(map[string]any)
	if !ok {
		return
	}
	speciesTerm, ok := speciesObj["term"].(string)
	if !ok || speciesTerm == "" {
		return
	}
	breedObj, ok := rec["breed"].(map[string]any)
	if !ok {
		return
	}
	breedTerm, ok := breedObj["term"].(string)
	if !ok || breedTerm == "" || breedSentinels[breedTerm] {
		return
	}
	if text, ok := breedObj["text"].(string); ok && breedSentinels[text] {
		return
	}

	root, ok := v.rules.BreedRoot(speciesTerm)
	if !ok {
		return
	}

	schema := map[string]any{
		"type": "string",
		"graph_restriction": map[string]any{
			"ontologies":   []any{"obo:lbo"},
			"classes":      []any{root},
			"relations":    []any{"rdfs:subClassOf"},
			"direct":       false,
			"include_self": true,
		},
	}
	findings := v.schemaVal.Validate(ctx, breedTerm, schema)
	if len(findings) > 0 {
		node.AttachError(fieldpath.Path{fieldpath.Field("organism")},
			"Breed doesn't match the animal species")
	}
}
