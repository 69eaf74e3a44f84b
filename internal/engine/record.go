package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sampleval/pkg/fieldpath"
	"sampleval/pkg/outcome"
	"sampleval/pkg/ruleset"
)

// section pairs one portion of a record with the field definitions that
// govern it. The type-level section sits at the record root, the core
// section under samples_core.
type section struct {
	prefix fieldpath.Path
	fields []ruleset.Field
	data   map[string]any
}

func (v *Validator) sections(rec Record) []section {
	out := []section{{fields: v.rules.Fields, data: rec}}
	if core, ok := rec["samples_core"].(map[string]any); ok {
		out = append(out, section{
			prefix: fieldpath.Path{fieldpath.Field("samples_core")},
			fields: v.rules.CoreFields,
			data:   core,
		})
	} else {
		// Core fields are still checked for presence against an empty
		// section so missing mandatory core fields surface.
		out = append(out, section{
			prefix: fieldpath.Path{fieldpath.Field("samples_core")},
			fields: v.rules.CoreFields,
			data:   map[string]any{},
		})
	}
	return out
}

// instance is one object-shaped occurrence of a field, with its path. A
// field declared multiple fans out to one instance per list element.
type instance struct {
	path fieldpath.Path
	obj  map[string]any
}

func instancesOf(base fieldpath.Path, raw any) []instance {
	switch t := raw.(type) {
	case map[string]any:
		return []instance{{path: base, obj: t}}
	case []any:
		out := make([]instance, 0, len(t))
		for i, el := range t {
			if obj, ok := el.(map[string]any); ok {
				out = append(out, instance{path: base.Child(fieldpath.Index(i)), obj: obj})
			}
		}
		return out
	default:
		return nil
	}
}

// ValidateRecord runs every per-record pass and returns the outcome tree
// mirroring the record's shape. Structural violations are terminal: when any
// are found, no further pass runs and no collaborator is called.
func (v *Validator) ValidateRecord(ctx context.Context, rec Record) *outcome.Node {
	node, _ := v.validateRecord(ctx, rec)
	return node
}

func (v *Validator) validateRecord(ctx context.Context, rec Record) (*outcome.Node, bool) {
	start := time.Now()
	node := outcome.FromRecord(rec)

	ok := v.checkStructure(rec, node)
	if ok {
		v.checkDates(rec, node)
		v.checkRecommended(rec, node)
		v.checkMissingValues(rec, node)
		v.checkTerms(ctx, rec, node)
		v.checkBreedSpecies(ctx, rec, node)
		v.checkExternalSchema(ctx, rec, node)
	}

	v.metrics.Observe(ctx, "validate_record", !node.HasErrors(), time.Since(start))
	return node, ok
}

// checkStructure enforces the closed-schema shape of the record: every
// mandatory field present and non-null, no unrecognised fields or keys,
// enumerations and patterns respected. It reports every violation found, in
// field-declaration order, and returns false if any were found.
func (v *Validator) checkStructure(rec Record, node *outcome.Node) bool {
	clean := true
	report := func(path fieldpath.Path, msg string) {
		node.Ensure(path).AddError(msg)
		clean = false
	}

	for name := range rec {
		if isSkipProperty(name) {
			continue
		}
		if v.rules.FieldByName(name) == nil {
			report(fieldpath.Path{fieldpath.Field(name)}, "Unknown field is not allowed")
		}
	}
	if raw, present := rec["samples_core"]; present {
		if core, ok := raw.(map[string]any); ok {
			for name := range core {
				if isSkipProperty(name) {
					continue
				}
				if v.rules.CoreFieldByName(name) == nil {
					path := fieldpath.Path{fieldpath.Field("samples_core"), fieldpath.Field(name)}
					report(path, "Unknown field is not allowed")
				}
			}
		} else {
			report(fieldpath.Path{fieldpath.Field("samples_core")}, "Value should be an object")
		}
	}
	if raw, present := rec["custom"]; present {
		if _, ok := raw.(map[string]any); !ok {
			report(fieldpath.Path{fieldpath.Field("custom")}, "Value should be an object")
		}
	}

	for _, sec := range v.sections(rec) {
		for i := range sec.fields {
			f := &sec.fields[i]
			base := sec.prefix.Child(fieldpath.Field(f.Name))
			raw, present := sec.data[f.Name]
			if !present || raw == nil {
				if f.Tier == ruleset.TierMandatory {
					report(base, "This item is mandatory but was not provided")
				}
				continue
			}
			switch t := raw.(type) {
			case []any:
				if !f.Multiple {
					report(base, "Value should be an object, not a list")
					continue
				}
				// An empty list is a valid way to declare no entries.
				for i, el := range t {
					obj, isObj := el.(map[string]any)
					if !isObj {
						report(base.Child(fieldpath.Index(i)), "Value should be an object")
						continue
					}
					v.checkFieldObject(f, instance{path: base.Child(fieldpath.Index(i)), obj: obj}, report)
				}
			case map[string]any:
				v.checkFieldObject(f, instance{path: base, obj: t}, report)
			default:
				report(base, "Value should be an object")
			}
		}
	}
	return clean
}

func (v *Validator) checkFieldObject(f *ruleset.Field, inst instance, report func(fieldpath.Path, string)) {
	allowed := allowedKeys(f.Kind)
	for key := range inst.obj {
		if _, ok := allowed[key]; !ok {
			report(inst.path, fmt.Sprintf("Unrecognised key '%s'", key))
		}
	}

	switch f.Kind {
	case ruleset.KindOntology:
		text, hasText := stringAt(inst.obj, "text")
		term, hasTerm := stringAt(inst.obj, "term")
		if !hasText {
			report(inst.path, "Required property 'text' is missing")
			return
		}
		if !hasTerm && !ruleset.IsSentinel(text) {
			report(inst.path, "Required property 'term' is missing")
		}
		if ruleset.IsSentinel(text) {
			return
		}
		if len(f.Values) > 0 && !containsString(f.Values, text) {
			report(inst.path, fmt.Sprintf("Value '%s' is not one of the allowed values", text))
		}
		if expected, ok := f.TermByText[text]; ok && hasTerm && term != expected {
			report(inst.path, fmt.Sprintf("Term '%s' does not correspond to text '%s'", term, text))
		}
	default:
		raw, hasValue := inst.obj["value"]
		if !hasValue || raw == nil {
			report(inst.path, "Required property 'value' is missing")
			return
		}
		value, isString := raw.(string)
		if isString && ruleset.IsSentinel(value) {
			return
		}
		if isString {
			if len(f.Values) > 0 && !containsString(f.Values, value) {
				report(inst.path, fmt.Sprintf("Value '%s' is not one of the allowed values", value))
			}
			if !f.MatchesPattern(value) {
				report(inst.path, fmt.Sprintf("Value '%s' does not match the expected pattern", value))
			}
		}
		if units, hasUnits := stringAt(inst.obj, "units"); hasUnits && len(f.Units) > 0 {
			if !ruleset.IsSentinel(units) && !containsString(f.Units, units) {
				report(inst.path, fmt.Sprintf("Units '%s' are not one of the allowed units", units))
			}
		}
	}
}

var dateLayouts = map[string]string{
	"YYYY-MM-DD": "2006-01-02",
	"YYYY-MM":    "2006-01",
	"YYYY":       "2006",
}

// checkDates verifies that each date-bearing {value, units} field parses
// under the calendar format its units declare. The regex shape alone is not
// enough: 2020-02-30 matches the pattern but is not a real date.
func (v *Validator) checkDates(rec Record, node *outcome.Node) {
	for _, sec := range v.sections(rec) {
		for i := range sec.fields {
			f := &sec.fields[i]
			if f.Kind != ruleset.KindValue || !strings.Contains(f.Name, "date") {
				continue
			}
			base := sec.prefix.Child(fieldpath.Field(f.Name))
			for _, inst := range instancesOf(base, sec.data[f.Name]) {
				value, okV := stringAt(inst.obj, "value")
				units, okU := stringAt(inst.obj, "units")
				if !okV || !okU || ruleset.IsSentinel(value) {
					continue
				}
				layout, known := dateLayouts[units]
				if !known {
					continue
				}
				if _, err := time.Parse(layout, value); err != nil {
					node.AttachError(inst.path, fmt.Sprintf(
						"Date units: %s should be consistent with date value: %s", units, value))
				}
			}
		}
	}
}

func (v *Validator) checkRecommended(rec Record, node *outcome.Node) {
	for _, sec := range v.sections(rec) {
		for i := range sec.fields {
			f := &sec.fields[i]
			if f.Tier != ruleset.TierRecommended {
				continue
			}
			if raw, present := sec.data[f.Name]; !present || raw == nil {
				path := sec.prefix.Child(fieldpath.Field(f.Name))
				node.Ensure(path).AddWarning("This item is recommended but was not provided")
			}
		}
	}
}

// checkMissingValues applies the tier policy for missing-value sentinels:
// mandatory fields reject them, recommended fields warn, optional fields
// accept them silently.
func (v *Validator) checkMissingValues(rec Record, node *outcome.Node) {
	for _, sec := range v.sections(rec) {
		for i := range sec.fields {
			f := &sec.fields[i]
			if f.Tier == ruleset.TierOptional {
				continue
			}
			base := sec.prefix.Child(fieldpath.Field(f.Name))
			for _, inst := range instancesOf(base, sec.data[f.Name]) {
				value, ok := stringAt(inst.obj, "value")
				if !ok {
					value, ok = stringAt(inst.obj, "text")
				}
				if !ok || !ruleset.IsSentinel(value) {
					continue
				}
				switch f.Tier {
				case ruleset.TierMandatory:
					node.AttachError(inst.path, fmt.Sprintf(
						"Field '%s' contains missing value that is not appropriate for this field", f.Name))
				case ruleset.TierRecommended:
					node.AttachWarning(inst.path, fmt.Sprintf(
						"Field '%s' contains missing value that may not be appropriate for this field", f.Name))
				}
			}
		}
	}
}

// checkTerms routes every {term, text} pair through the term checker,
// including pairs inside the custom section, which carry no expected
// ontology.
func (v *Validator) checkTerms(ctx context.Context, rec Record, node *outcome.Node) {
	if v.terms == nil {
		return
	}
	for _, sec := range v.sections(rec) {
		for i := range sec.fields {
			f := &sec.fields[i]
			expected := ""
			if names := f.OntologyNames(); len(names) > 0 {
				expected = names[0]
			}
			base := sec.prefix.Child(fieldpath.Field(f.Name))
			for _, inst := range instancesOf(base, sec.data[f.Name]) {
				v.checkTermPair(ctx, inst, expected, node)
			}
		}
	}
	if custom, ok := rec["custom"].(map[string]any); ok {
		for name, raw := range custom {
			base := fieldpath.Path{fieldpath.Field("custom"), fieldpath.Field(name)}
			for _, inst := range instancesOf(base, raw) {
				v.checkTermPair(ctx, inst, "", node)
			}
		}
	}
}

func (v *Validator) checkTermPair(ctx context.Context, inst instance, expectedOntology string, node *outcome.Node) {
	term, okTerm := stringAt(inst.obj, "term")
	text, okText := stringAt(inst.obj, "text")
	if !okTerm || !okText {
		return
	}
	res := v.terms.Check(ctx, term, expectedOntology, text)
	for _, msg := range res.Errors {
		node.AttachError(inst.path, msg)
	}
	for _, msg := range res.Warnings {
		node.AttachWarning(inst.path, msg)
	}
}

// checkExternalSchema sends the full record through the external validator
// and merges its findings by path. Findings whose path does not resolve in
// the outcome tree are dropped.
func (v *Validator) checkExternalSchema(ctx context.Context, rec Record, node *outcome.Node) {
	if v.schemaVal == nil || v.schema == nil {
		return
	}
	for _, finding := range v.schemaVal.Validate(ctx, rec, v.schema) {
		path := parseFindingPath(finding.Path)
		for _, msg := range finding.Messages {
			node.AttachError(path, msg)
		}
	}
}

// parseFindingPath normalizes the two path notations the external validator
// emits into one canonical form.
func parseFindingPath(raw string) fieldpath.Path {
	if strings.Contains(raw, "/") {
		return fieldpath.ParseSlash(raw)
	}
	return fieldpath.ParseDot(raw)
}

func allowedKeys(k ruleset.Kind) map[string]struct{} {
	switch k {
	case ruleset.KindOntology:
		return map[string]struct{}{"text": {}, "term": {}, "ontology_name": {}}
	default:
		return map[string]struct{}{"value": {}, "units": {}}
	}
}

func isSkipProperty(name string) bool {
	return containsString(ruleset.SkipProperties, name)
}

func containsString(list []string, v string) bool {
	for _, el := range list {
		if el == v {
			return true
		}
	}
	return false
}

func stringAt(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok && s != ""
}
