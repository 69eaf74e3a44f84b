// Package ruleset describes, per sample kind, the fields a metadata record
// may carry: requirement tiers, allowed literal values, value patterns,
// expected ontologies and graph restrictions, and the relationship policy
// (allowed parent material types, species-to-breed-class links).
//
// Rulesets are configuration data consumed read-only by the validation
// engine; they can be loaded from JSON documents or taken from the built-ins
// in builtin.go.
package ruleset

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// Tier classifies how strongly a field is expected.
type Tier string

const (
	TierMandatory   Tier = "mandatory"
	TierRecommended Tier = "recommended"
	TierOptional    Tier = "optional"
)

// Kind describes a field's value shape.
type Kind string

const (
	// KindValue is a {value} or {value, units} object.
	KindValue Kind = "value"
	// KindOntology is a {text, term, ontology_name} object.
	KindOntology Kind = "ontology"
	// KindReference is a {value} object naming another sample.
	KindReference Kind = "reference"
)

// Sentinel values accepted in place of a real value for many fields; they
// always bypass ontology lookup and format checks.
var MissingValueSentinels = []string{
	"not applicable",
	"not collected",
	"not provided",
	"restricted access",
}

// IsSentinel reports whether v is a missing-value sentinel.
func IsSentinel(v string) bool {
	for _, s := range MissingValueSentinels {
		if v == s {
			return true
		}
	}
	return false
}

// SkipProperties are record keys handled outside per-field rules.
var SkipProperties = []string{"describedBy", "schema_version", "samples_core", "custom"}

// Ontology names an expected vocabulary for a term field, optionally with the
// root class of the allowed subtree.
type Ontology struct {
	Name      string `json:"name"`
	RootClass string `json:"root_class,omitempty"`
}

// Field is one field definition within a ruleset section.
type Field struct {
	Name       string     `json:"name"`
	Tier       Tier       `json:"tier"`
	Kind       Kind       `json:"kind"`
	Multiple   bool       `json:"multiple,omitempty"`
	Values     []string   `json:"values,omitempty"`      // allowed literal values / texts
	Units      []string   `json:"units,omitempty"`       // allowed units literals
	Pattern    string     `json:"pattern,omitempty"`     // regex constraint on value
	Ontologies []Ontology `json:"ontologies,omitempty"`  // expected vocabularies for term fields
	TermByText map[string]string `json:"term_by_text,omitempty"` // literal text -> required term

	pattern *regexp.Regexp
}

// MatchesPattern reports whether v satisfies the field's pattern. Fields
// without a pattern always match.
func (f *Field) MatchesPattern(v string) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(v)
}

// OntologyNames returns the lower-level vocabulary names, first one first.
func (f *Field) OntologyNames() []string {
	names := make([]string, 0, len(f.Ontologies))
	for _, o := range f.Ontologies {
		names = append(names, o.Name)
	}
	return names
}

// Ruleset is the full field policy for one sample kind.
type Ruleset struct {
	Kind       string  `json:"kind"`
	Fields     []Field `json:"fields"`      // type-level section, declaration order
	CoreFields []Field `json:"core_fields"` // samples_core section, declaration order

	// AllowedParentMaterials lists the material types a relationship
	// reference may point at for this kind.
	AllowedParentMaterials []string `json:"allowed_parent_materials,omitempty"`

	// BreedLinks maps a species term to the root class of its allowed breed
	// subtree. Species absent from the map carry no breed restriction.
	BreedLinks map[string]string `json:"breed_links,omitempty"`

	// ReferenceFields names the fields carrying relationship references, in
	// the order the relationship pass visits them.
	ReferenceFields []string `json:"reference_fields,omitempty"`
}

// Load reads and validates a ruleset document from JSON.
func Load(r io.Reader) (*Ruleset, error) {
	var rs Ruleset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode ruleset: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks the configuration for internal consistency and compiles
// field patterns. It is the only call-level error surface of the engine.
func (rs *Ruleset) Validate() error {
	if rs.Kind == "" {
		return fmt.Errorf("ruleset kind required")
	}
	sections := []struct {
		name   string
		fields []Field
	}{{"fields", rs.Fields}, {"core_fields", rs.CoreFields}}
	for _, sec := range sections {
		section, fields := sec.name, sec.fields
		seen := make(map[string]struct{}, len(fields))
		for i := range fields {
			f := &fields[i]
			if f.Name == "" {
				return fmt.Errorf("%s ruleset: empty field name in %s", rs.Kind, section)
			}
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("%s ruleset: duplicate field %q in %s", rs.Kind, f.Name, section)
			}
			seen[f.Name] = struct{}{}
			switch f.Tier {
			case TierMandatory, TierRecommended, TierOptional:
			default:
				return fmt.Errorf("%s ruleset: field %q has unknown tier %q", rs.Kind, f.Name, f.Tier)
			}
			switch f.Kind {
			case KindValue, KindOntology, KindReference:
			default:
				return fmt.Errorf("%s ruleset: field %q has unknown kind %q", rs.Kind, f.Name, f.Kind)
			}
			if f.Pattern != "" {
				re, err := regexp.Compile(f.Pattern)
				if err != nil {
					return fmt.Errorf("%s ruleset: field %q pattern: %w", rs.Kind, f.Name, err)
				}
				f.pattern = re
			}
		}
	}
	for _, name := range rs.ReferenceFields {
		if f := rs.FieldByName(name); f == nil || f.Kind != KindReference {
			return fmt.Errorf("%s ruleset: reference field %q not declared as a reference", rs.Kind, name)
		}
	}
	return nil
}

// FieldByName returns the type-level field definition, or nil.
func (rs *Ruleset) FieldByName(name string) *Field {
	for i := range rs.Fields {
		if rs.Fields[i].Name == name {
			return &rs.Fields[i]
		}
	}
	return nil
}

// CoreFieldByName returns the samples_core field definition, or nil.
func (rs *Ruleset) CoreFieldByName(name string) *Field {
	for i := range rs.CoreFields {
		if rs.CoreFields[i].Name == name {
			return &rs.CoreFields[i]
		}
	}
	return nil
}

// BreedRoot returns the breed subtree root for a species term; ok is false
// when the species has no registered restriction.
func (rs *Ruleset) BreedRoot(speciesTerm string) (string, bool) {
	root, ok := rs.BreedLinks[speciesTerm]
	return root, ok
}
