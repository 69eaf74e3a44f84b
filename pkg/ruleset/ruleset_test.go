package ruleset

import (
	"strings"
	"testing"
)

func TestBuiltinRulesetsValidate(t *testing.T) {
	for _, rs := range []*Ruleset{Organism(), Organoid()} {
		if err := rs.Validate(); err != nil {
			t.Fatalf("%s ruleset invalid: %v", rs.Kind, err)
		}
	}
}

func TestFieldLookup(t *testing.T) {
	rs := Organism()
	if f := rs.FieldByName("organism"); f == nil || f.Tier != TierMandatory {
		t.Fatalf("organism field lookup failed: %+v", f)
	}
	if f := rs.FieldByName("no_such_field"); f != nil {
		t.Fatalf("unexpected field %+v", f)
	}
	if f := rs.CoreFieldByName("material"); f == nil || f.Kind != KindOntology {
		t.Fatalf("material core field lookup failed: %+v", f)
	}
}

func TestIsSentinel(t *testing.T) {
	for _, v := range MissingValueSentinels {
		if !IsSentinel(v) {
			t.Fatalf("%q should be a sentinel", v)
		}
	}
	for _, v := range []string{"", "Bos taurus", "Not Applicable"} {
		if IsSentinel(v) {
			t.Fatalf("%q should not be a sentinel", v)
		}
	}
}

func TestDatePattern(t *testing.T) {
	f := Organism().FieldByName("birth_date")
	if f == nil {
		t.Fatalf("birth_date missing")
	}
	for _, ok := range []string{"2020-02-30", "2021-03", "1999"} {
		if !f.MatchesPattern(ok) {
			t.Fatalf("%q should match the date shape", ok)
		}
	}
	for _, bad := range []string{"20-01-01", "2020-13-01", "2020-01-32", "March 2020"} {
		if f.MatchesPattern(bad) {
			t.Fatalf("%q should not match the date shape", bad)
		}
	}
}

func TestBreedRoot(t *testing.T) {
	rs := Organism()
	root, ok := rs.BreedRoot("NCBITaxon:9913")
	if !ok || root != "LBO:0000001" {
		t.Fatalf("cattle breed root = %q, %v", root, ok)
	}
	if _, ok := rs.BreedRoot("NCBITaxon:7227"); ok {
		t.Fatalf("species without a link must report no root")
	}
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", `{"kind":"organism","flavor":"x"}`, "decode ruleset"},
		{"dup field", `{"kind":"organism","fields":[{"name":"a","tier":"optional","kind":"value"},{"name":"a","tier":"optional","kind":"value"}]}`, "duplicate"},
		{"bad tier", `{"kind":"organism","fields":[{"name":"a","tier":"sometimes","kind":"value"}]}`, "tier"},
		{"bad pattern", `{"kind":"organism","fields":[{"name":"a","tier":"optional","kind":"value","pattern":"["}]}`, "pattern"},
		{"reference mismatch", `{"kind":"organism","fields":[{"name":"a","tier":"optional","kind":"value"}],"reference_fields":["a"]}`, "reference"},
	}
	for _, tc := range cases {
		_, err := Load(strings.NewReader(tc.doc))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(strings.ToLower(err.Error()), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestLoadRoundTrip(t *testing.T) {
	doc := `{
		"kind": "organism",
		"fields": [
			{"name": "organism", "tier": "mandatory", "kind": "ontology", "ontologies": [{"name": "NCBITaxon"}]},
			{"name": "child_of", "tier": "optional", "kind": "reference", "multiple": true}
		],
		"allowed_parent_materials": ["organism"],
		"reference_fields": ["child_of"]
	}`
	rs, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rs.FieldByName("child_of") == nil {
		t.Fatalf("child_of missing after load")
	}
	if got := rs.FieldByName("organism").OntologyNames(); len(got) != 1 || got[0] != "NCBITaxon" {
		t.Fatalf("ontology names = %v", got)
	}
}
