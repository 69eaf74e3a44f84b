package ruleset

// Built-in rulesets for the FAANG sample kinds. These mirror the published
// metadata rules: organism and sex are mandatory, birth_date, breed and
// health_status are recommended, everything else is optional. The samples
// core section is shared between kinds.

const datePattern = `^[12]\d{3}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$|^[12]\d{3}-(0[1-9]|1[0-2])$|^[12]\d{3}$`

var dateUnits = []string{"YYYY-MM-DD", "YYYY-MM", "YYYY", "not applicable", "not collected", "not provided", "restricted access"}

var materialTermByText = map[string]string{
	"organism":               "OBI:0100026",
	"specimen from organism": "OBI:0001479",
	"cell specimen":          "OBI:0001468",
	"single cell specimen":   "OBI:0002127",
	"pool of specimens":      "OBI:0302716",
	"cell culture":           "OBI:0001876",
	"cell line":              "CLO:0000031",
	"organoid":               "NCIT:C172259",
	"restricted access":      "restricted access",
}

func coreFields() []Field {
	return []Field{
		{Name: "sample_description", Tier: TierOptional, Kind: KindValue},
		{
			Name: "material", Tier: TierMandatory, Kind: KindOntology,
			Values: []string{
				"organism", "specimen from organism", "cell specimen",
				"single cell specimen", "pool of specimens", "cell culture",
				"cell line", "organoid", "restricted access",
			},
			TermByText: materialTermByText,
			Ontologies: []Ontology{{Name: "OBI"}},
		},
		{Name: "project", Tier: TierMandatory, Kind: KindValue, Values: []string{"FAANG"}},
		{
			Name: "secondary_project", Tier: TierOptional, Kind: KindValue, Multiple: true,
			Values: []string{
				"AQUA-FAANG", "BovReg", "GENE-SWitCH", "Bovine-FAANG", "EFFICACE",
				"GEroNIMO", "RUMIGEN", "Equine-FAANG", "Holoruminant", "USPIGFAANG",
			},
		},
		{Name: "availability", Tier: TierOptional, Kind: KindValue},
		{Name: "same_as", Tier: TierOptional, Kind: KindValue},
	}
}

// Organism returns the built-in ruleset for organism samples.
func Organism() *Ruleset {
	rs := &Ruleset{
		Kind: "organism",
		Fields: []Field{
			{
				Name: "organism", Tier: TierMandatory, Kind: KindOntology,
				Ontologies: []Ontology{{Name: "NCBITaxon", RootClass: "NCBITaxon:1"}},
			},
			{
				Name: "sex", Tier: TierMandatory, Kind: KindOntology,
				Ontologies: []Ontology{{Name: "PATO", RootClass: "PATO:0000047"}},
			},
			{Name: "birth_date", Tier: TierRecommended, Kind: KindValue, Units: dateUnits, Pattern: datePattern},
			{
				Name: "breed", Tier: TierRecommended, Kind: KindOntology,
				Ontologies: []Ontology{{Name: "LBO", RootClass: "LBO:0000000"}},
			},
			{
				Name: "health_status", Tier: TierRecommended, Kind: KindOntology, Multiple: true,
				Ontologies: []Ontology{{Name: "PATO", RootClass: "PATO:0000461"}, {Name: "EFO", RootClass: "EFO:0000408"}},
			},
			{Name: "diet", Tier: TierOptional, Kind: KindValue},
			{Name: "birth_location", Tier: TierOptional, Kind: KindValue},
			{Name: "birth_location_latitude", Tier: TierOptional, Kind: KindValue, Units: []string{"decimal degrees"}},
			{Name: "birth_location_longitude", Tier: TierOptional, Kind: KindValue, Units: []string{"decimal degrees"}},
			{Name: "birth_weight", Tier: TierOptional, Kind: KindValue, Units: []string{"kilograms", "grams"}},
			{Name: "placental_weight", Tier: TierOptional, Kind: KindValue, Units: []string{"kilograms", "grams"}},
			{Name: "pregnancy_length", Tier: TierOptional, Kind: KindValue, Units: []string{"days", "weeks", "months", "day", "week", "month"}},
			{
				Name: "delivery_timing", Tier: TierOptional, Kind: KindValue,
				Values: []string{"early parturition", "full-term parturition", "delayed parturition"},
			},
			{
				Name: "delivery_ease", Tier: TierOptional, Kind: KindValue,
				Values: []string{"normal autonomous delivery", "c-section", "veterinarian assisted"},
			},
			{Name: "pedigree", Tier: TierOptional, Kind: KindValue},
			{Name: "child_of", Tier: TierOptional, Kind: KindReference, Multiple: true},
		},
		CoreFields:             coreFields(),
		AllowedParentMaterials: []string{"organism"},
		BreedLinks: map[string]string{
			"NCBITaxon:89462": "LBO:0001042", // water buffalo
			"NCBITaxon:9913":  "LBO:0000001", // cattle
			"NCBITaxon:9031":  "LBO:0000002", // chicken
			"NCBITaxon:9925":  "LBO:0000954", // goat
			"NCBITaxon:9796":  "LBO:0000713", // horse
			"NCBITaxon:9823":  "LBO:0000003", // pig
			"NCBITaxon:9940":  "LBO:0000004", // sheep
		},
		ReferenceFields: []string{"child_of"},
	}
	if err := rs.Validate(); err != nil {
		panic(err)
	}
	return rs
}

// Organoid returns the built-in ruleset for organoid samples.
func Organoid() *Ruleset {
	rs := &Ruleset{
		Kind: "organoid",
		Fields: []Field{
			{
				Name: "organ", Tier: TierMandatory, Kind: KindOntology,
				Ontologies: []Ontology{{Name: "UBERON", RootClass: "UBERON:0000062"}, {Name: "BTO"}},
			},
			{
				Name: "organ_part", Tier: TierRecommended, Kind: KindOntology,
				Ontologies: []Ontology{{Name: "UBERON"}, {Name: "BTO"}},
			},
			{Name: "freezing_date", Tier: TierOptional, Kind: KindValue, Units: dateUnits, Pattern: datePattern},
			{
				Name: "freezing_method", Tier: TierOptional, Kind: KindValue,
				Values: []string{
					"ambient temperature", "cut slide", "fresh", "frozen, -70 freezer",
					"frozen, -150 freezer", "frozen, liquid nitrogen", "frozen, vapor phase",
					"paraffin block", "RNAlater, frozen", "TRIzol, frozen",
				},
			},
			{Name: "freezing_protocol", Tier: TierOptional, Kind: KindValue},
			{Name: "number_of_frozen_cells", Tier: TierOptional, Kind: KindValue, Units: []string{"organoids"}},
			{Name: "organoid_passage", Tier: TierMandatory, Kind: KindValue, Units: []string{"passages"}},
			{Name: "organoid_passage_protocol", Tier: TierMandatory, Kind: KindValue},
			{Name: "organoid_culture_and_passage_protocol", Tier: TierRecommended, Kind: KindValue},
			{Name: "growth_environment", Tier: TierMandatory, Kind: KindValue, Values: []string{"matrigel", "liquid suspension", "adherent"}},
			{Name: "type_of_organoid_culture", Tier: TierRecommended, Kind: KindValue, Values: []string{"2D", "3D"}},
			{Name: "organoid_morphology", Tier: TierOptional, Kind: KindValue},
			{Name: "derived_from", Tier: TierMandatory, Kind: KindReference},
		},
		CoreFields:             coreFields(),
		AllowedParentMaterials: []string{"specimen_from_organism", "organoid"},
		ReferenceFields:        []string{"derived_from"},
	}
	if err := rs.Validate(); err != nil {
		panic(err)
	}
	return rs
}
