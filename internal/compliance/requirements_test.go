package compliance

import (
	"reflect"
	"sort"
	"testing"
)

// stubSource is an in-test rule source.
type stubSource map[string]RuleSet

func (s stubSource) RuleSet(code string) (RuleSet, bool) {
	rs, ok := s[code]
	return rs, ok
}

func testSource() stubSource {
	return stubSource{
		"GA": {
			Code:                  "GA",
			RequiredFields:        []string{"patient_demographics", "physician_orders", "care_plan"},
			DocumentationTypes:    []string{"visit_note", "care_plan"},
			VisitFrequencies:      []string{"weekly", "monthly"},
			SignatureRequirements: []string{"nurse", "physician"},
			SpecialRequirements:   []string{"medicaid_prior_authorization"},
		},
		"FL": {
			Code:                  "FL",
			RequiredFields:        []string{"patient_demographics", "medication_list"},
			DocumentationTypes:    []string{"visit_note", "medication_review"},
			VisitFrequencies:      []string{"daily", "weekly"},
			SignatureRequirements: []string{"nurse", "supervisor"},
			SpecialRequirements:   []string{},
		},
		"SC": {
			Code:                  "SC",
			RequiredFields:        []string{"patient_demographics", "care_plan"},
			DocumentationTypes:    []string{"visit_note"},
			VisitFrequencies:      []string{"weekly"},
			SignatureRequirements: []string{"nurse"},
		},
	}
}

func sorted(list []string) []string {
	out := append([]string{}, list...)
	sort.Strings(out)
	return out
}

func TestMergedRequirementsUnion(t *testing.T) {
	engine := NewEngine(testSource())

	merged := engine.MergedRequirements([]string{"GA", "FL"})

	wantFields := []string{"care_plan", "medication_list", "patient_demographics", "physician_orders"}
	if got := sorted(merged.RequiredFields); !reflect.DeepEqual(got, wantFields) {
		t.Errorf("required fields = %v, want %v", got, wantFields)
	}

	wantTypes := []string{"care_plan", "medication_review", "visit_note"}
	if got := sorted(merged.DocumentationTypes); !reflect.DeepEqual(got, wantTypes) {
		t.Errorf("documentation types = %v, want %v", got, wantTypes)
	}

	wantSigs := []string{"nurse", "physician", "supervisor"}
	if got := sorted(merged.SignatureRequirements); !reflect.DeepEqual(got, wantSigs) {
		t.Errorf("signature requirements = %v, want %v", got, wantSigs)
	}
}

func TestMergedRequirementsOrderIndependent(t *testing.T) {
	engine := NewEngine(testSource())

	a := engine.MergedRequirements([]string{"GA", "FL", "SC"})
	b := engine.MergedRequirements([]string{"SC", "FL", "GA"})

	if !reflect.DeepEqual(sorted(a.RequiredFields), sorted(b.RequiredFields)) {
		t.Errorf("required fields differ by input order: %v vs %v", a.RequiredFields, b.RequiredFields)
	}
	if !reflect.DeepEqual(sorted(a.VisitFrequencies), sorted(b.VisitFrequencies)) {
		t.Errorf("visit frequencies differ by input order: %v vs %v", a.VisitFrequencies, b.VisitFrequencies)
	}
}

func TestMergedRequirementsIdempotent(t *testing.T) {
	engine := NewEngine(testSource())

	first := engine.MergedRequirements([]string{"GA", "SC"})
	second := engine.MergedRequirements([]string{"GA", "SC"})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merging twice differs: %+v vs %+v", first, second)
	}
}

func TestMergedRequirementsMonotonic(t *testing.T) {
	engine := NewEngine(testSource())

	base := engine.MergedRequirements([]string{"GA"})
	grown := engine.MergedRequirements([]string{"GA", "FL"})

	for _, field := range base.RequiredFields {
		if !contains(grown.RequiredFields, field) {
			t.Errorf("adding a jurisdiction dropped required field %q", field)
		}
	}
	for _, sig := range base.SignatureRequirements {
		if !contains(grown.SignatureRequirements, sig) {
			t.Errorf("adding a jurisdiction dropped signature requirement %q", sig)
		}
	}
}

func TestMergedRequirementsUnknownCodesDropped(t *testing.T) {
	engine := NewEngine(testSource())

	sets := engine.StateRequirements([]string{"GA", "ZZ", "FL"})
	if len(sets) != 2 {
		t.Fatalf("resolved %d rule sets, want 2", len(sets))
	}

	merged := engine.MergedRequirements([]string{"ZZ", "GA"})
	if len(merged.RequiredFields) == 0 {
		t.Error("expected GA requirements to survive an unknown code")
	}
}

func TestMergedRequirementsEmptyInput(t *testing.T) {
	engine := NewEngine(testSource())

	for _, codes := range [][]string{nil, {}, {"XX", "YY"}} {
		merged := engine.MergedRequirements(codes)
		if len(merged.RequiredFields) != 0 || len(merged.DocumentationTypes) != 0 ||
			len(merged.VisitFrequencies) != 0 || len(merged.SignatureRequirements) != 0 ||
			len(merged.SpecialRequirements) != 0 {
			t.Errorf("codes %v: expected all-empty categories, got %+v", codes, merged)
		}
	}
}
