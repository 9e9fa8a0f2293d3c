package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caretrack/go-cce/internal/compliance"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	if reg.Len() == 0 {
		t.Fatal("default registry is empty")
	}

	ga, ok := reg.RuleSet("GA")
	if !ok {
		t.Fatal("GA missing from default registry")
	}
	if len(ga.RequiredFields) == 0 || len(ga.DocumentationTypes) == 0 {
		t.Errorf("GA rule set incomplete: %+v", ga)
	}

	// Lookups are case-insensitive.
	if _, ok := reg.RuleSet("ga"); !ok {
		t.Error("lowercase lookup failed")
	}
	if _, ok := reg.RuleSet("ZZ"); ok {
		t.Error("unknown code resolved")
	}
}

func TestNewRegistrySkipsBlankCodes(t *testing.T) {
	reg := NewRegistry([]compliance.RuleSet{
		{Code: "  "},
		{Code: "ga", RequiredFields: []string{"care_plan"}},
	})

	if reg.Len() != 1 {
		t.Errorf("registry has %d entries, want 1", reg.Len())
	}
	if _, ok := reg.RuleSet("GA"); !ok {
		t.Error("normalized code not registered")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	body := `[
		{"code": "GA", "required_fields": ["patient_demographics"], "documentation_types": ["visit_note"]},
		{"code": "FL", "required_fields": ["medication_list"]}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("loaded %d jurisdictions, want 2", reg.Len())
	}

	ga, _ := reg.RuleSet("GA")
	if len(ga.RequiredFields) != 1 || ga.RequiredFields[0] != "patient_demographics" {
		t.Errorf("GA = %+v", ga)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for empty rules file")
	}
}
