package rules

import "github.com/caretrack/go-cce/internal/compliance"

// Default returns the built-in jurisdiction table covering the southeastern
// states the platform launched in. Deployments with other coverage load
// their table from a file or the database instead.
func Default() *Registry {
	return NewRegistry(defaultRuleSets())
}

func defaultRuleSets() []compliance.RuleSet {
	return []compliance.RuleSet{
		{
			Code:                  "GA",
			RequiredFields:        []string{"patient_demographics", "physician_orders", "care_plan", "visit_notes"},
			DocumentationTypes:    []string{"visit_note", "care_plan", "assessment", "physician_order"},
			VisitFrequencies:      []string{"weekly", "biweekly", "monthly"},
			SignatureRequirements: []string{"nurse", "physician"},
			SpecialRequirements:   []string{"medicaid_prior_authorization"},
		},
		{
			Code:                  "FL",
			RequiredFields:        []string{"patient_demographics", "physician_orders", "medication_list", "emergency_contact"},
			DocumentationTypes:    []string{"visit_note", "assessment", "medication_review"},
			VisitFrequencies:      []string{"daily", "weekly", "monthly"},
			SignatureRequirements: []string{"nurse", "supervisor"},
			SpecialRequirements:   []string{"ahca_license_display"},
		},
		{
			Code:                  "SC",
			RequiredFields:        []string{"patient_demographics", "care_plan"},
			DocumentationTypes:    []string{"visit_note", "care_plan"},
			VisitFrequencies:      []string{"weekly", "monthly"},
			SignatureRequirements: []string{"nurse"},
			SpecialRequirements:   []string{},
		},
		{
			Code:                  "NC",
			RequiredFields:        []string{"patient_demographics", "physician_orders", "care_plan"},
			DocumentationTypes:    []string{"visit_note", "care_plan", "physician_order"},
			VisitFrequencies:      []string{"weekly", "biweekly"},
			SignatureRequirements: []string{"nurse", "physician"},
			SpecialRequirements:   []string{"in_home_aide_supervision"},
		},
		{
			Code:                  "TN",
			RequiredFields:        []string{"patient_demographics", "physician_orders", "visit_notes"},
			DocumentationTypes:    []string{"visit_note", "assessment"},
			VisitFrequencies:      []string{"weekly", "monthly", "quarterly"},
			SignatureRequirements: []string{"nurse"},
			SpecialRequirements:   []string{"choices_program_reporting"},
		},
	}
}
