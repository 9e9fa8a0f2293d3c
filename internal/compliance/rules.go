package compliance

import (
	"strings"
	"time"
)

// ValidationRule holds the per-field constraints attached to a generated
// form template.
type ValidationRule struct {
	Required  bool       `json:"required"`
	MinLength int        `json:"min_length,omitempty"`
	Pattern   string     `json:"pattern,omitempty"`
	MaxDate   *time.Time `json:"max_date,omitempty"`
}

// Fixed validation patterns. These are deliberately simplistic and not
// jurisdiction-specific; downstream systems depend on their exact matching
// behavior.
const (
	// PhonePattern matches US phone numbers formatted as (NNN) NNN-NNNN.
	PhonePattern = `^\(\d{3}\) \d{3}-\d{4}$`
	// EmailPattern requires a single @ with a dotted domain.
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

// ValidationRules derives the field-rule map for a merged requirement set.
// Every merged required field gets a required rule whose minimum length is 2
// when the field name mentions "name" and 1 otherwise. Three fixed rules are
// then overlaid for phone, email, and dateOfBirth whether or not those
// fields appear in the merged requirements; the map is intentionally not
// filtered down to required fields.
func ValidationRules(req MergedRequirements) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(req.RequiredFields)+3)

	for _, field := range req.RequiredFields {
		minLen := 1
		if strings.Contains(field, "name") {
			minLen = 2
		}
		rules[field] = ValidationRule{Required: true, MinLength: minLen}
	}

	now := time.Now()
	rules["phone"] = ValidationRule{Pattern: PhonePattern}
	rules["email"] = ValidationRule{Pattern: EmailPattern}
	rules["dateOfBirth"] = ValidationRule{MaxDate: &now}

	return rules
}
