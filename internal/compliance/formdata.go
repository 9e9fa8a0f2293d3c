package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FormData is a submitted form payload keyed by concrete field name.
type FormData map[string]any

// FormValidationResult reports per-field validation errors for a submitted
// form. At most one message survives per field.
type FormValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   map[string]string `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// ValidateFormData validates submitted form data against a generated
// template. It walks the template's sections and fields (not the rule map)
// and runs the checks for each field in a fixed order: required, pattern,
// minimum length, maximum date. A failing check overwrites any earlier
// message recorded for the field, so the surviving message is from the last
// check that failed. That single-message-per-field behavior is relied on by
// form clients; see the package tests.
func ValidateFormData(data FormData, tmpl *FormTemplate) FormValidationResult {
	result := FormValidationResult{
		Errors:   map[string]string{},
		Warnings: []string{},
	}
	if tmpl == nil {
		result.IsValid = true
		return result
	}

	for _, section := range tmpl.Sections {
		for _, field := range section.Fields {
			rule, hasRule := tmpl.ValidationRules[field.Name]
			value := stringOf(data[field.Name])

			required := field.Required || (hasRule && rule.Required)
			if required && strings.TrimSpace(value) == "" {
				result.Errors[field.Name] = fmt.Sprintf("%s is required", field.Label)
			}

			if !hasRule || value == "" {
				continue
			}

			if rule.Pattern != "" {
				if re, err := regexp.Compile(rule.Pattern); err == nil && !re.MatchString(value) {
					result.Errors[field.Name] = fmt.Sprintf("%s format is invalid", field.Label)
				}
			}

			if rule.MinLength > 0 && utf8.RuneCountInString(value) < rule.MinLength {
				result.Errors[field.Name] = fmt.Sprintf("%s must be at least %d characters", field.Label, rule.MinLength)
			}

			if rule.MaxDate != nil {
				if ts, ok := parseInstant(value); ok && ts.After(*rule.MaxDate) {
					result.Errors[field.Name] = fmt.Sprintf("%s cannot be a future date", field.Label)
				}
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
