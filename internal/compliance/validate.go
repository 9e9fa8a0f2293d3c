package compliance

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of validating one documentation record.
// Errors make the record non-compliant; warnings never do.
type ValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	ComplianceScore int      `json:"compliance_score"`
}

// ValidateDocumentation validates a documentation record against the merged
// requirements of the given jurisdictions.
func (e *Engine) ValidateDocumentation(doc Document, codes []string) ValidationResult {
	return ValidateWithRequirements(doc, e.MergedRequirements(codes))
}

// ValidateWithRequirements validates a record against an already-merged
// requirement set. Exposed so batch pipelines can merge once per agency and
// validate many records against the same requirements.
func ValidateWithRequirements(doc Document, req MergedRequirements) ValidationResult {
	result := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, field := range req.RequiredFields {
		if !fieldFilled(doc[field]) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required field missing: %s", strings.ReplaceAll(field, "_", " ")))
		}
	}

	docType, _ := doc[FieldType].(string)
	if !contains(req.DocumentationTypes, docType) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Documentation type '%s' may not be compliant in all operating states", docType))
	}

	if boolField(doc[FieldRequiresSignature]) {
		if !ValidateSignature(signatureFrom(doc[FieldSignature]), req.SignatureRequirements) {
			result.Errors = append(result.Errors, "Invalid or missing required signature")
		}
	}

	result.IsValid = len(result.Errors) == 0
	result.ComplianceScore = Score(doc, req)
	return result
}
