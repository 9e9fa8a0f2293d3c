package compliance

import "math"

// Score weights for the five independent scoring terms.
const (
	weightRequiredFields = 40.0
	weightDocType        = 20.0
	weightSignature      = 20.0
	weightTimestamp      = 10.0
	weightCompleteness   = 10.0
)

// Score computes the weighted 0-100 compliance score of a documentation
// record against a merged requirement set. The result is deterministic for
// identical inputs and rounded half-up to the nearest integer.
func Score(doc Document, req MergedRequirements) int {
	var score float64

	// Required-fields coverage. An empty requirement set contributes zero
	// rather than dividing by zero.
	if total := len(req.RequiredFields); total > 0 {
		filled := 0
		for _, field := range req.RequiredFields {
			if fieldFilled(doc[field]) {
				filled++
			}
		}
		score += weightRequiredFields * float64(filled) / float64(total)
	}

	if docType, _ := doc[FieldType].(string); contains(req.DocumentationTypes, docType) {
		score += weightDocType
	}

	if sig := signatureFrom(doc[FieldSignature]); ValidateSignature(sig, req.SignatureRequirements) {
		score += weightSignature
	}

	if _, ok := parseInstant(doc[FieldTimestamp]); ok {
		score += weightTimestamp
	}

	// Completeness of the record's own keys, empty records contributing zero.
	if len(doc) > 0 {
		set := 0
		for _, v := range doc {
			if valueSet(v) {
				set++
			}
		}
		score += weightCompleteness * float64(set) / float64(len(doc))
	}

	return int(math.Floor(score + 0.5))
}
