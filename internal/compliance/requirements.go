// Package compliance implements the multi-jurisdiction documentation
// compliance engine: requirement merging, document validation, compliance
// scoring, and jurisdiction-aware form generation for home-health agencies.
package compliance

// RuleSet holds the documentation requirements of a single jurisdiction.
// Rule sets are loaded once at startup and never mutated afterwards, so the
// engine reads them concurrently without locking.
type RuleSet struct {
	Code                  string   `json:"code"`
	RequiredFields        []string `json:"required_fields"`
	DocumentationTypes    []string `json:"documentation_types"`
	VisitFrequencies      []string `json:"visit_frequency_options"`
	SignatureRequirements []string `json:"signature_requirements"`
	SpecialRequirements   []string `json:"special_requirements"`
}

// MergedRequirements is the deduplicated union of every requirement category
// across the jurisdictions an agency operates in. Each category is a superset
// of the corresponding category of every contributing rule set.
type MergedRequirements struct {
	RequiredFields        []string `json:"all_required_fields"`
	DocumentationTypes    []string `json:"all_documentation_types"`
	VisitFrequencies      []string `json:"all_visit_frequencies"`
	SignatureRequirements []string `json:"all_signature_requirements"`
	SpecialRequirements   []string `json:"all_special_requirements"`
}

// Requirement category names that gate form sections.
const (
	ReqPatientDemographics = "patient_demographics"
	ReqPhysicianOrders     = "physician_orders"
	ReqCarePlan            = "care_plan"
)

// RuleSource resolves a jurisdiction code to its rule set. Unknown codes
// report ok=false and are silently dropped by the merger.
type RuleSource interface {
	RuleSet(code string) (RuleSet, bool)
}

// Engine is the compliance engine. It holds only the immutable rule source;
// every operation is a pure function of its inputs and is safe for
// unrestricted concurrent use.
type Engine struct {
	rules RuleSource
}

// NewEngine creates an engine backed by the given rule source.
func NewEngine(rules RuleSource) *Engine {
	return &Engine{rules: rules}
}

// StateRequirements resolves each jurisdiction code against the rule source.
// Unresolvable codes are dropped, so the result may be shorter than the
// input; it is never an error.
func (e *Engine) StateRequirements(codes []string) []RuleSet {
	sets := make([]RuleSet, 0, len(codes))
	for _, code := range codes {
		if rs, ok := e.rules.RuleSet(code); ok {
			sets = append(sets, rs)
		}
	}
	return sets
}

// MergedRequirements unions each requirement category across all resolvable
// jurisdictions. Empty or fully-unresolvable input yields all-empty
// categories rather than an error.
func (e *Engine) MergedRequirements(codes []string) MergedRequirements {
	sets := e.StateRequirements(codes)
	return MergedRequirements{
		RequiredFields:        mergeCategory(sets, func(rs RuleSet) []string { return rs.RequiredFields }),
		DocumentationTypes:    mergeCategory(sets, func(rs RuleSet) []string { return rs.DocumentationTypes }),
		VisitFrequencies:      mergeCategory(sets, func(rs RuleSet) []string { return rs.VisitFrequencies }),
		SignatureRequirements: mergeCategory(sets, func(rs RuleSet) []string { return rs.SignatureRequirements }),
		SpecialRequirements:   mergeCategory(sets, func(rs RuleSet) []string { return rs.SpecialRequirements }),
	}
}

// mergeCategory flattens one category across rule sets, deduplicating while
// preserving first-seen order.
func mergeCategory(sets []RuleSet, pick func(RuleSet) []string) []string {
	seen := make(map[string]struct{})
	merged := []string{}
	for _, rs := range sets {
		for _, v := range pick(rs) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	return merged
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
