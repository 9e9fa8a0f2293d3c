// Package rules holds the jurisdiction documentation rule registry. The
// registry is populated once at process start, from the built-in table, a
// JSON file, or a database load, and is read-only afterwards.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caretrack/go-cce/internal/compliance"
)

// Registry maps jurisdiction codes to their rule sets. It implements
// compliance.RuleSource. Because nothing mutates it after construction,
// concurrent reads need no locking.
type Registry struct {
	sets map[string]compliance.RuleSet
}

// NewRegistry builds a registry from the given rule sets. Codes are
// normalized to upper case.
func NewRegistry(sets []compliance.RuleSet) *Registry {
	r := &Registry{sets: make(map[string]compliance.RuleSet, len(sets))}
	for _, rs := range sets {
		rs.Code = strings.ToUpper(strings.TrimSpace(rs.Code))
		if rs.Code == "" {
			continue
		}
		r.sets[rs.Code] = rs
	}
	return r
}

// RuleSet resolves a jurisdiction code.
func (r *Registry) RuleSet(code string) (compliance.RuleSet, bool) {
	rs, ok := r.sets[strings.ToUpper(strings.TrimSpace(code))]
	return rs, ok
}

// Codes returns every registered jurisdiction code.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.sets))
	for code := range r.sets {
		codes = append(codes, code)
	}
	return codes
}

// Len reports the number of registered jurisdictions.
func (r *Registry) Len() int { return len(r.sets) }

// LoadFile reads rule sets from a JSON file: an array of rule-set objects.
// An empty file is an error; a populated registry is a startup precondition
// for the engine.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var sets []compliance.RuleSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("rules file %s contains no jurisdictions", path)
	}

	return NewRegistry(sets), nil
}
