package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/caretrack/go-cce/internal/compliance"
	"github.com/caretrack/go-cce/internal/rules"
)

// LoadRuleRegistry reads the jurisdiction rule table into an in-memory
// registry. The table is read exactly once, at startup; the engine never
// goes back to the database for rules. An empty table is an error because a
// populated registry is a precondition for the engine.
func LoadRuleRegistry(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*rules.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	query := `
		SELECT code, required_fields, documentation_types, visit_frequency_options,
		       signature_requirements, special_requirements
		FROM jurisdiction_rules
		ORDER BY code
	`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query jurisdiction rules: %w", err)
	}
	defer rows.Close()

	var sets []compliance.RuleSet
	for rows.Next() {
		var rs compliance.RuleSet
		err := rows.Scan(
			&rs.Code,
			&rs.RequiredFields,
			&rs.DocumentationTypes,
			&rs.VisitFrequencies,
			&rs.SignatureRequirements,
			&rs.SpecialRequirements,
		)
		if err != nil {
			return nil, fmt.Errorf("scan jurisdiction rule: %w", err)
		}
		sets = append(sets, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("jurisdiction_rules table is empty")
	}

	logger.Info("loaded jurisdiction rules", zap.Int("jurisdictions", len(sets)))
	return rules.NewRegistry(sets), nil
}
