package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/caretrack/go-cce/internal/compliance"
)

// StatsStore aggregates per-agency document statistics from the submission
// event stream. It is the collaborator behind the report endpoint; the
// compliance engine itself never counts documents.
type StatsStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

// NewStatsStore creates a stats store.
func NewStatsStore(pool *pgxpool.Pool, logger *zap.Logger) *StatsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsStore{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("stats-store"),
	}
}

// AgencyStats returns the document counts for one agency since the given
// instant, based on the latest validation outcome per submission.
func (s *StatsStore) AgencyStats(ctx context.Context, agencyID string, since time.Time) (compliance.DocumentStats, error) {
	ctx, span := s.tracer.Start(ctx, "agency_stats",
		trace.WithAttributes(attribute.String("agency_id", agencyID)))
	defer span.End()

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE (event_data->>'is_valid')::boolean),
		       COALESCE(AVG((event_data->>'compliance_score')::numeric), 0)
		FROM (
			SELECT DISTINCT ON (aggregate_id) aggregate_id, event_data
			FROM submission_events
			WHERE agency_id = $1
			  AND event_type = 'SubmissionValidated'
			  AND timestamp >= $2
			ORDER BY aggregate_id, version DESC
		) latest
	`

	var stats compliance.DocumentStats
	err := s.pool.QueryRow(ctx, query, agencyID, since).Scan(
		&stats.TotalDocuments,
		&stats.CompliantDocuments,
		&stats.AverageScore,
	)
	if err != nil {
		span.RecordError(err)
		return compliance.DocumentStats{}, fmt.Errorf("query agency stats: %w", err)
	}

	return stats, nil
}
