package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultReportRangeDays is the reporting window used when the caller does
// not supply one.
const DefaultReportRangeDays = 30

// DocumentStats holds the aggregate counts a report is built from. The
// engine never computes these itself; they come from an external
// aggregation collaborator.
type DocumentStats struct {
	TotalDocuments     int     `json:"total_documents"`
	CompliantDocuments int     `json:"compliant_documents"`
	AverageScore       float64 `json:"average_score"`
}

// StatsSource supplies document statistics for an agency over a reporting
// window. The engine only consumes the resulting values; fetching them is
// the caller's concern.
type StatsSource interface {
	AgencyStats(ctx context.Context, agencyID string, since time.Time) (DocumentStats, error)
}

// ComplianceReport is the report skeleton: identification, the reporting
// window, derived requirement counts, and the externally supplied document
// statistics.
type ComplianceReport struct {
	ReportID      string    `json:"report_id"`
	AgencyID      string    `json:"agency_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	TimeRangeDays int       `json:"time_range_days"`
	Jurisdictions []string  `json:"jurisdictions"`

	RequiredFieldCount        int      `json:"required_field_count"`
	DocumentationTypeCount    int      `json:"documentation_type_count"`
	SignatureRequirementCount int      `json:"signature_requirement_count"`
	SpecialRequirements       []string `json:"special_requirements"`

	TotalDocuments     int     `json:"total_documents"`
	CompliantDocuments int     `json:"compliant_documents"`
	ComplianceRate     float64 `json:"compliance_rate"`
	AverageScore       float64 `json:"average_score"`
}

// BuildComplianceReport assembles a compliance report for an agency from the
// merged requirements of its jurisdictions plus externally supplied counts.
// A non-positive timeRangeDays falls back to DefaultReportRangeDays.
func (e *Engine) BuildComplianceReport(agencyID string, codes []string, timeRangeDays int, stats DocumentStats) ComplianceReport {
	if timeRangeDays <= 0 {
		timeRangeDays = DefaultReportRangeDays
	}

	req := e.MergedRequirements(codes)
	now := time.Now().UTC()

	report := ComplianceReport{
		ReportID:      uuid.New().String(),
		AgencyID:      agencyID,
		GeneratedAt:   now,
		PeriodStart:   now.AddDate(0, 0, -timeRangeDays),
		PeriodEnd:     now,
		TimeRangeDays: timeRangeDays,
		Jurisdictions: append([]string{}, codes...),

		RequiredFieldCount:        len(req.RequiredFields),
		DocumentationTypeCount:    len(req.DocumentationTypes),
		SignatureRequirementCount: len(req.SignatureRequirements),
		SpecialRequirements:       req.SpecialRequirements,

		TotalDocuments:     stats.TotalDocuments,
		CompliantDocuments: stats.CompliantDocuments,
		AverageScore:       stats.AverageScore,
	}

	if stats.TotalDocuments > 0 {
		report.ComplianceRate = 100 * float64(stats.CompliantDocuments) / float64(stats.TotalDocuments)
	}

	return report
}
