package compliance

import "testing"

func TestBuildComplianceReport(t *testing.T) {
	engine := NewEngine(testSource())

	stats := DocumentStats{TotalDocuments: 40, CompliantDocuments: 30, AverageScore: 86.5}
	report := engine.BuildComplianceReport("agency-17", []string{"GA", "FL"}, 0, stats)

	if report.ReportID == "" {
		t.Error("expected a report ID")
	}
	if report.TimeRangeDays != DefaultReportRangeDays {
		t.Errorf("time range = %d, want default %d", report.TimeRangeDays, DefaultReportRangeDays)
	}
	if got := report.PeriodEnd.Sub(report.PeriodStart).Hours() / 24; got != DefaultReportRangeDays {
		t.Errorf("period spans %.1f days", got)
	}
	if report.RequiredFieldCount != 4 {
		t.Errorf("required field count = %d, want 4", report.RequiredFieldCount)
	}
	if report.ComplianceRate != 75 {
		t.Errorf("compliance rate = %v, want 75", report.ComplianceRate)
	}
	if report.AverageScore != 86.5 {
		t.Errorf("average score = %v", report.AverageScore)
	}
}

func TestBuildComplianceReportNoDocuments(t *testing.T) {
	engine := NewEngine(testSource())

	report := engine.BuildComplianceReport("agency-17", nil, 7, DocumentStats{})

	if report.ComplianceRate != 0 {
		t.Errorf("compliance rate = %v, want 0 with no documents", report.ComplianceRate)
	}
	if report.RequiredFieldCount != 0 || report.DocumentationTypeCount != 0 {
		t.Errorf("expected zero requirement counts for empty jurisdictions: %+v", report)
	}
	if report.TimeRangeDays != 7 {
		t.Errorf("time range = %d, want 7", report.TimeRangeDays)
	}
}
