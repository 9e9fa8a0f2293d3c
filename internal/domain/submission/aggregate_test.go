package submission

import (
	"testing"
	"time"
)

func receivedData(id string) *SubmissionReceivedData {
	return &SubmissionReceivedData{
		SubmissionID:  id,
		AgencyID:      "agency-17",
		DocumentType:  "visit_note",
		Jurisdictions: []string{"GA", "FL"},
		DocumentHash:  "abc123",
		ReceivedAt:    time.Now().UTC(),
	}
}

func TestAggregateLifecycle(t *testing.T) {
	agg := NewAggregate("sub-1")

	if err := agg.Receive(receivedData("sub-1")); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if agg.Status() != StatusReceived {
		t.Errorf("status = %s, want received", agg.Status())
	}
	if agg.AgencyID() != "agency-17" {
		t.Errorf("agency = %s", agg.AgencyID())
	}

	if err := agg.Receive(receivedData("sub-1")); err == nil {
		t.Error("second receive should fail")
	}

	err := agg.RecordValidation(&SubmissionValidatedData{
		SubmissionID:    "sub-1",
		IsValid:         false,
		ComplianceScore: 55,
		ErrorCount:      2,
		ValidatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("record validation: %v", err)
	}
	if agg.Status() != StatusNonCompliant {
		t.Errorf("status = %s, want non_compliant", agg.Status())
	}
	if agg.ComplianceScore() != 55 {
		t.Errorf("score = %d", agg.ComplianceScore())
	}

	if err := agg.Amend("def456"); err != nil {
		t.Fatalf("amend: %v", err)
	}
	if agg.Status() != StatusReceived {
		t.Errorf("status after amend = %s, want received", agg.Status())
	}

	err = agg.RecordValidation(&SubmissionValidatedData{
		SubmissionID:    "sub-1",
		IsValid:         true,
		ComplianceScore: 95,
		ValidatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("record validation: %v", err)
	}
	if agg.Status() != StatusCompliant {
		t.Errorf("status = %s, want compliant", agg.Status())
	}

	if err := agg.Archive("retention window elapsed"); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if agg.Status() != StatusArchived {
		t.Errorf("status = %s, want archived", agg.Status())
	}

	if len(agg.Changes()) != 5 {
		t.Errorf("uncommitted events = %d, want 5", len(agg.Changes()))
	}
}

func TestAggregateRebuildFromHistory(t *testing.T) {
	agg := NewAggregate("sub-2")
	if err := agg.Receive(receivedData("sub-2")); err != nil {
		t.Fatal(err)
	}
	if err := agg.RecordValidation(&SubmissionValidatedData{IsValid: true, ComplianceScore: 88}); err != nil {
		t.Fatal(err)
	}

	rebuilt := NewAggregate("sub-2")
	rebuilt.LoadFromHistory(agg.Changes())

	if rebuilt.Status() != StatusCompliant {
		t.Errorf("rebuilt status = %s, want compliant", rebuilt.Status())
	}
	if rebuilt.Version() != agg.Version() {
		t.Errorf("rebuilt version = %d, want %d", rebuilt.Version(), agg.Version())
	}
	if rebuilt.ComplianceScore() != 88 {
		t.Errorf("rebuilt score = %d", rebuilt.ComplianceScore())
	}
}

func TestAggregateGuards(t *testing.T) {
	agg := NewAggregate("sub-3")

	if err := agg.RecordValidation(&SubmissionValidatedData{}); err == nil {
		t.Error("validation before receive should fail")
	}
	if err := agg.Amend("hash"); err == nil {
		t.Error("amend before receive should fail")
	}
	if err := agg.Archive(""); err == nil {
		t.Error("archive before receive should fail")
	}
}
