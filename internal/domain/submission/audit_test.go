package submission

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAuditRecordCarriesLineageOnly(t *testing.T) {
	data := &SubmissionReceivedData{
		SubmissionID:  "sub-1",
		AgencyID:      "agency-1",
		DocumentType:  "skilled_nursing_note",
		Jurisdictions: []string{"GA", "SC"},
		DocumentHash:  "hash-abc",
		ReceivedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	event, err := NewEvent("sub-1", EventSubmissionReceived, data)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	event.WithAuditInfo("agency-1", "hash-abc")
	event.Version = 3

	rec := NewAuditRecord(event)

	if rec.EventID != event.ID {
		t.Errorf("expected event ID %q, got %q", event.ID, rec.EventID)
	}
	if rec.SubmissionID != "sub-1" {
		t.Errorf("unexpected submission ID %q", rec.SubmissionID)
	}
	if rec.EventType != EventSubmissionReceived {
		t.Errorf("unexpected event type %q", rec.EventType)
	}
	if rec.Version != 3 {
		t.Errorf("expected version 3, got %d", rec.Version)
	}
	if rec.AgencyID != "agency-1" || rec.DocumentHash != "hash-abc" {
		t.Errorf("expected audit fields carried, got %q %q", rec.AgencyID, rec.DocumentHash)
	}
	if !rec.OccurredAt.Equal(event.Timestamp) {
		t.Errorf("expected occurred at %v, got %v", event.Timestamp, rec.OccurredAt)
	}
}

func TestAuditRecordOmitsEventData(t *testing.T) {
	data := &SubmissionValidatedData{
		SubmissionID:    "sub-2",
		IsValid:         false,
		ComplianceScore: 42,
		ErrorCount:      3,
		ValidatedAt:     time.Now().UTC(),
	}

	event, err := NewEvent("sub-2", EventSubmissionValidated, data)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	event.WithAuditInfo("agency-2", "hash-def")

	payload, err := json.Marshal(NewAuditRecord(event))
	if err != nil {
		t.Fatalf("marshal audit record: %v", err)
	}

	body := string(payload)
	for _, field := range []string{"event_data", "compliance_score", "error_count", "is_valid"} {
		if strings.Contains(body, field) {
			t.Errorf("audit payload must not carry %q: %s", field, body)
		}
	}
	if !strings.Contains(body, `"document_hash":"hash-def"`) {
		t.Errorf("expected document hash in audit payload: %s", body)
	}
}
