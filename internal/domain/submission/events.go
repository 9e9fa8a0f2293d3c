// Package submission implements the documentation-submission aggregate and
// its domain events.
package submission

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event
type EventType string

const (
	EventSubmissionReceived  EventType = "SubmissionReceived"
	EventSubmissionValidated EventType = "SubmissionValidated"
	EventSubmissionAmended   EventType = "SubmissionAmended"
	EventSubmissionArchived  EventType = "SubmissionArchived"
)

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     EventType       `json:"event_type"`
	EventData     json.RawMessage `json:"event_data"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	AgencyID      string          `json:"agency_id,omitempty"`
	DocumentHash  string          `json:"document_hash,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// NewEvent creates a new event
func NewEvent(aggregateID string, eventType EventType, data interface{}) (*Event, error) {
	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: "Submission",
		EventType:     eventType,
		EventData:     eventData,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// WithAuditInfo sets the PHI-safe audit fields carried on every event. Only
// the agency ID and a document content hash are recorded, never document
// fields themselves.
func (e *Event) WithAuditInfo(agencyID, documentHash string) *Event {
	e.AgencyID = agencyID
	e.DocumentHash = documentHash
	return e
}

// AuditRecord is the PHI-safe projection of an event published on the audit
// trail: identity, lineage, and the document content hash, never event data.
type AuditRecord struct {
	EventID       string    `json:"event_id"`
	SubmissionID  string    `json:"submission_id"`
	EventType     EventType `json:"event_type"`
	Version       int       `json:"version"`
	AgencyID      string    `json:"agency_id,omitempty"`
	DocumentHash  string    `json:"document_hash,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewAuditRecord projects an event onto its audit trail form.
func NewAuditRecord(e *Event) AuditRecord {
	return AuditRecord{
		EventID:       e.ID,
		SubmissionID:  e.AggregateID,
		EventType:     e.EventType,
		Version:       e.Version,
		AgencyID:      e.AgencyID,
		DocumentHash:  e.DocumentHash,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.Timestamp,
	}
}

// SubmissionReceivedData contains the initial submission details
type SubmissionReceivedData struct {
	SubmissionID      string    `json:"submission_id"`
	AgencyID          string    `json:"agency_id"`
	DocumentType      string    `json:"document_type"`
	Jurisdictions     []string  `json:"jurisdictions"`
	DocumentHash      string    `json:"document_hash"`
	RequiresSignature bool      `json:"requires_signature"`
	ReceivedAt        time.Time `json:"received_at"`
}

// SubmissionValidatedData contains the validation outcome
type SubmissionValidatedData struct {
	SubmissionID    string    `json:"submission_id"`
	IsValid         bool      `json:"is_valid"`
	ComplianceScore int       `json:"compliance_score"`
	ErrorCount      int       `json:"error_count"`
	WarningCount    int       `json:"warning_count"`
	ValidatedAt     time.Time `json:"validated_at"`
}

// SubmissionAmendedData records a re-submission of a corrected document
type SubmissionAmendedData struct {
	SubmissionID string    `json:"submission_id"`
	DocumentHash string    `json:"document_hash"`
	AmendedAt    time.Time `json:"amended_at"`
}

// SubmissionArchivedData records retirement of the submission
type SubmissionArchivedData struct {
	SubmissionID string    `json:"submission_id"`
	Reason       string    `json:"reason,omitempty"`
	ArchivedAt   time.Time `json:"archived_at"`
}
