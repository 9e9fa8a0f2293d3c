package submission

import (
	"encoding/json"
	"errors"
	"time"
)

// Status represents submission status
type Status string

const (
	StatusDraft        Status = "draft"
	StatusReceived     Status = "received"
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non_compliant"
	StatusArchived     Status = "archived"
)

// Aggregate represents the documentation-submission aggregate root
type Aggregate struct {
	id              string
	version         int
	status          Status
	agencyID        string
	documentType    string
	jurisdictions   []string
	documentHash    string
	complianceScore int
	errorCount      int
	warningCount    int
	receivedAt      time.Time
	createdAt       time.Time
	updatedAt       time.Time
	changes         []*Event
}

// NewAggregate creates a new submission aggregate
func NewAggregate(id string) *Aggregate {
	return &Aggregate{
		id:        id,
		status:    StatusDraft,
		createdAt: time.Now().UTC(),
		updatedAt: time.Now().UTC(),
		changes:   make([]*Event, 0),
	}
}

// ID returns the aggregate ID
func (a *Aggregate) ID() string { return a.id }

// Version returns the current version
func (a *Aggregate) Version() int { return a.version }

// Status returns the current status
func (a *Aggregate) Status() Status { return a.status }

// AgencyID returns the submitting agency
func (a *Aggregate) AgencyID() string { return a.agencyID }

// ComplianceScore returns the last recorded score
func (a *Aggregate) ComplianceScore() int { return a.complianceScore }

// Changes returns uncommitted events
func (a *Aggregate) Changes() []*Event { return a.changes }

// ClearChanges clears uncommitted events
func (a *Aggregate) ClearChanges() { a.changes = make([]*Event, 0) }

// Receive records the initial submission
func (a *Aggregate) Receive(data *SubmissionReceivedData) error {
	if a.status != StatusDraft {
		return errors.New("submission already received")
	}

	event, err := NewEvent(a.id, EventSubmissionReceived, data)
	if err != nil {
		return err
	}
	event.WithAuditInfo(data.AgencyID, data.DocumentHash)

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// RecordValidation records the validation outcome for the submission
func (a *Aggregate) RecordValidation(data *SubmissionValidatedData) error {
	if a.status != StatusReceived && a.status != StatusNonCompliant {
		return errors.New("submission not awaiting validation")
	}

	event, err := NewEvent(a.id, EventSubmissionValidated, data)
	if err != nil {
		return err
	}
	event.WithAuditInfo(a.agencyID, a.documentHash)

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// Amend records a corrected re-submission of a non-compliant document
func (a *Aggregate) Amend(documentHash string) error {
	if a.status != StatusNonCompliant {
		return errors.New("only non-compliant submissions can be amended")
	}

	data := &SubmissionAmendedData{
		SubmissionID: a.id,
		DocumentHash: documentHash,
		AmendedAt:    time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionAmended, data)
	if err != nil {
		return err
	}
	event.WithAuditInfo(a.agencyID, documentHash)

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// Archive retires the submission
func (a *Aggregate) Archive(reason string) error {
	if a.status == StatusArchived {
		return errors.New("submission already archived")
	}
	if a.status == StatusDraft {
		return errors.New("submission never received")
	}

	data := &SubmissionArchivedData{
		SubmissionID: a.id,
		Reason:       reason,
		ArchivedAt:   time.Now().UTC(),
	}

	event, err := NewEvent(a.id, EventSubmissionArchived, data)
	if err != nil {
		return err
	}

	a.apply(event)
	a.changes = append(a.changes, event)
	return nil
}

// apply applies an event to update state
func (a *Aggregate) apply(event *Event) {
	a.version++
	a.updatedAt = event.Timestamp

	switch event.EventType {
	case EventSubmissionReceived:
		a.applyReceived(event)
	case EventSubmissionValidated:
		a.applyValidated(event)
	case EventSubmissionAmended:
		a.applyAmended(event)
	case EventSubmissionArchived:
		a.status = StatusArchived
	}
}

func (a *Aggregate) applyReceived(event *Event) {
	var data SubmissionReceivedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusReceived
	a.agencyID = data.AgencyID
	a.documentType = data.DocumentType
	a.jurisdictions = data.Jurisdictions
	a.documentHash = data.DocumentHash
	a.receivedAt = data.ReceivedAt
}

func (a *Aggregate) applyValidated(event *Event) {
	var data SubmissionValidatedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.complianceScore = data.ComplianceScore
	a.errorCount = data.ErrorCount
	a.warningCount = data.WarningCount
	if data.IsValid {
		a.status = StatusCompliant
	} else {
		a.status = StatusNonCompliant
	}
}

func (a *Aggregate) applyAmended(event *Event) {
	var data SubmissionAmendedData
	if err := json.Unmarshal(event.EventData, &data); err != nil {
		return
	}
	a.status = StatusReceived
	a.documentHash = data.DocumentHash
}

// LoadFromHistory rebuilds state from events
func (a *Aggregate) LoadFromHistory(events []*Event) {
	for _, event := range events {
		a.apply(event)
	}
}
