package compliance

import (
	"testing"
	"time"
)

func TestScoreFullyCompliantDocument(t *testing.T) {
	req := MergedRequirements{
		RequiredFields:        []string{"patient_demographics"},
		DocumentationTypes:    []string{"visit_note"},
		SignatureRequirements: []string{"nurse"},
	}

	now := time.Now().UTC()
	doc := Document{
		"patient_demographics": "present",
		FieldType:              "visit_note",
		FieldTimestamp:         now,
		FieldSignature: &Signature{
			Timestamp: now,
			SignerID:  "n1",
			Data:      "sig",
		},
	}

	// 40 (1/1 required) + 20 (type) + 20 (signature) + 10 (timestamp) + 10 (4/4 keys).
	if got := Score(doc, req); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScorePartialDocument(t *testing.T) {
	req := MergedRequirements{
		RequiredFields:     []string{"patient_demographics"},
		DocumentationTypes: []string{"visit_note"},
	}

	doc := Document{
		FieldType: "scribbled_note",
	}

	got := Score(doc, req)
	if got >= 40 {
		t.Errorf("Score = %d, want strictly below 40", got)
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	req := MergedRequirements{
		RequiredFields: []string{"a", "b", "c"},
	}
	doc := Document{"a": "x", "b": "y"}

	// 40*2/3 + 10*2/2 = 36.67 -> 37.
	if got := Score(doc, req); got != 37 {
		t.Errorf("Score = %d, want 37", got)
	}
}

func TestScoreEmptyRequirementsNoDivideByZero(t *testing.T) {
	if got := Score(Document{}, MergedRequirements{}); got != 0 {
		t.Errorf("Score of empty doc against empty requirements = %d, want 0", got)
	}

	// Completeness is the only term that can contribute here.
	doc := Document{"note": "present", "blank": ""}
	if got := Score(doc, MergedRequirements{}); got != 5 {
		t.Errorf("Score = %d, want 5 (completeness only)", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	req := MergedRequirements{
		RequiredFields:        []string{"patient_demographics", "care_plan"},
		DocumentationTypes:    []string{"visit_note"},
		SignatureRequirements: []string{"nurse"},
	}
	doc := Document{
		"patient_demographics": "yes",
		FieldType:              "visit_note",
		FieldTimestamp:         "2026-08-20T09:00:00Z",
	}

	first := Score(doc, req)
	for i := 0; i < 50; i++ {
		if got := Score(doc, req); got != first {
			t.Fatalf("Score varied across calls: %d vs %d", got, first)
		}
	}
	if first < 0 || first > 100 {
		t.Errorf("Score = %d, want within [0,100]", first)
	}
}

func TestScoreTimestampTerm(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"rfc3339 string", "2026-08-20T09:00:00Z", 20},
		{"date only", "2026-08-20", 20},
		{"epoch seconds", float64(1_700_000_000), 20},
		{"epoch zero", time.Unix(0, 0), 10},
		{"garbage", "not-a-date", 10},
		{"nil value", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{FieldTimestamp: tt.value}
			// timestamp term (10) + completeness term (10 when the single key is set).
			if got := Score(doc, MergedRequirements{}); got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}
