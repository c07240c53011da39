package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"hse-compliance/internal/models"
)

func TestRenderAssignmentsCSV(t *testing.T) {
	sentAt := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	completedAt := time.Date(2026, time.February, 12, 16, 30, 0, 0, time.UTC)
	score := 85.0

	assignments := []models.AssignmentWithDetails{
		{
			Assignment: models.Assignment{
				ID:             1,
				InspectorEmail: "ispettore@example.com",
				Status:         models.AssignmentCompleted,
				SentAt:         sentAt,
				CompletedAt:    &completedAt,
			},
			QuestionnaireTitle: "Audit HSE",
			SupplierName:       "Rossi Trasporti",
			FinalScore:         &score,
			Rating:             "Eccellente",
		},
		{
			Assignment: models.Assignment{
				ID:             2,
				InspectorEmail: "ispettore@example.com",
				Status:         models.AssignmentPending,
				SentAt:         sentAt,
			},
			QuestionnaireTitle: "Audit HSE",
			SupplierName:       "Bianchi Costruzioni",
		},
	}

	data, err := renderAssignmentsCSV(assignments)
	if err != nil {
		t.Fatalf("renderAssignmentsCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d rows, want 3", len(records))
	}

	wantHeader := []string{"assignment_id", "supplier", "questionnaire", "inspector_email", "status", "sent_at", "completed_at", "final_score", "rating"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	completed := records[1]
	if completed[1] != "Rossi Trasporti" || completed[7] != "85.0" || completed[8] != "Eccellente" {
		t.Errorf("completed row = %v", completed)
	}
	if completed[6] != "2026-02-12 16:30:00" {
		t.Errorf("completed_at = %q", completed[6])
	}

	pending := records[2]
	if pending[4] != models.AssignmentPending {
		t.Errorf("pending status = %q", pending[4])
	}
	if pending[6] != "" || pending[7] != "" || pending[8] != "" {
		t.Errorf("pending row should have empty outcome columns: %v", pending)
	}
}

func TestRenderAssignmentsCSVDerivesMissingRating(t *testing.T) {
	score := 62.5
	assignments := []models.AssignmentWithDetails{
		{
			Assignment: models.Assignment{
				ID:     5,
				Status: models.AssignmentCompleted,
				SentAt: time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
			},
			SupplierName: "Verdi Impianti",
			FinalScore:   &score,
		},
	}

	data, err := renderAssignmentsCSV(assignments)
	if err != nil {
		t.Fatalf("renderAssignmentsCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if records[1][8] != "Adeguato" {
		t.Errorf("derived rating = %q, want %q", records[1][8], "Adeguato")
	}
}
