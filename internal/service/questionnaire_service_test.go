package service

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"hse-compliance/internal/models"
)

func sampleTree() *models.QuestionnaireWithDetails {
	description := "Audit annuale fornitori"
	return &models.QuestionnaireWithDetails{
		Questionnaire: models.Questionnaire{
			ID:          3,
			Title:       "Audit HSE",
			Description: &description,
			Status:      models.QuestionnairePublished,
		},
		Areas: []models.AreaWithQuestions{
			{
				Area: models.Area{ID: 30, QuestionnaireID: 3, Title: "Ambiente", Weight: 1.5, SortOrder: 1},
				Questions: []models.QuestionWithOptions{
					{
						Question: models.Question{ID: 300, AreaID: 30, Text: "Rifiuti smaltiti correttamente?", Required: true, SortOrder: 1},
						Options: []models.Option{
							{ID: 3000, QuestionID: 300, Text: "Sì", Weight: 4, SortOrder: 1},
							{ID: 3001, QuestionID: 300, Text: "No", Weight: 0, SortOrder: 2},
							{ID: 3002, QuestionID: 300, Text: "Non applicabile", Weight: 0, SortOrder: 3, IsNA: true},
						},
					},
				},
			},
		},
	}
}

func TestBuildExportOmitsIDs(t *testing.T) {
	export := BuildExport(sampleTree())

	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Error("export contains database IDs")
	}

	if export.Title != "Audit HSE" {
		t.Errorf("Title = %q, want %q", export.Title, "Audit HSE")
	}
	if export.Description != "Audit annuale fornitori" {
		t.Errorf("Description = %q", export.Description)
	}
	if len(export.Areas) != 1 || len(export.Areas[0].Questions) != 1 {
		t.Fatalf("unexpected tree shape: %+v", export)
	}
	if got := len(export.Areas[0].Questions[0].Options); got != 3 {
		t.Fatalf("got %d options, want 3", got)
	}
	if !export.Areas[0].Questions[0].Options[2].IsNA {
		t.Error("N/A flag lost in export")
	}
}

func TestExportRoundTrip(t *testing.T) {
	export := BuildExport(sampleTree())

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded QuestionnaireExport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(*export, decoded) {
		t.Errorf("round trip changed the export:\n got %+v\nwant %+v", decoded, *export)
	}
}

func TestValidateStructure(t *testing.T) {
	valid := sampleTree()
	if err := validateStructure(valid); err != nil {
		t.Errorf("validateStructure() on a valid tree: %v", err)
	}

	noAreas := &models.QuestionnaireWithDetails{Questionnaire: models.Questionnaire{Title: "Vuoto"}}
	if err := validateStructure(noAreas); err == nil || !strings.Contains(err.Error(), "no areas") {
		t.Errorf("expected no-areas error, got %v", err)
	}

	zeroWeight := sampleTree()
	zeroWeight.Areas[0].Weight = 0
	if err := validateStructure(zeroWeight); err == nil || !strings.Contains(err.Error(), "weight") {
		t.Errorf("expected weight error, got %v", err)
	}

	noOptions := sampleTree()
	noOptions.Areas[0].Questions[0].Options = nil
	if err := validateStructure(noOptions); err == nil || !strings.Contains(err.Error(), "no options") {
		t.Errorf("expected no-options error, got %v", err)
	}

	onlyNA := sampleTree()
	onlyNA.Areas[0].Questions[0].Options = []models.Option{
		{Text: "Non applicabile", IsNA: true},
	}
	if err := validateStructure(onlyNA); err == nil || !strings.Contains(err.Error(), "only N/A") {
		t.Errorf("expected only-N/A error, got %v", err)
	}

	negativeOption := sampleTree()
	negativeOption.Areas[0].Questions[0].Options[1].Weight = -1
	if err := validateStructure(negativeOption); err == nil || !strings.Contains(err.Error(), "negative") {
		t.Errorf("expected negative-weight error, got %v", err)
	}
}
