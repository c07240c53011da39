package scoring

import (
	"math"
	"testing"

	"hse-compliance/internal/models"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// singleAreaSnapshot builds one area (weight 0.5) with one scored question
// (options 0.0/0.75/1.0) and one question that also offers an N/A option.
func singleAreaSnapshot() *Snapshot {
	return &Snapshot{
		QuestionnaireID: 1,
		Title:           "Sicurezza cantiere",
		Areas: []AreaSnapshot{
			{
				ID:     10,
				Title:  "DPI",
				Weight: 0.5,
				Questions: []QuestionSnapshot{
					{
						ID:   100,
						Text: "I lavoratori indossano i DPI richiesti?",
						Options: []OptionSnapshot{
							{ID: 1000, Weight: 0.0},
							{ID: 1001, Weight: 0.75},
							{ID: 1002, Weight: 1.0},
						},
					},
					{
						ID:   101,
						Text: "I mezzi di sollevamento sono certificati?",
						Options: []OptionSnapshot{
							{ID: 1010, Weight: 0.0},
							{ID: 1011, Weight: 1.0},
							{ID: 1012, Weight: 1.0, IsNA: true},
						},
					},
				},
			},
		},
	}
}

func TestComputeScoreSingleQuestion(t *testing.T) {
	// Area weight 0.5, answer weight 0.75, max weight 1.0:
	// numerator 0.375, denominator 0.5, score 75.0
	resolver := NewTreeResolver(singleAreaSnapshot())
	responses := []models.Response{
		{ID: 1, AssignmentID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
	}

	result := ComputeScore(responses, resolver)

	if !almostEqual(result.TotalScore, 0.375) {
		t.Errorf("Expected numerator 0.375, got %f", result.TotalScore)
	}
	if !almostEqual(result.TotalEffectiveWeight, 0.5) {
		t.Errorf("Expected denominator 0.5, got %f", result.TotalEffectiveWeight)
	}
	if !almostEqual(result.FinalScore, 75.0) {
		t.Errorf("Expected final score 75.0, got %f", result.FinalScore)
	}
}

func TestComputeScoreMultiArea(t *testing.T) {
	// Two areas: weight 0.6 with answers 1.0/1.0 and 0.8/1.0, weight 0.4 with
	// answer 0.5/1.0. Numerator 0.6+0.48+0.2, denominator 0.6+0.6+0.4 -> 80.0
	snap := &Snapshot{
		Areas: []AreaSnapshot{
			{
				ID: 10, Weight: 0.6,
				Questions: []QuestionSnapshot{
					{ID: 100, Options: []OptionSnapshot{{ID: 1000, Weight: 0}, {ID: 1001, Weight: 1.0}}},
					{ID: 101, Options: []OptionSnapshot{{ID: 1010, Weight: 0.8}, {ID: 1011, Weight: 1.0}}},
				},
			},
			{
				ID: 20, Weight: 0.4,
				Questions: []QuestionSnapshot{
					{ID: 200, Options: []OptionSnapshot{{ID: 2000, Weight: 0.5}, {ID: 2001, Weight: 1.0}}},
				},
			},
		},
	}
	resolver := NewTreeResolver(snap)
	responses := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 1.0},
		{ID: 2, QuestionID: 101, OptionID: 1010, ComputedScore: 0.8},
		{ID: 3, QuestionID: 200, OptionID: 2000, ComputedScore: 0.5},
	}

	result := ComputeScore(responses, resolver)

	if !almostEqual(result.FinalScore, 80.0) {
		t.Errorf("Expected final score 80.0, got %f", result.FinalScore)
	}
	if result.AnsweredCount != 3 {
		t.Errorf("Expected 3 answered responses, got %d", result.AnsweredCount)
	}
}

func TestComputeScoreExcludesNA(t *testing.T) {
	// One scored answer (0.75/1.0, area 0.5) plus one N/A answer in the same
	// area must still score 75.0. Treating the N/A as a max-weight answer
	// would incorrectly produce 62.5.
	resolver := NewTreeResolver(singleAreaSnapshot())
	responses := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
		{ID: 2, QuestionID: 101, OptionID: 1012, ComputedScore: 1.0}, // N/A
	}

	result := ComputeScore(responses, resolver)

	if !almostEqual(result.TotalScore, 0.375) {
		t.Errorf("Expected numerator 0.375, got %f", result.TotalScore)
	}
	if !almostEqual(result.TotalEffectiveWeight, 0.5) {
		t.Errorf("Expected denominator 0.5, got %f", result.TotalEffectiveWeight)
	}
	if !almostEqual(result.FinalScore, 75.0) {
		t.Errorf("Expected final score 75.0, got %f", result.FinalScore)
	}
	if result.ExcludedCount != 1 {
		t.Errorf("Expected 1 excluded response, got %d", result.ExcludedCount)
	}
}

func TestComputeScoreNAShrinksEffectiveWeight(t *testing.T) {
	// Replacing a real answer with an N/A answer for the same question must
	// shrink the denominator by the question's max weight and drop the
	// response's numerator contribution.
	resolver := NewTreeResolver(singleAreaSnapshot())

	answered := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
		{ID: 2, QuestionID: 101, OptionID: 1011, ComputedScore: 1.0},
	}
	withNA := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
		{ID: 2, QuestionID: 101, OptionID: 1012, ComputedScore: 1.0}, // N/A
	}

	before := ComputeScore(answered, resolver)
	after := ComputeScore(withNA, resolver)

	// Question 101 has max non-N/A weight 1.0 in an area weighted 0.5
	if !almostEqual(before.TotalEffectiveWeight-after.TotalEffectiveWeight, 0.5) {
		t.Errorf("Expected denominator to shrink by 0.5, got %f",
			before.TotalEffectiveWeight-after.TotalEffectiveWeight)
	}
	if !almostEqual(before.TotalScore-after.TotalScore, 0.5) {
		t.Errorf("Expected numerator to shrink by 0.5, got %f",
			before.TotalScore-after.TotalScore)
	}
}

func TestComputeScoreAllNA(t *testing.T) {
	// Every response N/A: effective weight 0, score exactly 0 by policy
	resolver := NewTreeResolver(singleAreaSnapshot())
	responses := []models.Response{
		{ID: 1, QuestionID: 101, OptionID: 1012, ComputedScore: 1.0},
	}

	result := ComputeScore(responses, resolver)

	if result.TotalEffectiveWeight != 0 {
		t.Errorf("Expected effective weight 0, got %f", result.TotalEffectiveWeight)
	}
	if result.FinalScore != 0 {
		t.Errorf("Expected final score exactly 0, got %f", result.FinalScore)
	}
}

func TestComputeScoreEmptyResponses(t *testing.T) {
	resolver := NewTreeResolver(singleAreaSnapshot())

	result := ComputeScore(nil, resolver)

	if result.FinalScore != 0 {
		t.Errorf("Expected score 0 for no responses, got %f", result.FinalScore)
	}
}

func TestComputeScoreSkipsUnresolvable(t *testing.T) {
	// A response referencing a deleted option is skipped, not fatal
	resolver := NewTreeResolver(singleAreaSnapshot())
	responses := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
		{ID: 2, QuestionID: 999, OptionID: 9999, ComputedScore: 1.0},
	}

	result := ComputeScore(responses, resolver)

	if result.SkippedCount != 1 {
		t.Errorf("Expected 1 skipped response, got %d", result.SkippedCount)
	}
	if !almostEqual(result.FinalScore, 75.0) {
		t.Errorf("Expected surviving responses to score 75.0, got %f", result.FinalScore)
	}
}

func TestComputeScoreDeterministic(t *testing.T) {
	resolver := NewTreeResolver(singleAreaSnapshot())
	responses := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
		{ID: 2, QuestionID: 101, OptionID: 1011, ComputedScore: 1.0},
	}

	first := ComputeScore(responses, resolver)
	for i := 0; i < 10; i++ {
		if got := ComputeScore(responses, resolver); got != first {
			t.Fatalf("Run %d produced %+v, expected %+v", i, got, first)
		}
	}
}

func TestComputeScoreBounds(t *testing.T) {
	resolver := NewTreeResolver(singleAreaSnapshot())

	cases := []struct {
		name      string
		responses []models.Response
	}{
		{"worst answers", []models.Response{
			{ID: 1, QuestionID: 100, OptionID: 1000, ComputedScore: 0.0},
			{ID: 2, QuestionID: 101, OptionID: 1010, ComputedScore: 0.0},
		}},
		{"best answers", []models.Response{
			{ID: 1, QuestionID: 100, OptionID: 1002, ComputedScore: 1.0},
			{ID: 2, QuestionID: 101, OptionID: 1011, ComputedScore: 1.0},
		}},
		{"mixed with NA", []models.Response{
			{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
			{ID: 2, QuestionID: 101, OptionID: 1012, ComputedScore: 1.0},
		}},
	}

	for _, tc := range cases {
		result := ComputeScore(tc.responses, resolver)
		if result.FinalScore < 0 || result.FinalScore > 100 {
			t.Errorf("%s: score %f out of [0,100]", tc.name, result.FinalScore)
		}
	}
}

func TestComputeScoreIgnoresLiveEdits(t *testing.T) {
	// Historical immutability: mutating the live tree after the snapshot was
	// taken must not change the computed score when the snapshot resolver is
	// used.
	live := &models.QuestionnaireWithDetails{
		Questionnaire: models.Questionnaire{ID: 1, Title: "Sicurezza"},
		Areas: []models.AreaWithQuestions{
			{
				Area: models.Area{ID: 10, Weight: 0.5},
				Questions: []models.QuestionWithOptions{
					{
						Question: models.Question{ID: 100, AreaID: 10},
						Options: []models.Option{
							{ID: 1001, QuestionID: 100, Weight: 0.75},
							{ID: 1002, QuestionID: 100, Weight: 1.0},
						},
					},
				},
			},
		},
	}

	snap := NewSnapshot(live)
	responses := []models.Response{
		{ID: 1, QuestionID: 100, OptionID: 1001, ComputedScore: 0.75},
	}

	before := ComputeScore(responses, NewTreeResolver(snap))

	// Admin edits after completion
	live.Areas[0].Weight = 3.0
	live.Areas[0].Questions[0].Options[0].Weight = 0.1
	live.Areas[0].Questions[0].Options[1].Weight = 5.0

	after := ComputeScore(responses, NewTreeResolver(snap))

	if before != after {
		t.Errorf("Live edits changed a snapshot-based score: %+v vs %+v", before, after)
	}
	if !almostEqual(after.FinalScore, 75.0) {
		t.Errorf("Expected final score 75.0, got %f", after.FinalScore)
	}
}
