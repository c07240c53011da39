package repository_test

import (
	"testing"

	"hse-compliance/internal/auth"
	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/scoring"
	"hse-compliance/internal/testutil"
)

func dispatchTestAssignment(t *testing.T, repo *repository.AssignmentRepository, questionnaireRepo *repository.QuestionnaireRepository, fixtures *testutil.Fixtures) *models.Assignment {
	t.Helper()

	details, err := questionnaireRepo.GetWithDetails(fixtures.Questionnaire.ID)
	if err != nil {
		t.Fatalf("Failed to load questionnaire tree: %v", err)
	}

	snapshot, err := scoring.NewSnapshot(details).Marshal()
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	token, err := auth.NewAssignmentToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	assignment := &models.Assignment{
		QuestionnaireID:   fixtures.Questionnaire.ID,
		SupplierID:        fixtures.Supplier.ID,
		InspectorEmail:    "ispettore@example.com",
		CreatedBy:         &fixtures.AdminUser.ID,
		Status:            models.AssignmentPending,
		Token:             token,
		StructureSnapshot: snapshot,
	}
	if err := repo.Create(assignment); err != nil {
		t.Fatalf("Failed to create assignment: %v", err)
	}

	return assignment
}

// bestAnswers selects the highest-weight non-N/A option for every question
func bestAnswers(t *testing.T, assignmentID uint, snapshotData []byte) []models.Response {
	t.Helper()

	snap, err := scoring.ParseSnapshot(snapshotData)
	if err != nil {
		t.Fatalf("Failed to parse snapshot: %v", err)
	}

	responses := []models.Response{}
	for _, area := range snap.Areas {
		for _, question := range area.Questions {
			var best scoring.OptionSnapshot
			found := false
			for _, option := range question.Options {
				if option.IsNA {
					continue
				}
				if !found || option.Weight > best.Weight {
					best = option
					found = true
				}
			}
			if !found {
				t.Fatalf("Question %d has no scorable options", question.ID)
			}
			responses = append(responses, models.Response{
				AssignmentID:  assignmentID,
				QuestionID:    question.ID,
				OptionID:      best.ID,
				ComputedScore: best.Weight,
			})
		}
	}

	return responses
}

func TestCompleteWithResponsesIsIdempotent(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	assignmentRepo := repository.NewAssignmentRepository(containers.DB)
	questionnaireRepo := repository.NewQuestionnaireRepository(containers.DB)

	assignment := dispatchTestAssignment(t, assignmentRepo, questionnaireRepo, fixtures)
	responses := bestAnswers(t, assignment.ID, assignment.StructureSnapshot)

	completed, err := assignmentRepo.CompleteWithResponses(assignment.ID, responses, 100, "Eccellente")
	if err != nil {
		t.Fatalf("First submission failed: %v", err)
	}
	if !completed {
		t.Fatal("First submission should complete the assignment")
	}

	// Second submission with different answers must change nothing
	altered := bestAnswers(t, assignment.ID, assignment.StructureSnapshot)
	for i := range altered {
		altered[i].ComputedScore = 0
	}
	completed, err = assignmentRepo.CompleteWithResponses(assignment.ID, altered, 0, "Inadeguato")
	if err != nil {
		t.Fatalf("Second submission failed: %v", err)
	}
	if completed {
		t.Error("Second submission should not complete an already completed assignment")
	}

	record, err := assignmentRepo.GetScoreRecord(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to get score record: %v", err)
	}
	if record == nil {
		t.Fatal("Score record missing after completion")
	}
	if record.FinalScore != 100 || record.Rating != "Eccellente" {
		t.Errorf("Score record changed by resubmission: %.1f (%s)", record.FinalScore, record.Rating)
	}

	stored, err := assignmentRepo.GetResponses(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to get responses: %v", err)
	}
	if len(stored) != len(responses) {
		t.Errorf("Got %d responses, want %d", len(stored), len(responses))
	}
	for _, resp := range stored {
		if resp.ComputedScore == 0 {
			t.Error("Resubmission overwrote a stored response")
		}
	}
}

func TestSnapshotShieldsScoresFromLiveEdits(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	assignmentRepo := repository.NewAssignmentRepository(containers.DB)
	questionnaireRepo := repository.NewQuestionnaireRepository(containers.DB)

	assignment := dispatchTestAssignment(t, assignmentRepo, questionnaireRepo, fixtures)

	// Gut the live questionnaire after dispatch
	if _, err := containers.DB.Exec(`UPDATE options SET weight = 0`); err != nil {
		t.Fatalf("Failed to edit live options: %v", err)
	}
	if _, err := containers.DB.Exec(`UPDATE areas SET weight = 99`); err != nil {
		t.Fatalf("Failed to edit live areas: %v", err)
	}

	stored, err := assignmentRepo.GetByID(assignment.ID)
	if err != nil {
		t.Fatalf("Failed to reload assignment: %v", err)
	}

	snap, err := scoring.ParseSnapshot(stored.StructureSnapshot)
	if err != nil {
		t.Fatalf("Failed to parse stored snapshot: %v", err)
	}

	resolver := scoring.NewTreeResolver(snap)
	responses := bestAnswers(t, assignment.ID, stored.StructureSnapshot)
	result := scoring.ComputeScore(responses, resolver)

	if result.FinalScore != 100 {
		t.Errorf("Snapshot-based score = %.2f, want 100.00 regardless of live edits", result.FinalScore)
	}
}

func TestGetByTokenUnknownToken(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	testutil.SetupFixtures(t, containers.DB)
	assignmentRepo := repository.NewAssignmentRepository(containers.DB)

	assignment, err := assignmentRepo.GetByToken("no-such-token")
	if err != nil {
		t.Fatalf("GetByToken returned error: %v", err)
	}
	if assignment != nil {
		t.Error("GetByToken should return nil for an unknown token")
	}
}
