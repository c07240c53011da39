package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hse-compliance/internal/config"
	"hse-compliance/internal/email"
	"hse-compliance/internal/handlers"
	"hse-compliance/internal/middleware"
	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/service"
	"hse-compliance/internal/testutil"
)

type intakeEnv struct {
	mux             *http.ServeMux
	fixtures        *testutil.Fixtures
	authHelper      *testutil.AuthHelper
	dispatchService *service.DispatchService
}

func setupIntakeEnv(t *testing.T, containers *testutil.TestContainers) *intakeEnv {
	t.Helper()

	fixtures := testutil.SetupFixtures(t, containers.DB)
	authHelper := testutil.NewAuthHelper(containers.DB)

	sessionRepo := repository.NewSessionRepository(containers.DB)
	auditRepo := repository.NewAuditRepository(containers.DB)
	supplierRepo := repository.NewSupplierRepository(containers.DB)
	questionnaireRepo := repository.NewQuestionnaireRepository(containers.DB)
	assignmentRepo := repository.NewAssignmentRepository(containers.DB)

	// Unreachable SMTP host: dispatch tolerates email failures
	emailService := email.NewService(&config.EmailConfig{
		SMTPHost:  "localhost",
		SMTPPort:  "1",
		SMTPFrom:  "noreply@test.local",
		IntakeURL: "http://localhost:3000/intake",
	})

	dispatchService := service.NewDispatchService(assignmentRepo, questionnaireRepo, supplierRepo, auditRepo, emailService)
	intakeService := service.NewIntakeService(assignmentRepo, supplierRepo, questionnaireRepo, auditRepo)
	reportService := service.NewReportService(assignmentRepo, supplierRepo)

	assignmentHandler := handlers.NewAssignmentHandler(dispatchService, intakeService, reportService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)

	authMw := middleware.NewAuthMiddleware(authHelper.Service, sessionRepo)
	rbacMw := middleware.NewRBACMiddleware(containers.DB)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/intake/{token}", intakeHandler.GetIntake)
	mux.HandleFunc("POST /api/v1/intake/{token}", intakeHandler.SubmitIntake)
	mux.Handle("PUT /api/v1/assignments/{id}/responses",
		authMw.Authenticate(rbacMw.RequireRole("admin")(http.HandlerFunc(assignmentHandler.EditResponses))))

	return &intakeEnv{
		mux:             mux,
		fixtures:        fixtures,
		authHelper:      authHelper,
		dispatchService: dispatchService,
	}
}

func TestIntakeFlow(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	env := setupIntakeEnv(t, containers)

	assignment, err := env.dispatchService.Dispatch(
		env.fixtures.Questionnaire.ID, env.fixtures.Supplier.ID,
		"ispettore@example.com", env.fixtures.AdminUser.ID)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	// The intake view is public and shows the frozen structure
	req := httptest.NewRequest("GET", "/api/v1/intake/"+assignment.Token, nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET intake status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var view service.IntakeView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode intake view: %v", err)
	}
	if view.Status != models.AssignmentPending {
		t.Errorf("Status = %q, want pending", view.Status)
	}
	if view.SupplierName != env.fixtures.Supplier.Name {
		t.Errorf("SupplierName = %q", view.SupplierName)
	}
	if view.Structure == nil || len(view.Structure.Areas) == 0 {
		t.Fatal("Intake view is missing the questionnaire structure")
	}

	// Answer every question with its best option
	answers := []service.Answer{}
	for _, area := range view.Structure.Areas {
		for _, question := range area.Questions {
			best := question.Options[0]
			for _, option := range question.Options {
				if !option.IsNA && option.Weight > best.Weight {
					best = option
				}
			}
			answers = append(answers, service.Answer{QuestionID: question.ID, OptionID: best.ID})
		}
	}

	body, _ := json.Marshal(map[string]interface{}{"answers": answers})
	req = httptest.NewRequest("POST", "/api/v1/intake/"+assignment.Token, bytes.NewReader(body))
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST intake status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var result service.SubmissionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode submission result: %v", err)
	}
	if result.FinalScore != 100 {
		t.Errorf("FinalScore = %.2f, want 100.00", result.FinalScore)
	}
	if result.RatingLabel != "Eccellente" {
		t.Errorf("RatingLabel = %q, want Eccellente", result.RatingLabel)
	}
	if result.AlreadyCompleted {
		t.Error("First submission flagged as already completed")
	}

	// Resubmission returns the stored result unchanged
	req = httptest.NewRequest("POST", "/api/v1/intake/"+assignment.Token, bytes.NewReader(body))
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Resubmission status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode resubmission result: %v", err)
	}
	if !result.AlreadyCompleted {
		t.Error("Resubmission should be flagged as already completed")
	}
	if result.FinalScore != 100 {
		t.Errorf("Resubmission changed the score to %.2f", result.FinalScore)
	}
}

func TestIntakeUnknownToken(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	env := setupIntakeEnv(t, containers)

	req := httptest.NewRequest("GET", "/api/v1/intake/not-a-real-token", nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET intake with unknown token status = %d, want 404", rec.Code)
	}
}

func TestEditResponsesUsesLiveWeights(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	env := setupIntakeEnv(t, containers)

	assignment, err := env.dispatchService.Dispatch(
		env.fixtures.Questionnaire.ID, env.fixtures.Supplier.ID,
		"ispettore@example.com", env.fixtures.AdminUser.ID)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/intake/"+assignment.Token, nil)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET intake status = %d", rec.Code)
	}

	var view service.IntakeView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode intake view: %v", err)
	}
	if len(view.Structure.Areas) != 2 {
		t.Fatalf("Expected 2 areas, got %d", len(view.Structure.Areas))
	}

	// One best answer per question; remember the first question's best option
	// and the second question's N/A option for the edits below
	answers := []service.Answer{}
	var firstQuestionID, firstBestOptionID uint
	var secondQuestionID, secondNAOptionID uint
	for areaIdx, area := range view.Structure.Areas {
		for _, question := range area.Questions {
			best := question.Options[0]
			for _, option := range question.Options {
				if option.IsNA {
					if areaIdx == 1 {
						secondQuestionID = question.ID
						secondNAOptionID = option.ID
					}
					continue
				}
				if best.IsNA || option.Weight > best.Weight {
					best = option
				}
			}
			if areaIdx == 0 {
				firstQuestionID = question.ID
				firstBestOptionID = best.ID
			}
			answers = append(answers, service.Answer{QuestionID: question.ID, OptionID: best.ID})
		}
	}

	body, _ := json.Marshal(map[string]interface{}{"answers": answers})
	req = httptest.NewRequest("POST", "/api/v1/intake/"+assignment.Token, bytes.NewReader(body))
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST intake status = %d, body: %s", rec.Code, rec.Body.String())
	}

	// Lower the live weight of the first question's best option (5 -> 2).
	// The snapshot keeps the original denominator, so the edited score is
	// (2*2 + 5*1) / (5*2 + 5*1) * 100 = 60.
	if _, err := env.fixtures.DB.Exec(`UPDATE options SET weight = 2 WHERE id = $1`, firstBestOptionID); err != nil {
		t.Fatalf("Failed to change live option weight: %v", err)
	}

	url := fmt.Sprintf("/api/v1/assignments/%d/responses", assignment.ID)
	req = httptest.NewRequest("PUT", url, bytes.NewReader(body))
	env.authHelper.AddAuthHeader(t, req, env.fixtures.AdminUser)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT edit status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var result service.SubmissionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode edit result: %v", err)
	}
	if result.FinalScore != 60 {
		t.Errorf("Edited FinalScore = %.2f, want 60.00 (live weight)", result.FinalScore)
	}
	if result.RatingLabel != "Adeguato" {
		t.Errorf("Edited RatingLabel = %q, want Adeguato", result.RatingLabel)
	}

	var stored float64
	err = env.fixtures.DB.QueryRow(`
		SELECT computed_score FROM responses WHERE assignment_id = $1 AND question_id = $2
	`, assignment.ID, firstQuestionID).Scan(&stored)
	if err != nil {
		t.Fatalf("Failed to read stored response: %v", err)
	}
	if stored != 2 {
		t.Errorf("Stored computed_score = %.2f, want 2.00 (current live weight)", stored)
	}

	// Switching the second answer to N/A stores the question's best live
	// weight as a reference value and drops it from both sides of the ratio:
	// (2*2) / (5*2) * 100 = 40.
	edited := []service.Answer{}
	for _, answer := range answers {
		if answer.QuestionID == secondQuestionID {
			answer.OptionID = secondNAOptionID
		}
		edited = append(edited, answer)
	}
	body, _ = json.Marshal(map[string]interface{}{"answers": edited})
	req = httptest.NewRequest("PUT", url, bytes.NewReader(body))
	env.authHelper.AddAuthHeader(t, req, env.fixtures.AdminUser)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT N/A edit status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode N/A edit result: %v", err)
	}
	if result.FinalScore != 40 {
		t.Errorf("N/A-edited FinalScore = %.2f, want 40.00", result.FinalScore)
	}
	if result.RatingLabel != "Critico" {
		t.Errorf("N/A-edited RatingLabel = %q, want Critico", result.RatingLabel)
	}

	err = env.fixtures.DB.QueryRow(`
		SELECT computed_score FROM responses WHERE assignment_id = $1 AND question_id = $2
	`, assignment.ID, secondQuestionID).Scan(&stored)
	if err != nil {
		t.Fatalf("Failed to read stored N/A response: %v", err)
	}
	if stored != 5 {
		t.Errorf("N/A computed_score = %.2f, want 5.00 (best live non-N/A weight)", stored)
	}
}

func TestEditResponsesRequiresAdminRole(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	env := setupIntakeEnv(t, containers)

	assignment, err := env.dispatchService.Dispatch(
		env.fixtures.Questionnaire.ID, env.fixtures.Supplier.ID,
		"ispettore@example.com", env.fixtures.AdminUser.ID)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	url := fmt.Sprintf("/api/v1/assignments/%d/responses", assignment.ID)
	body := []byte(`{"answers":[]}`)

	// Without a token
	req := httptest.NewRequest("PUT", url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Unauthenticated edit status = %d, want 401", rec.Code)
	}

	// As an HSE manager without the admin role
	req = httptest.NewRequest("PUT", url, bytes.NewReader(body))
	env.authHelper.AddAuthHeader(t, req, env.fixtures.ManagerUser)
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Manager edit status = %d, want 403. Body: %s", rec.Code, rec.Body.String())
	}
}
