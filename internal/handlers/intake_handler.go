package handlers

import (
	"encoding/json"
	"net/http"

	"hse-compliance/internal/service"
)

// SubmitRequest represents the public submission body
type SubmitRequest struct {
	Answers []service.Answer `json:"answers"`
}

// IntakeHandler handles the public, token-authenticated intake flow
type IntakeHandler struct {
	intakeService *service.IntakeService
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// GetIntake resolves an intake link to its questionnaire view
// @Summary Open intake link
// @Description Get the frozen questionnaire structure for an assignment token. No login required.
// @Tags Intake
// @Produce json
// @Param token path string true "Assignment token"
// @Success 200 {object} service.IntakeView
// @Failure 404 {object} map[string]string "Unknown token"
// @Router /intake/{token} [get]
func (h *IntakeHandler) GetIntake(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	view, err := h.intakeService.GetByToken(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if view == nil {
		// Same response for unknown and revoked tokens
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	JSONResponse(w, view)
}

// SubmitIntake records an inspector's answers and returns the score
// @Summary Submit questionnaire
// @Description Submit answers for an assignment token. Resubmission returns the stored result unchanged.
// @Tags Intake
// @Accept json
// @Produce json
// @Param token path string true "Assignment token"
// @Param request body SubmitRequest true "Answers"
// @Success 200 {object} service.SubmissionResult
// @Failure 400 {object} map[string]string "Invalid answers"
// @Failure 404 {object} map[string]string "Unknown token"
// @Router /intake/{token} [post]
func (h *IntakeHandler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.intakeService.Submit(token, req.Answers)
	if err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, result)
}
