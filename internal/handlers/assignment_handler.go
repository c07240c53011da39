package handlers

import (
	"encoding/json"
	"net/http"

	"hse-compliance/internal/middleware"
	"hse-compliance/internal/service"
)

// DispatchRequest represents the request body for dispatching a questionnaire
type DispatchRequest struct {
	QuestionnaireID uint   `json:"questionnaire_id"`
	SupplierID      uint   `json:"supplier_id"`
	InspectorEmail  string `json:"inspector_email"`
}

// EditResponsesRequest represents the request body for the admin edit flow
type EditResponsesRequest struct {
	Answers []service.Answer `json:"answers"`
}

// AssignmentHandler handles assignment, dispatch and report requests
type AssignmentHandler struct {
	dispatchService *service.DispatchService
	intakeService   *service.IntakeService
	reportService   *service.ReportService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(
	dispatchService *service.DispatchService,
	intakeService *service.IntakeService,
	reportService *service.ReportService,
) *AssignmentHandler {
	return &AssignmentHandler{
		dispatchService: dispatchService,
		intakeService:   intakeService,
		reportService:   reportService,
	}
}

// Dispatch assigns a questionnaire to an inspector
// @Summary Dispatch questionnaire
// @Description Create an assignment, freeze the questionnaire structure and email the intake link
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DispatchRequest true "Dispatch data"
// @Success 201 {object} models.Assignment
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /assignments [post]
func (h *AssignmentHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	assignment, err := h.dispatchService.Dispatch(req.QuestionnaireID, req.SupplierID, req.InspectorEmail, userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, assignment)
}

// GetAllAssignments retrieves all assignments with details
// @Summary Get all assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AssignmentWithDetails
// @Router /assignments [get]
func (h *AssignmentHandler) GetAllAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.dispatchService.GetAssignments()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, assignments)
}

// GetAssignment retrieves one assignment
// @Summary Get assignment by ID
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 404 {object} map[string]string "Not found"
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	assignment, err := h.dispatchService.GetAssignmentByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if assignment == nil {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	JSONResponse(w, assignment)
}

// ResendInvitation re-sends the intake link for a pending assignment
// @Summary Resend invitation
// @Tags Assignments
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Not pending"
// @Router /assignments/{id}/resend [post]
func (h *AssignmentHandler) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.dispatchService.ResendInvitation(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EditResponses replaces the responses of a completed assignment
// @Summary Edit assignment responses
// @Description Replace the responses and recompute the score against the original snapshot
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body EditResponsesRequest true "New answers"
// @Success 200 {object} service.SubmissionResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /assignments/{id}/responses [put]
func (h *AssignmentHandler) EditResponses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	var req EditResponsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.intakeService.EditResponses(id, req.Answers, userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, result)
}

// DeleteAssignment removes an assignment
// @Summary Delete assignment
// @Tags Assignments
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.dispatchService.DeleteAssignment(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportAssignmentsCSV downloads all assignments with outcomes as CSV
// @Summary Export assignments report
// @Tags Assignments
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV content"
// @Router /assignments/report [get]
func (h *AssignmentHandler) ExportAssignmentsCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.reportService.AssignmentsCSV()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="assignments.csv"`)
	w.Write(data)
}

// ExportSupplierAssignmentsCSV downloads one supplier's assignments as CSV
// @Summary Export supplier report
// @Tags Assignments
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 200 {string} string "CSV content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /suppliers/{id}/report [get]
func (h *AssignmentHandler) ExportSupplierAssignmentsCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	data, err := h.reportService.SupplierAssignmentsCSV(id)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="supplier-assignments.csv"`)
	w.Write(data)
}
