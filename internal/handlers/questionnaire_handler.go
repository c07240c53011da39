package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"hse-compliance/internal/middleware"
	"hse-compliance/internal/models"
	"hse-compliance/internal/service"
)

// QuestionnaireRequest represents the request body for questionnaires
type QuestionnaireRequest struct {
	Title       string `json:"title"`
	Description *string `json:"description"`
}

// AreaRequest represents the request body for areas
type AreaRequest struct {
	Title     string  `json:"title"`
	Weight    float64 `json:"weight"`
	SortOrder int     `json:"sort_order"`
}

// QuestionRequest represents the request body for questions
type QuestionRequest struct {
	Text      string `json:"text"`
	Required  bool   `json:"required"`
	SortOrder int    `json:"sort_order"`
}

// OptionRequest represents the request body for options
type OptionRequest struct {
	Text      string  `json:"text"`
	Weight    float64 `json:"weight"`
	SortOrder int     `json:"sort_order"`
	IsNA      bool    `json:"is_na"`
}

// QuestionnaireHandler handles questionnaire template requests
type QuestionnaireHandler struct {
	questionnaireService *service.QuestionnaireService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireService *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireService: questionnaireService}
}

func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func serviceError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		http.Error(w, msg, http.StatusNotFound)
	case strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "weight") ||
		strings.Contains(msg, "has no") ||
		strings.Contains(msg, "only N/A") ||
		strings.Contains(msg, "already published") ||
		strings.Contains(msg, "not published") ||
		strings.Contains(msg, "suspended") ||
		strings.Contains(msg, "not pending") ||
		strings.Contains(msg, "not completed") ||
		strings.Contains(msg, "not active") ||
		strings.Contains(msg, "not suspended") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "does not") ||
		strings.Contains(msg, "not part of") ||
		strings.Contains(msg, "no longer pending") ||
		strings.Contains(msg, "must be"):
		http.Error(w, msg, http.StatusBadRequest)
	default:
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// GetAllQuestionnaires retrieves all questionnaires
// @Summary Get all questionnaires
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Questionnaire
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) GetAllQuestionnaires(w http.ResponseWriter, r *http.Request) {
	questionnaires, err := h.questionnaireService.GetAllQuestionnaires()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, questionnaires)
}

// GetQuestionnaire retrieves a questionnaire with its full tree
// @Summary Get questionnaire by ID
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} models.QuestionnaireWithDetails
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not found"
// @Router /questionnaires/{id} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	details, err := h.questionnaireService.GetQuestionnaireWithDetails(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if details == nil {
		http.Error(w, "Questionnaire not found", http.StatusNotFound)
		return
	}

	JSONResponse(w, details)
}

// CreateQuestionnaire creates a new draft questionnaire
// @Summary Create questionnaire
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QuestionnaireRequest true "Questionnaire data"
// @Success 201 {object} models.Questionnaire
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /questionnaires [post]
func (h *QuestionnaireHandler) CreateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req QuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := &models.Questionnaire{Title: req.Title, Description: req.Description}
	if err := h.questionnaireService.CreateQuestionnaire(q, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, q)
}

// UpdateQuestionnaire updates a questionnaire's title and description
// @Summary Update questionnaire
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Param request body QuestionnaireRequest true "Questionnaire data"
// @Success 200 {object} models.Questionnaire
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Not found"
// @Router /questionnaires/{id} [put]
func (h *QuestionnaireHandler) UpdateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	var req QuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	q := &models.Questionnaire{ID: id, Title: req.Title, Description: req.Description}
	if err := h.questionnaireService.UpdateQuestionnaire(q, userID); err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, q)
}

// PublishQuestionnaire publishes a draft questionnaire
// @Summary Publish questionnaire
// @Description Validate the questionnaire structure and mark it dispatchable
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Structure invalid"
// @Failure 404 {object} map[string]string "Not found"
// @Router /questionnaires/{id}/publish [post]
func (h *QuestionnaireHandler) PublishQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.questionnaireService.PublishQuestionnaire(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteQuestionnaire deletes a questionnaire
// @Summary Delete questionnaire
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /questionnaires/{id} [delete]
func (h *QuestionnaireHandler) DeleteQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.questionnaireService.DeleteQuestionnaire(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportQuestionnaire exports a questionnaire tree as JSON
// @Summary Export questionnaire
// @Description Download the questionnaire structure as portable JSON
// @Tags Questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} service.QuestionnaireExport
// @Failure 404 {object} map[string]string "Not found"
// @Router /questionnaires/{id}/export [get]
func (h *QuestionnaireHandler) ExportQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	data, err := h.questionnaireService.ExportQuestionnaire(id)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="questionnaire.json"`)
	w.Write(data)
}

// ImportQuestionnaire creates a draft questionnaire from exported JSON
// @Summary Import questionnaire
// @Description Create a new draft questionnaire from a JSON export
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.QuestionnaireExport true "Exported questionnaire"
// @Success 201 {object} models.Questionnaire
// @Failure 400 {object} map[string]string "Invalid export"
// @Router /questionnaires/import [post]
func (h *QuestionnaireHandler) ImportQuestionnaire(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	q, err := h.questionnaireService.ImportQuestionnaire(data, userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, q)
}

// CreateArea adds an area to a questionnaire
// @Summary Create area
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Param request body AreaRequest true "Area data"
// @Success 201 {object} models.Area
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /questionnaires/{id}/areas [post]
func (h *QuestionnaireHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	questionnaireID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid questionnaire ID", http.StatusBadRequest)
		return
	}

	var req AreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	area := &models.Area{
		QuestionnaireID: questionnaireID,
		Title:           req.Title,
		Weight:          req.Weight,
		SortOrder:       req.SortOrder,
	}
	if err := h.questionnaireService.CreateArea(area); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, area)
}

// UpdateArea updates an area
// @Summary Update area
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Area ID"
// @Param request body AreaRequest true "Area data"
// @Success 200 {object} models.Area
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /areas/{id} [put]
func (h *QuestionnaireHandler) UpdateArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid area ID", http.StatusBadRequest)
		return
	}

	var req AreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	area := &models.Area{ID: id, Title: req.Title, Weight: req.Weight, SortOrder: req.SortOrder}
	if err := h.questionnaireService.UpdateArea(area); err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, area)
}

// DeleteArea removes an area
// @Summary Delete area
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path int true "Area ID"
// @Success 204 "No content"
// @Router /areas/{id} [delete]
func (h *QuestionnaireHandler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid area ID", http.StatusBadRequest)
		return
	}

	if err := h.questionnaireService.DeleteArea(id); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateQuestion adds a question to an area
// @Summary Create question
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Area ID"
// @Param request body QuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /areas/{id}/questions [post]
func (h *QuestionnaireHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid area ID", http.StatusBadRequest)
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	question := &models.Question{
		AreaID:    areaID,
		Text:      req.Text,
		Required:  req.Required,
		SortOrder: req.SortOrder,
	}
	if err := h.questionnaireService.CreateQuestion(question); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, question)
}

// UpdateQuestion updates a question
// @Summary Update question
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body QuestionRequest true "Question data"
// @Success 200 {object} models.Question
// @Router /questions/{id} [put]
func (h *QuestionnaireHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question ID", http.StatusBadRequest)
		return
	}

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	question := &models.Question{ID: id, Text: req.Text, Required: req.Required, SortOrder: req.SortOrder}
	if err := h.questionnaireService.UpdateQuestion(question); err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, question)
}

// DeleteQuestion removes a question
// @Summary Delete question
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204 "No content"
// @Router /questions/{id} [delete]
func (h *QuestionnaireHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question ID", http.StatusBadRequest)
		return
	}

	if err := h.questionnaireService.DeleteQuestion(id); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateOption adds an option to a question
// @Summary Create option
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body OptionRequest true "Option data"
// @Success 201 {object} models.Option
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /questions/{id}/options [post]
func (h *QuestionnaireHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid question ID", http.StatusBadRequest)
		return
	}

	var req OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	option := &models.Option{
		QuestionID: questionID,
		Text:       req.Text,
		Weight:     req.Weight,
		SortOrder:  req.SortOrder,
		IsNA:       req.IsNA,
	}
	if err := h.questionnaireService.CreateOption(option); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, option)
}

// UpdateOption updates an option
// @Summary Update option
// @Tags Questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Option ID"
// @Param request body OptionRequest true "Option data"
// @Success 200 {object} models.Option
// @Router /options/{id} [put]
func (h *QuestionnaireHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid option ID", http.StatusBadRequest)
		return
	}

	var req OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	option := &models.Option{ID: id, Text: req.Text, Weight: req.Weight, SortOrder: req.SortOrder, IsNA: req.IsNA}
	if err := h.questionnaireService.UpdateOption(option); err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, option)
}

// DeleteOption removes an option
// @Summary Delete option
// @Tags Questionnaires
// @Security BearerAuth
// @Param id path int true "Option ID"
// @Success 204 "No content"
// @Router /options/{id} [delete]
func (h *QuestionnaireHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid option ID", http.StatusBadRequest)
		return
	}

	if err := h.questionnaireService.DeleteOption(id); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
