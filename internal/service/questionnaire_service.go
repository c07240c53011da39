package service

import (
	"encoding/json"
	"fmt"

	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/pkg/validator"
)

// QuestionnaireService handles business logic for questionnaire templates
type QuestionnaireService struct {
	questionnaireRepo *repository.QuestionnaireRepository
	auditRepo         *repository.AuditRepository
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(questionnaireRepo *repository.QuestionnaireRepository, auditRepo *repository.AuditRepository) *QuestionnaireService {
	return &QuestionnaireService{
		questionnaireRepo: questionnaireRepo,
		auditRepo:         auditRepo,
	}
}

// CreateQuestionnaire creates a new questionnaire in draft status
func (s *QuestionnaireService) CreateQuestionnaire(q *models.Questionnaire, userID uint) error {
	if q.Title == "" {
		return fmt.Errorf("title is required")
	}

	q.Status = models.QuestionnaireDraft
	q.CreatedBy = &userID

	if err := s.questionnaireRepo.Create(q); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "create",
		Resource: "questionnaire",
		Details:  fmt.Sprintf("Created questionnaire: %s (ID: %d)", q.Title, q.ID),
	})

	return nil
}

// GetQuestionnaireByID retrieves a questionnaire by ID
func (s *QuestionnaireService) GetQuestionnaireByID(id uint) (*models.Questionnaire, error) {
	return s.questionnaireRepo.GetByID(id)
}

// GetQuestionnaireWithDetails retrieves a questionnaire with its full tree
func (s *QuestionnaireService) GetQuestionnaireWithDetails(id uint) (*models.QuestionnaireWithDetails, error) {
	return s.questionnaireRepo.GetWithDetails(id)
}

// GetAllQuestionnaires retrieves all questionnaires
func (s *QuestionnaireService) GetAllQuestionnaires() ([]models.Questionnaire, error) {
	return s.questionnaireRepo.List()
}

// UpdateQuestionnaire updates a questionnaire's title and description.
// Editing a published questionnaire is allowed; completed assignments are
// unaffected because they score against their stored snapshot.
func (s *QuestionnaireService) UpdateQuestionnaire(q *models.Questionnaire, userID uint) error {
	existing, err := s.questionnaireRepo.GetByID(q.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("questionnaire not found")
	}
	if q.Title == "" {
		return fmt.Errorf("title is required")
	}

	q.Status = existing.Status
	if err := s.questionnaireRepo.Update(q); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "update",
		Resource: "questionnaire",
		Details:  fmt.Sprintf("Updated questionnaire: %s (ID: %d)", q.Title, q.ID),
	})

	return nil
}

// PublishQuestionnaire moves a questionnaire from draft to published after
// structural validation
func (s *QuestionnaireService) PublishQuestionnaire(id uint, userID uint) error {
	details, err := s.questionnaireRepo.GetWithDetails(id)
	if err != nil {
		return err
	}
	if details == nil {
		return fmt.Errorf("questionnaire not found")
	}
	if details.Status == models.QuestionnairePublished {
		return fmt.Errorf("questionnaire is already published")
	}

	if err := validateStructure(details); err != nil {
		return err
	}

	q := details.Questionnaire
	q.Status = models.QuestionnairePublished
	if err := s.questionnaireRepo.Update(&q); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "publish",
		Resource: "questionnaire",
		Details:  fmt.Sprintf("Published questionnaire: %s (ID: %d)", q.Title, q.ID),
	})

	return nil
}

// validateStructure checks that a questionnaire is dispatchable: every area
// carries a positive weight and every question has at least one scorable
// (non-N/A) option
func validateStructure(details *models.QuestionnaireWithDetails) error {
	if len(details.Areas) == 0 {
		return fmt.Errorf("questionnaire has no areas")
	}

	for _, area := range details.Areas {
		if area.Weight <= 0 {
			return fmt.Errorf("area %q has non-positive weight %.2f", area.Title, area.Weight)
		}
		if len(area.Questions) == 0 {
			return fmt.Errorf("area %q has no questions", area.Title)
		}
		for _, question := range area.Questions {
			if len(question.Options) == 0 {
				return fmt.Errorf("question %q has no options", question.Text)
			}
			hasScorable := false
			for _, option := range question.Options {
				if option.Weight < 0 {
					return fmt.Errorf("option %q has negative weight %.2f", option.Text, option.Weight)
				}
				if !option.IsNA {
					hasScorable = true
				}
			}
			if !hasScorable {
				return fmt.Errorf("question %q has only N/A options", question.Text)
			}
		}
	}

	return nil
}

// DeleteQuestionnaire removes a questionnaire and its tree
func (s *QuestionnaireService) DeleteQuestionnaire(id uint, userID uint) error {
	existing, err := s.questionnaireRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("questionnaire not found")
	}

	if err := s.questionnaireRepo.Delete(id); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "delete",
		Resource: "questionnaire",
		Details:  fmt.Sprintf("Deleted questionnaire: %s (ID: %d)", existing.Title, id),
	})

	return nil
}

// CreateArea adds an area to a questionnaire
func (s *QuestionnaireService) CreateArea(area *models.Area) error {
	if area.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := validator.ValidateWeight("weight", area.Weight, false); err != nil {
		return err
	}

	q, err := s.questionnaireRepo.GetByID(area.QuestionnaireID)
	if err != nil {
		return err
	}
	if q == nil {
		return fmt.Errorf("questionnaire not found")
	}

	return s.questionnaireRepo.CreateArea(area)
}

// UpdateArea updates an area
func (s *QuestionnaireService) UpdateArea(area *models.Area) error {
	if area.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := validator.ValidateWeight("weight", area.Weight, false); err != nil {
		return err
	}
	return s.questionnaireRepo.UpdateArea(area)
}

// DeleteArea removes an area
func (s *QuestionnaireService) DeleteArea(id uint) error {
	return s.questionnaireRepo.DeleteArea(id)
}

// CreateQuestion adds a question to an area
func (s *QuestionnaireService) CreateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("text is required")
	}

	area, err := s.questionnaireRepo.GetArea(question.AreaID)
	if err != nil {
		return err
	}
	if area == nil {
		return fmt.Errorf("area not found")
	}

	return s.questionnaireRepo.CreateQuestion(question)
}

// UpdateQuestion updates a question
func (s *QuestionnaireService) UpdateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("text is required")
	}
	return s.questionnaireRepo.UpdateQuestion(question)
}

// DeleteQuestion removes a question
func (s *QuestionnaireService) DeleteQuestion(id uint) error {
	return s.questionnaireRepo.DeleteQuestion(id)
}

// CreateOption adds an answer option to a question. N/A options keep whatever
// weight was submitted but the weight never enters a score.
func (s *QuestionnaireService) CreateOption(option *models.Option) error {
	if option.Text == "" {
		return fmt.Errorf("text is required")
	}
	if err := validator.ValidateWeight("weight", option.Weight, true); err != nil {
		return err
	}

	question, err := s.questionnaireRepo.GetQuestion(option.QuestionID)
	if err != nil {
		return err
	}
	if question == nil {
		return fmt.Errorf("question not found")
	}

	return s.questionnaireRepo.CreateOption(option)
}

// UpdateOption updates an option
func (s *QuestionnaireService) UpdateOption(option *models.Option) error {
	if option.Text == "" {
		return fmt.Errorf("text is required")
	}
	if err := validator.ValidateWeight("weight", option.Weight, true); err != nil {
		return err
	}
	return s.questionnaireRepo.UpdateOption(option)
}

// DeleteOption removes an option
func (s *QuestionnaireService) DeleteOption(id uint) error {
	return s.questionnaireRepo.DeleteOption(id)
}

// QuestionnaireExport is the portable JSON representation of a questionnaire
// tree. IDs are omitted so an export can be imported into any environment.
type QuestionnaireExport struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Areas       []AreaExport `json:"areas"`
}

// AreaExport is one exported area
type AreaExport struct {
	Title     string           `json:"title"`
	Weight    float64          `json:"weight"`
	SortOrder int              `json:"sort_order"`
	Questions []QuestionExport `json:"questions"`
}

// QuestionExport is one exported question
type QuestionExport struct {
	Text      string         `json:"text"`
	Required  bool           `json:"required"`
	SortOrder int            `json:"sort_order"`
	Options   []OptionExport `json:"options"`
}

// OptionExport is one exported option
type OptionExport struct {
	Text      string  `json:"text"`
	Weight    float64 `json:"weight"`
	SortOrder int     `json:"sort_order"`
	IsNA      bool    `json:"is_na"`
}

// ExportQuestionnaire serializes a questionnaire tree to portable JSON
func (s *QuestionnaireService) ExportQuestionnaire(id uint) ([]byte, error) {
	details, err := s.questionnaireRepo.GetWithDetails(id)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, fmt.Errorf("questionnaire not found")
	}

	export := BuildExport(details)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize questionnaire: %w", err)
	}

	return data, nil
}

// BuildExport converts a questionnaire tree into its portable form
func BuildExport(details *models.QuestionnaireWithDetails) *QuestionnaireExport {
	export := &QuestionnaireExport{
		Title: details.Title,
		Areas: []AreaExport{},
	}
	if details.Description != nil {
		export.Description = *details.Description
	}

	for _, area := range details.Areas {
		areaExport := AreaExport{
			Title:     area.Title,
			Weight:    area.Weight,
			SortOrder: area.SortOrder,
			Questions: []QuestionExport{},
		}
		for _, question := range area.Questions {
			questionExport := QuestionExport{
				Text:      question.Text,
				Required:  question.Required,
				SortOrder: question.SortOrder,
				Options:   []OptionExport{},
			}
			for _, option := range question.Options {
				questionExport.Options = append(questionExport.Options, OptionExport{
					Text:      option.Text,
					Weight:    option.Weight,
					SortOrder: option.SortOrder,
					IsNA:      option.IsNA,
				})
			}
			areaExport.Questions = append(areaExport.Questions, questionExport)
		}
		export.Areas = append(export.Areas, areaExport)
	}

	return export
}

// ImportQuestionnaire creates a new draft questionnaire from exported JSON.
// The imported copy always starts as a draft regardless of the source status.
func (s *QuestionnaireService) ImportQuestionnaire(data []byte, userID uint) (*models.Questionnaire, error) {
	var export QuestionnaireExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("invalid questionnaire export: %w", err)
	}
	if export.Title == "" {
		return nil, fmt.Errorf("export has no title")
	}

	q := &models.Questionnaire{
		Title:     export.Title,
		Status:    models.QuestionnaireDraft,
		CreatedBy: &userID,
	}
	if export.Description != "" {
		description := export.Description
		q.Description = &description
	}
	if err := s.questionnaireRepo.Create(q); err != nil {
		return nil, err
	}

	for _, areaExport := range export.Areas {
		area := &models.Area{
			QuestionnaireID: q.ID,
			Title:           areaExport.Title,
			Weight:          areaExport.Weight,
			SortOrder:       areaExport.SortOrder,
		}
		if err := s.questionnaireRepo.CreateArea(area); err != nil {
			return nil, err
		}

		for _, questionExport := range areaExport.Questions {
			question := &models.Question{
				AreaID:    area.ID,
				Text:      questionExport.Text,
				Required:  questionExport.Required,
				SortOrder: questionExport.SortOrder,
			}
			if err := s.questionnaireRepo.CreateQuestion(question); err != nil {
				return nil, err
			}

			for _, optionExport := range questionExport.Options {
				option := &models.Option{
					QuestionID: question.ID,
					Text:       optionExport.Text,
					Weight:     optionExport.Weight,
					SortOrder:  optionExport.SortOrder,
					IsNA:       optionExport.IsNA,
				}
				if err := s.questionnaireRepo.CreateOption(option); err != nil {
					return nil, err
				}
			}
		}
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "import",
		Resource: "questionnaire",
		Details:  fmt.Sprintf("Imported questionnaire: %s (ID: %d)", q.Title, q.ID),
	})

	return q, nil
}
