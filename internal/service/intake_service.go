package service

import (
	"fmt"
	"log/slog"

	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/scoring"
)

// IntakeService handles the public, token-authenticated questionnaire flow
type IntakeService struct {
	assignmentRepo    *repository.AssignmentRepository
	supplierRepo      *repository.SupplierRepository
	questionnaireRepo *repository.QuestionnaireRepository
	auditRepo         *repository.AuditRepository
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	assignmentRepo *repository.AssignmentRepository,
	supplierRepo *repository.SupplierRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	auditRepo *repository.AuditRepository,
) *IntakeService {
	return &IntakeService{
		assignmentRepo:    assignmentRepo,
		supplierRepo:      supplierRepo,
		questionnaireRepo: questionnaireRepo,
		auditRepo:         auditRepo,
	}
}

// Answer is one submitted question/option pair
type Answer struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
}

// IntakeView is what an inspector sees when opening their intake link. The
// questionnaire tree comes from the assignment's snapshot, not the live
// questionnaire.
type IntakeView struct {
	AssignmentID uint              `json:"assignment_id"`
	SupplierName string            `json:"supplier_name"`
	Status       string            `json:"status"`
	Structure    *scoring.Snapshot `json:"structure"`
	Result       *SubmissionResult `json:"result,omitempty"`
}

// SubmissionResult is the outcome of a completed submission
type SubmissionResult struct {
	FinalScore       float64 `json:"final_score"`
	RatingLabel      string  `json:"rating_label"`
	RatingColor      string  `json:"rating_color"`
	AlreadyCompleted bool    `json:"already_completed"`
}

// GetByToken resolves an intake link to its assignment view
func (s *IntakeService) GetByToken(token string) (*IntakeView, error) {
	assignment, err := s.assignmentRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, nil
	}

	snap, err := scoring.ParseSnapshot(assignment.StructureSnapshot)
	if err != nil {
		return nil, err
	}

	view := &IntakeView{
		AssignmentID: assignment.ID,
		Status:       assignment.Status,
		Structure:    snap,
	}

	supplier, err := s.supplierRepo.GetByID(assignment.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier != nil {
		view.SupplierName = supplier.Name
	}

	if assignment.Status == models.AssignmentCompleted {
		record, err := s.assignmentRepo.GetScoreRecord(assignment.ID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			rating := scoring.Classify(record.FinalScore)
			view.Result = &SubmissionResult{
				FinalScore:       record.FinalScore,
				RatingLabel:      rating.Label,
				RatingColor:      rating.Color,
				AlreadyCompleted: true,
			}
		}
	}

	return view, nil
}

// Submit records an inspector's answers, scores the assignment against its
// snapshot and marks it completed. Submitting an already completed assignment
// changes nothing and returns the stored result.
func (s *IntakeService) Submit(token string, answers []Answer) (*SubmissionResult, error) {
	assignment, err := s.assignmentRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment not found")
	}

	snap, err := scoring.ParseSnapshot(assignment.StructureSnapshot)
	if err != nil {
		return nil, err
	}
	resolver := scoring.NewTreeResolver(snap)

	responses, err := buildResponses(assignment.ID, answers, snap, resolver)
	if err != nil {
		return nil, err
	}

	result := scoring.ComputeScore(responses, resolver)
	rating := scoring.Classify(result.FinalScore)

	completed, err := s.assignmentRepo.CompleteWithResponses(assignment.ID, responses, result.FinalScore, rating.Label)
	if err != nil {
		return nil, err
	}

	if !completed {
		// Lost the race or link reused; return the stored outcome
		record, err := s.assignmentRepo.GetScoreRecord(assignment.ID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("assignment is no longer pending")
		}
		storedRating := scoring.Classify(record.FinalScore)
		return &SubmissionResult{
			FinalScore:       record.FinalScore,
			RatingLabel:      storedRating.Label,
			RatingColor:      storedRating.Color,
			AlreadyCompleted: true,
		}, nil
	}

	s.auditRepo.Create(&models.AuditLog{
		Action:   "submit",
		Resource: "assignment",
		Details:  fmt.Sprintf("Assignment %d completed with score %.1f (%s)", assignment.ID, result.FinalScore, rating.Label),
	})

	return &SubmissionResult{
		FinalScore:  result.FinalScore,
		RatingLabel: rating.Label,
		RatingColor: rating.Color,
	}, nil
}

// EditResponses replaces the responses of a completed assignment and
// recomputes its score. An explicit admin edit is a deliberate re-scoring,
// so each edited response's computed score is re-derived from the CURRENT
// live option weight rather than the frozen snapshot weight. Admin use only.
func (s *IntakeService) EditResponses(assignmentID uint, answers []Answer, userID uint) (*SubmissionResult, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment not found")
	}
	if assignment.Status != models.AssignmentCompleted {
		return nil, fmt.Errorf("assignment is not completed")
	}

	snap, err := scoring.ParseSnapshot(assignment.StructureSnapshot)
	if err != nil {
		return nil, err
	}
	resolver := scoring.NewTreeResolver(snap)

	responses, err := buildResponses(assignment.ID, answers, snap, resolver)
	if err != nil {
		return nil, err
	}

	if err := s.applyLiveWeights(responses); err != nil {
		return nil, err
	}

	result := scoring.ComputeScore(responses, resolver)
	rating := scoring.Classify(result.FinalScore)

	if err := s.assignmentRepo.UpdateResponsesAndScore(assignment.ID, responses, result.FinalScore, rating.Label); err != nil {
		return nil, err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "edit_responses",
		Resource: "assignment",
		Details:  fmt.Sprintf("Responses of assignment %d edited, new score %.1f (%s)", assignment.ID, result.FinalScore, rating.Label),
	})

	return &SubmissionResult{
		FinalScore:  result.FinalScore,
		RatingLabel: rating.Label,
		RatingColor: rating.Color,
	}, nil
}

// applyLiveWeights re-derives each response's computed score from the current
// live option weight. A live N/A selection stores the question's best live
// non-N/A weight as its reference value. An option that no longer exists in
// the live tree keeps its snapshot weight.
func (s *IntakeService) applyLiveWeights(responses []models.Response) error {
	for i := range responses {
		live, err := s.questionnaireRepo.GetOption(responses[i].OptionID)
		if err != nil {
			return err
		}
		if live == nil {
			slog.Warn("Edited option no longer exists in the live tree, keeping snapshot weight",
				"question_id", responses[i].QuestionID,
				"option_id", responses[i].OptionID,
			)
			continue
		}

		if live.IsNA {
			options, err := s.questionnaireRepo.GetOptions(responses[i].QuestionID)
			if err != nil {
				return err
			}
			maxWeight, found := 0.0, false
			for _, option := range options {
				if !option.IsNA && (!found || option.Weight > maxWeight) {
					maxWeight = option.Weight
					found = true
				}
			}
			if !found {
				slog.Warn("Live question offers no non-N/A options, keeping snapshot weight",
					"question_id", responses[i].QuestionID,
					"option_id", responses[i].OptionID,
				)
				continue
			}
			responses[i].ComputedScore = maxWeight
			continue
		}

		responses[i].ComputedScore = live.Weight
	}
	return nil
}

// buildResponses validates submitted answers against the snapshot and freezes
// the selected option weights into response rows
func buildResponses(assignmentID uint, answers []Answer, snap *scoring.Snapshot, resolver scoring.Resolver) ([]models.Response, error) {
	answerByQuestion := make(map[uint]uint, len(answers))
	for _, answer := range answers {
		if _, dup := answerByQuestion[answer.QuestionID]; dup {
			return nil, fmt.Errorf("duplicate answer for question %d", answer.QuestionID)
		}
		answerByQuestion[answer.QuestionID] = answer.OptionID
	}

	responses := []models.Response{}
	for _, area := range snap.Areas {
		for _, question := range area.Questions {
			optionID, answered := answerByQuestion[question.ID]
			if !answered {
				if question.Required {
					return nil, fmt.Errorf("question %d is required", question.ID)
				}
				continue
			}
			delete(answerByQuestion, question.ID)

			option, ok := resolver.Option(optionID)
			if !ok {
				return nil, fmt.Errorf("option %d does not exist", optionID)
			}

			belongs := false
			for _, candidate := range question.Options {
				if candidate.ID == optionID {
					belongs = true
					break
				}
			}
			if !belongs {
				return nil, fmt.Errorf("option %d does not belong to question %d", optionID, question.ID)
			}

			responses = append(responses, models.Response{
				AssignmentID:  assignmentID,
				QuestionID:    question.ID,
				OptionID:      optionID,
				ComputedScore: option.Weight,
			})
		}
	}

	// Anything left was answered against a question outside the snapshot
	for questionID := range answerByQuestion {
		return nil, fmt.Errorf("question %d is not part of this questionnaire", questionID)
	}

	return responses, nil
}
