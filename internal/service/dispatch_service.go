package service

import (
	"fmt"
	"log/slog"

	"hse-compliance/internal/auth"
	"hse-compliance/internal/email"
	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/scoring"
	"hse-compliance/pkg/validator"
)

// DispatchService handles assigning questionnaires to inspectors
type DispatchService struct {
	assignmentRepo    *repository.AssignmentRepository
	questionnaireRepo *repository.QuestionnaireRepository
	supplierRepo      *repository.SupplierRepository
	auditRepo         *repository.AuditRepository
	emailService      *email.Service
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	assignmentRepo *repository.AssignmentRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	supplierRepo *repository.SupplierRepository,
	auditRepo *repository.AuditRepository,
	emailService *email.Service,
) *DispatchService {
	return &DispatchService{
		assignmentRepo:    assignmentRepo,
		questionnaireRepo: questionnaireRepo,
		supplierRepo:      supplierRepo,
		auditRepo:         auditRepo,
		emailService:      emailService,
	}
}

// Dispatch creates an assignment for an inspector and emails the intake link.
// The questionnaire tree is frozen into the assignment at this moment; later
// edits to the questionnaire never affect this assignment's scoring.
func (s *DispatchService) Dispatch(questionnaireID, supplierID uint, inspectorEmail string, userID uint) (*models.Assignment, error) {
	inspectorEmail = validator.SanitizeEmail(inspectorEmail)
	if err := validator.ValidateEmail(inspectorEmail); err != nil {
		return nil, fmt.Errorf("inspector email: %w", err)
	}

	details, err := s.questionnaireRepo.GetWithDetails(questionnaireID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, fmt.Errorf("questionnaire not found")
	}
	if details.Status != models.QuestionnairePublished {
		return nil, fmt.Errorf("questionnaire is not published")
	}

	supplier, err := s.supplierRepo.GetByID(supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("supplier not found")
	}
	if supplier.Status != models.SupplierActive {
		return nil, fmt.Errorf("supplier is suspended")
	}

	snapshot, err := scoring.NewSnapshot(details).Marshal()
	if err != nil {
		return nil, err
	}

	token, err := auth.NewAssignmentToken()
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		QuestionnaireID:   questionnaireID,
		SupplierID:        supplierID,
		InspectorEmail:    inspectorEmail,
		CreatedBy:         &userID,
		Status:            models.AssignmentPending,
		Token:             token,
		StructureSnapshot: snapshot,
	}

	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "dispatch",
		Resource: "assignment",
		Details:  fmt.Sprintf("Dispatched questionnaire %d to %s for supplier %s (assignment %d)", questionnaireID, inspectorEmail, supplier.Name, assignment.ID),
	})

	// The assignment exists even if the email fails; the link can be re-sent
	if err := s.emailService.SendAssignmentInvitation(inspectorEmail, supplier.Name, details.Title, token); err != nil {
		slog.Error("Failed to send assignment invitation",
			"assignment_id", assignment.ID,
			"inspector_email", inspectorEmail,
			"error", err,
		)
	}

	return assignment, nil
}

// ResendInvitation re-sends the intake link for a pending assignment
func (s *DispatchService) ResendInvitation(assignmentID uint, userID uint) error {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return fmt.Errorf("assignment not found")
	}
	if assignment.Status != models.AssignmentPending {
		return fmt.Errorf("assignment is not pending")
	}

	supplier, err := s.supplierRepo.GetByID(assignment.SupplierID)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("supplier not found")
	}

	snap, err := scoring.ParseSnapshot(assignment.StructureSnapshot)
	if err != nil {
		return err
	}

	if err := s.emailService.SendAssignmentInvitation(assignment.InspectorEmail, supplier.Name, snap.Title, assignment.Token); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "resend_invitation",
		Resource: "assignment",
		Details:  fmt.Sprintf("Re-sent invitation for assignment %d to %s", assignmentID, assignment.InspectorEmail),
	})

	return nil
}

// GetAssignments retrieves all assignments with questionnaire, supplier and
// score details
func (s *DispatchService) GetAssignments() ([]models.AssignmentWithDetails, error) {
	return s.assignmentRepo.ListWithDetails()
}

// GetAssignmentsBySupplier retrieves a supplier's assignments with details
func (s *DispatchService) GetAssignmentsBySupplier(supplierID uint) ([]models.AssignmentWithDetails, error) {
	return s.assignmentRepo.ListBySupplier(supplierID)
}

// GetAssignmentByID retrieves one assignment
func (s *DispatchService) GetAssignmentByID(id uint) (*models.Assignment, error) {
	return s.assignmentRepo.GetByID(id)
}

// DeleteAssignment removes an assignment and its responses
func (s *DispatchService) DeleteAssignment(id uint, userID uint) error {
	assignment, err := s.assignmentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if assignment == nil {
		return fmt.Errorf("assignment not found")
	}

	if err := s.assignmentRepo.Delete(id); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "delete",
		Resource: "assignment",
		Details:  fmt.Sprintf("Deleted assignment %d", id),
	})

	return nil
}
