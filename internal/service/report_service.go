package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/scoring"
)

// ReportService produces exports over assignments and scores
type ReportService struct {
	assignmentRepo *repository.AssignmentRepository
	supplierRepo   *repository.SupplierRepository
}

// NewReportService creates a new report service
func NewReportService(assignmentRepo *repository.AssignmentRepository, supplierRepo *repository.SupplierRepository) *ReportService {
	return &ReportService{
		assignmentRepo: assignmentRepo,
		supplierRepo:   supplierRepo,
	}
}

// AssignmentsCSV renders all assignments with their outcomes as CSV.
// Pending assignments appear with empty score and rating columns.
func (s *ReportService) AssignmentsCSV() ([]byte, error) {
	assignments, err := s.assignmentRepo.ListWithDetails()
	if err != nil {
		return nil, err
	}
	return renderAssignmentsCSV(assignments)
}

// SupplierAssignmentsCSV renders one supplier's assignments as CSV
func (s *ReportService) SupplierAssignmentsCSV(supplierID uint) ([]byte, error) {
	supplier, err := s.supplierRepo.GetByID(supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("supplier not found")
	}

	assignments, err := s.assignmentRepo.ListBySupplier(supplierID)
	if err != nil {
		return nil, err
	}
	return renderAssignmentsCSV(assignments)
}

func renderAssignmentsCSV(assignments []models.AssignmentWithDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"assignment_id", "supplier", "questionnaire", "inspector_email", "status", "sent_at", "completed_at", "final_score", "rating"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, a := range assignments {
		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.Format("2006-01-02 15:04:05")
		}

		score := ""
		rating := a.Rating
		if a.FinalScore != nil {
			score = strconv.FormatFloat(*a.FinalScore, 'f', 1, 64)
			if rating == "" {
				rating = scoring.Classify(*a.FinalScore).Label
			}
		}

		record := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.SupplierName,
			a.QuestionnaireTitle,
			a.InspectorEmail,
			a.Status,
			a.SentAt.Format("2006-01-02 15:04:05"),
			completedAt,
			score,
			rating,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
