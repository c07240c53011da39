package repository

import (
	"database/sql"
	"time"

	"hse-compliance/internal/models"
)

// AssignmentRepository handles database operations for assignments,
// responses and score records
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create creates a new assignment with its access token and structure snapshot
func (r *AssignmentRepository) Create(a *models.Assignment) error {
	query := `
		INSERT INTO assignments (questionnaire_id, supplier_id, inspector_email, created_by, status, token, structure_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, sent_at
	`

	return r.db.QueryRow(
		query,
		a.QuestionnaireID,
		a.SupplierID,
		a.InspectorEmail,
		a.CreatedBy,
		a.Status,
		a.Token,
		a.StructureSnapshot,
	).Scan(&a.ID, &a.SentAt)
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(id uint) (*models.Assignment, error) {
	query := `
		SELECT id, questionnaire_id, supplier_id, inspector_email, created_by, status, token, structure_snapshot, sent_at, completed_at
		FROM assignments
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByToken retrieves an assignment by its access token
func (r *AssignmentRepository) GetByToken(token string) (*models.Assignment, error) {
	query := `
		SELECT id, questionnaire_id, supplier_id, inspector_email, created_by, status, token, structure_snapshot, sent_at, completed_at
		FROM assignments
		WHERE token = $1
	`
	return r.scanOne(r.db.QueryRow(query, token))
}

func (r *AssignmentRepository) scanOne(row *sql.Row) (*models.Assignment, error) {
	a := &models.Assignment{}
	err := row.Scan(
		&a.ID,
		&a.QuestionnaireID,
		&a.SupplierID,
		&a.InspectorEmail,
		&a.CreatedBy,
		&a.Status,
		&a.Token,
		&a.StructureSnapshot,
		&a.SentAt,
		&a.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return a, err
}

// ListWithDetails retrieves all assignments joined with questionnaire,
// supplier and score information, newest first
func (r *AssignmentRepository) ListWithDetails() ([]models.AssignmentWithDetails, error) {
	query := `
		SELECT a.id, a.questionnaire_id, a.supplier_id, a.inspector_email, a.created_by,
		       a.status, a.token, a.structure_snapshot, a.sent_at, a.completed_at,
		       q.title, s.name, sr.final_score, sr.rating
		FROM assignments a
		JOIN questionnaires q ON q.id = a.questionnaire_id
		JOIN suppliers s ON s.id = a.supplier_id
		LEFT JOIN score_records sr ON sr.assignment_id = a.id
		ORDER BY a.sent_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.AssignmentWithDetails{}
	for rows.Next() {
		var a models.AssignmentWithDetails
		var rating sql.NullString
		err := rows.Scan(
			&a.ID,
			&a.QuestionnaireID,
			&a.SupplierID,
			&a.InspectorEmail,
			&a.CreatedBy,
			&a.Status,
			&a.Token,
			&a.StructureSnapshot,
			&a.SentAt,
			&a.CompletedAt,
			&a.QuestionnaireTitle,
			&a.SupplierName,
			&a.FinalScore,
			&rating,
		)
		if err != nil {
			return nil, err
		}
		a.Rating = rating.String
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// ListBySupplier retrieves all assignments of a supplier with details
func (r *AssignmentRepository) ListBySupplier(supplierID uint) ([]models.AssignmentWithDetails, error) {
	query := `
		SELECT a.id, a.questionnaire_id, a.supplier_id, a.inspector_email, a.created_by,
		       a.status, a.token, a.structure_snapshot, a.sent_at, a.completed_at,
		       q.title, s.name, sr.final_score, sr.rating
		FROM assignments a
		JOIN questionnaires q ON q.id = a.questionnaire_id
		JOIN suppliers s ON s.id = a.supplier_id
		LEFT JOIN score_records sr ON sr.assignment_id = a.id
		WHERE a.supplier_id = $1
		ORDER BY a.sent_at DESC
	`

	rows, err := r.db.Query(query, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.AssignmentWithDetails{}
	for rows.Next() {
		var a models.AssignmentWithDetails
		var rating sql.NullString
		err := rows.Scan(
			&a.ID,
			&a.QuestionnaireID,
			&a.SupplierID,
			&a.InspectorEmail,
			&a.CreatedBy,
			&a.Status,
			&a.Token,
			&a.StructureSnapshot,
			&a.SentAt,
			&a.CompletedAt,
			&a.QuestionnaireTitle,
			&a.SupplierName,
			&a.FinalScore,
			&rating,
		)
		if err != nil {
			return nil, err
		}
		a.Rating = rating.String
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// CompleteWithResponses atomically stores the submitted responses, flips the
// assignment from pending to completed and materializes the score record.
// Returns false without writing anything when the assignment is no longer
// pending, which makes resubmission of the same token a no-op.
func (r *AssignmentRepository) CompleteWithResponses(assignmentID uint, responses []models.Response, finalScore float64, rating string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE assignments
		SET status = $1, completed_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = $3
	`, models.AssignmentCompleted, assignmentID, models.AssignmentPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	now := time.Now()
	for i := range responses {
		err := tx.QueryRow(`
			INSERT INTO responses (assignment_id, question_id, option_id, computed_score, answered_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, assignmentID, responses[i].QuestionID, responses[i].OptionID, responses[i].ComputedScore, now).Scan(&responses[i].ID)
		if err != nil {
			return false, err
		}
		responses[i].AssignmentID = assignmentID
		responses[i].AnsweredAt = now
	}

	_, err = tx.Exec(`
		INSERT INTO score_records (assignment_id, final_score, rating, calculated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (assignment_id) DO UPDATE
		SET final_score = EXCLUDED.final_score, rating = EXCLUDED.rating, calculated_at = EXCLUDED.calculated_at
	`, assignmentID, finalScore, rating, now)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// UpdateResponsesAndScore atomically replaces the responses of a completed
// assignment and recalculates its score record. Used by the admin edit flow.
func (r *AssignmentRepository) UpdateResponsesAndScore(assignmentID uint, responses []models.Response, finalScore float64, rating string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM responses WHERE assignment_id = $1`, assignmentID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range responses {
		err := tx.QueryRow(`
			INSERT INTO responses (assignment_id, question_id, option_id, computed_score, answered_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, assignmentID, responses[i].QuestionID, responses[i].OptionID, responses[i].ComputedScore, now).Scan(&responses[i].ID)
		if err != nil {
			return err
		}
		responses[i].AssignmentID = assignmentID
		responses[i].AnsweredAt = now
	}

	_, err = tx.Exec(`
		UPDATE score_records
		SET final_score = $1, rating = $2, calculated_at = $3
		WHERE assignment_id = $4
	`, finalScore, rating, now, assignmentID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetResponses retrieves all responses of an assignment
func (r *AssignmentRepository) GetResponses(assignmentID uint) ([]models.Response, error) {
	query := `
		SELECT id, assignment_id, question_id, option_id, computed_score, answered_at
		FROM responses
		WHERE assignment_id = $1
		ORDER BY question_id
	`

	rows, err := r.db.Query(query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var resp models.Response
		err := rows.Scan(
			&resp.ID,
			&resp.AssignmentID,
			&resp.QuestionID,
			&resp.OptionID,
			&resp.ComputedScore,
			&resp.AnsweredAt,
		)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}

// GetScoreRecord retrieves the materialized score of an assignment
func (r *AssignmentRepository) GetScoreRecord(assignmentID uint) (*models.ScoreRecord, error) {
	query := `
		SELECT assignment_id, final_score, rating, calculated_at
		FROM score_records
		WHERE assignment_id = $1
	`

	record := &models.ScoreRecord{}
	err := r.db.QueryRow(query, assignmentID).Scan(
		&record.AssignmentID,
		&record.FinalScore,
		&record.Rating,
		&record.CalculatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return record, err
}

// Delete removes an assignment; responses and score record cascade
func (r *AssignmentRepository) Delete(id uint) error {
	_, err := r.db.Exec(`DELETE FROM assignments WHERE id = $1`, id)
	return err
}
