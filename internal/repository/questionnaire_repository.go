package repository

import (
	"database/sql"

	"hse-compliance/internal/models"
)

// QuestionnaireRepository handles database operations for questionnaires,
// areas, questions and options
type QuestionnaireRepository struct {
	db *sql.DB
}

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(db *sql.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

// Create creates a new questionnaire
func (r *QuestionnaireRepository) Create(q *models.Questionnaire) error {
	query := `
		INSERT INTO questionnaires (title, description, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		q.Title,
		q.Description,
		q.Status,
		q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a questionnaire by ID
func (r *QuestionnaireRepository) GetByID(id uint) (*models.Questionnaire, error) {
	query := `
		SELECT id, title, description, status, created_by, created_at, updated_at
		FROM questionnaires
		WHERE id = $1
	`

	q := &models.Questionnaire{}
	err := r.db.QueryRow(query, id).Scan(
		&q.ID,
		&q.Title,
		&q.Description,
		&q.Status,
		&q.CreatedBy,
		&q.CreatedAt,
		&q.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return q, err
}

// List retrieves all questionnaires, newest first
func (r *QuestionnaireRepository) List() ([]models.Questionnaire, error) {
	query := `
		SELECT id, title, description, status, created_by, created_at, updated_at
		FROM questionnaires
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questionnaires := []models.Questionnaire{}
	for rows.Next() {
		var q models.Questionnaire
		err := rows.Scan(
			&q.ID,
			&q.Title,
			&q.Description,
			&q.Status,
			&q.CreatedBy,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		questionnaires = append(questionnaires, q)
	}

	return questionnaires, rows.Err()
}

// Update updates a questionnaire's editable fields
func (r *QuestionnaireRepository) Update(q *models.Questionnaire) error {
	query := `
		UPDATE questionnaires
		SET title = $1, description = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at
	`
	return r.db.QueryRow(query, q.Title, q.Description, q.Status, q.ID).Scan(&q.UpdatedAt)
}

// Delete removes a questionnaire; areas, questions and options cascade
func (r *QuestionnaireRepository) Delete(id uint) error {
	_, err := r.db.Exec(`DELETE FROM questionnaires WHERE id = $1`, id)
	return err
}

// GetWithDetails retrieves a questionnaire with its full nested tree
func (r *QuestionnaireRepository) GetWithDetails(id uint) (*models.QuestionnaireWithDetails, error) {
	q, err := r.GetByID(id)
	if err != nil || q == nil {
		return nil, err
	}

	details := &models.QuestionnaireWithDetails{Questionnaire: *q}

	areas, err := r.GetAreas(id)
	if err != nil {
		return nil, err
	}

	for _, area := range areas {
		areaDetails := models.AreaWithQuestions{Area: area}

		questions, err := r.GetQuestions(area.ID)
		if err != nil {
			return nil, err
		}

		for _, question := range questions {
			options, err := r.GetOptions(question.ID)
			if err != nil {
				return nil, err
			}
			areaDetails.Questions = append(areaDetails.Questions, models.QuestionWithOptions{
				Question: question,
				Options:  options,
			})
		}

		details.Areas = append(details.Areas, areaDetails)
	}

	return details, nil
}

// CreateArea creates a new area
func (r *QuestionnaireRepository) CreateArea(area *models.Area) error {
	query := `
		INSERT INTO areas (questionnaire_id, title, weight, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		area.QuestionnaireID,
		area.Title,
		area.Weight,
		area.SortOrder,
	).Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
}

// GetArea retrieves an area by ID
func (r *QuestionnaireRepository) GetArea(id uint) (*models.Area, error) {
	query := `
		SELECT id, questionnaire_id, title, weight, sort_order, created_at, updated_at
		FROM areas
		WHERE id = $1
	`

	area := &models.Area{}
	err := r.db.QueryRow(query, id).Scan(
		&area.ID,
		&area.QuestionnaireID,
		&area.Title,
		&area.Weight,
		&area.SortOrder,
		&area.CreatedAt,
		&area.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return area, err
}

// GetAreas retrieves all areas of a questionnaire in sort order
func (r *QuestionnaireRepository) GetAreas(questionnaireID uint) ([]models.Area, error) {
	query := `
		SELECT id, questionnaire_id, title, weight, sort_order, created_at, updated_at
		FROM areas
		WHERE questionnaire_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.db.Query(query, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := []models.Area{}
	for rows.Next() {
		var area models.Area
		err := rows.Scan(
			&area.ID,
			&area.QuestionnaireID,
			&area.Title,
			&area.Weight,
			&area.SortOrder,
			&area.CreatedAt,
			&area.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}

	return areas, rows.Err()
}

// UpdateArea updates an area's editable fields
func (r *QuestionnaireRepository) UpdateArea(area *models.Area) error {
	query := `
		UPDATE areas
		SET title = $1, weight = $2, sort_order = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at
	`
	return r.db.QueryRow(query, area.Title, area.Weight, area.SortOrder, area.ID).Scan(&area.UpdatedAt)
}

// DeleteArea removes an area; questions and options cascade
func (r *QuestionnaireRepository) DeleteArea(id uint) error {
	_, err := r.db.Exec(`DELETE FROM areas WHERE id = $1`, id)
	return err
}

// CreateQuestion creates a new question
func (r *QuestionnaireRepository) CreateQuestion(question *models.Question) error {
	query := `
		INSERT INTO questions (area_id, text, required, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		question.AreaID,
		question.Text,
		question.Required,
		question.SortOrder,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
}

// GetQuestion retrieves a question by ID
func (r *QuestionnaireRepository) GetQuestion(id uint) (*models.Question, error) {
	query := `
		SELECT id, area_id, text, required, sort_order, created_at, updated_at
		FROM questions
		WHERE id = $1
	`

	question := &models.Question{}
	err := r.db.QueryRow(query, id).Scan(
		&question.ID,
		&question.AreaID,
		&question.Text,
		&question.Required,
		&question.SortOrder,
		&question.CreatedAt,
		&question.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return question, err
}

// GetQuestions retrieves all questions of an area in sort order
func (r *QuestionnaireRepository) GetQuestions(areaID uint) ([]models.Question, error) {
	query := `
		SELECT id, area_id, text, required, sort_order, created_at, updated_at
		FROM questions
		WHERE area_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.db.Query(query, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var question models.Question
		err := rows.Scan(
			&question.ID,
			&question.AreaID,
			&question.Text,
			&question.Required,
			&question.SortOrder,
			&question.CreatedAt,
			&question.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	return questions, rows.Err()
}

// UpdateQuestion updates a question's editable fields
func (r *QuestionnaireRepository) UpdateQuestion(question *models.Question) error {
	query := `
		UPDATE questions
		SET text = $1, required = $2, sort_order = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at
	`
	return r.db.QueryRow(query, question.Text, question.Required, question.SortOrder, question.ID).Scan(&question.UpdatedAt)
}

// DeleteQuestion removes a question; options cascade
func (r *QuestionnaireRepository) DeleteQuestion(id uint) error {
	_, err := r.db.Exec(`DELETE FROM questions WHERE id = $1`, id)
	return err
}

// CreateOption creates a new option
func (r *QuestionnaireRepository) CreateOption(option *models.Option) error {
	query := `
		INSERT INTO options (question_id, text, weight, sort_order, is_na)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		option.QuestionID,
		option.Text,
		option.Weight,
		option.SortOrder,
		option.IsNA,
	).Scan(&option.ID, &option.CreatedAt, &option.UpdatedAt)
}

// GetOption retrieves an option by ID
func (r *QuestionnaireRepository) GetOption(id uint) (*models.Option, error) {
	query := `
		SELECT id, question_id, text, weight, sort_order, is_na, created_at, updated_at
		FROM options
		WHERE id = $1
	`

	option := &models.Option{}
	err := r.db.QueryRow(query, id).Scan(
		&option.ID,
		&option.QuestionID,
		&option.Text,
		&option.Weight,
		&option.SortOrder,
		&option.IsNA,
		&option.CreatedAt,
		&option.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return option, err
}

// GetOptions retrieves all options of a question in sort order
func (r *QuestionnaireRepository) GetOptions(questionID uint) ([]models.Option, error) {
	query := `
		SELECT id, question_id, text, weight, sort_order, is_na, created_at, updated_at
		FROM options
		WHERE question_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.db.Query(query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var option models.Option
		err := rows.Scan(
			&option.ID,
			&option.QuestionID,
			&option.Text,
			&option.Weight,
			&option.SortOrder,
			&option.IsNA,
			&option.CreatedAt,
			&option.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	return options, rows.Err()
}

// UpdateOption updates an option's editable fields
func (r *QuestionnaireRepository) UpdateOption(option *models.Option) error {
	query := `
		UPDATE options
		SET text = $1, weight = $2, sort_order = $3, is_na = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at
	`
	return r.db.QueryRow(query, option.Text, option.Weight, option.SortOrder, option.IsNA, option.ID).Scan(&option.UpdatedAt)
}

// DeleteOption removes an option
func (r *QuestionnaireRepository) DeleteOption(id uint) error {
	_, err := r.db.Exec(`DELETE FROM options WHERE id = $1`, id)
	return err
}
