package repository

import (
	"database/sql"
	"time"

	"hse-compliance/internal/models"
)

// DocumentRepository handles database operations for supplier documents
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new supplier document
func (r *DocumentRepository) Create(doc *models.SupplierDocument) error {
	query := `
		INSERT INTO supplier_documents (supplier_id, kind, title, expires_at, reminder_stage)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, reminder_stage, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		doc.SupplierID,
		doc.Kind,
		doc.Title,
		doc.ExpiresAt,
	).Scan(&doc.ID, &doc.ReminderStage, &doc.CreatedAt, &doc.UpdatedAt)
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(id uint) (*models.SupplierDocument, error) {
	query := `
		SELECT id, supplier_id, kind, title, expires_at, reminder_stage,
		       last_reminder_at, created_at, updated_at
		FROM supplier_documents
		WHERE id = $1
	`

	doc := &models.SupplierDocument{}
	err := r.db.QueryRow(query, id).Scan(
		&doc.ID,
		&doc.SupplierID,
		&doc.Kind,
		&doc.Title,
		&doc.ExpiresAt,
		&doc.ReminderStage,
		&doc.LastReminderAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return doc, err
}

// ListBySupplier retrieves all documents for a supplier
func (r *DocumentRepository) ListBySupplier(supplierID uint) ([]models.SupplierDocument, error) {
	query := `
		SELECT id, supplier_id, kind, title, expires_at, reminder_stage,
		       last_reminder_at, created_at, updated_at
		FROM supplier_documents
		WHERE supplier_id = $1
		ORDER BY expires_at
	`
	return r.queryDocuments(query, supplierID)
}

// ListExpiringBefore retrieves documents whose expiry falls before the cutoff,
// oldest expiry first. The expiry scan uses this as its work queue.
func (r *DocumentRepository) ListExpiringBefore(cutoff time.Time) ([]models.SupplierDocument, error) {
	query := `
		SELECT id, supplier_id, kind, title, expires_at, reminder_stage,
		       last_reminder_at, created_at, updated_at
		FROM supplier_documents
		WHERE expires_at < $1
		ORDER BY expires_at
	`
	return r.queryDocuments(query, cutoff)
}

// RecordReminder advances the document's reminder stage. The conditional
// update makes the scan idempotent: a stage is recorded at most once even if
// two scans overlap.
func (r *DocumentRepository) RecordReminder(id uint, stage int, at time.Time) (bool, error) {
	query := `
		UPDATE supplier_documents
		SET reminder_stage = $1, last_reminder_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND reminder_stage < $1
	`
	result, err := r.db.Exec(query, stage, at, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// UpdateExpiry sets a new expiry date and resets the reminder stage
func (r *DocumentRepository) UpdateExpiry(id uint, expiresAt time.Time) error {
	query := `
		UPDATE supplier_documents
		SET expires_at = $1, reminder_stage = 0, last_reminder_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	_, err := r.db.Exec(query, expiresAt, id)
	return err
}

// Delete removes a document
func (r *DocumentRepository) Delete(id uint) error {
	_, err := r.db.Exec(`DELETE FROM supplier_documents WHERE id = $1`, id)
	return err
}

func (r *DocumentRepository) queryDocuments(query string, args ...interface{}) ([]models.SupplierDocument, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.SupplierDocument{}
	for rows.Next() {
		var doc models.SupplierDocument
		err := rows.Scan(
			&doc.ID,
			&doc.SupplierID,
			&doc.Kind,
			&doc.Title,
			&doc.ExpiresAt,
			&doc.ReminderStage,
			&doc.LastReminderAt,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
