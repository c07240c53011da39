package repository

import (
	"database/sql"
	"log/slog"

	"hse-compliance/internal/models"
)

// AuditRepository handles database operations for audit logs
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create writes an audit log entry. Failures are logged, never propagated;
// auditing must not break the action being audited.
func (r *AuditRepository) Create(entry *models.AuditLog) {
	query := `
		INSERT INTO audit_logs (user_id, action, resource, details)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(query, entry.UserID, entry.Action, entry.Resource, entry.Details); err != nil {
		slog.Error("Failed to write audit log",
			"action", entry.Action,
			"resource", entry.Resource,
			"error", err,
		)
	}
}

// List retrieves audit logs, newest first
func (r *AuditRepository) List(limit, offset int) ([]models.AuditLog, error) {
	query := `
		SELECT id, user_id, action, resource, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Resource,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}
