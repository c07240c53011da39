package repository

import (
	"database/sql"
	"time"

	"hse-compliance/internal/models"
)

// SessionRepository handles database operations for sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, jti, expires_at, last_activity_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.db.QueryRow(
		query,
		session.ID,
		session.UserID,
		session.JTI,
		session.ExpiresAt,
		session.LastActivityAt,
		session.IPAddress,
		session.UserAgent,
	).Scan(&session.CreatedAt)
}

// GetByJTI retrieves a session by token JTI
func (r *SessionRepository) GetByJTI(jti string) (*models.Session, error) {
	query := `
		SELECT id, user_id, jti, expires_at, last_activity_at, created_at, ip_address, user_agent
		FROM sessions
		WHERE jti = $1 AND expires_at > CURRENT_TIMESTAMP
	`

	session := &models.Session{}
	err := r.db.QueryRow(query, jti).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.ExpiresAt,
		&session.LastActivityAt,
		&session.CreatedAt,
		&session.IPAddress,
		&session.UserAgent,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return session, err
}

// TouchActivity updates the session's last activity timestamp
func (r *SessionRepository) TouchActivity(jti string, at time.Time) error {
	query := `UPDATE sessions SET last_activity_at = $1 WHERE jti = $2`
	_, err := r.db.Exec(query, at, jti)
	return err
}

// DeleteByJTI removes a session, invalidating its token
func (r *SessionRepository) DeleteByJTI(jti string) error {
	query := `DELETE FROM sessions WHERE jti = $1`
	_, err := r.db.Exec(query, jti)
	return err
}

// DeleteExpired removes all expired sessions
func (r *SessionRepository) DeleteExpired() (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP`
	result, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
