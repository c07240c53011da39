package repository

import (
	"database/sql"
	"time"

	"hse-compliance/internal/models"
)

// SupplierRepository handles database operations for suppliers
type SupplierRepository struct {
	db *sql.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(supplier *models.Supplier) error {
	query := `
		INSERT INTO suppliers (name, email, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		supplier.Name,
		supplier.Email,
		supplier.Status,
	).Scan(&supplier.ID, &supplier.CreatedAt, &supplier.UpdatedAt)
}

// GetByID retrieves a supplier by ID
func (r *SupplierRepository) GetByID(id uint) (*models.Supplier, error) {
	query := `
		SELECT id, name, email, status, suspended_at, created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`

	supplier := &models.Supplier{}
	err := r.db.QueryRow(query, id).Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.Email,
		&supplier.Status,
		&supplier.SuspendedAt,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return supplier, err
}

// List retrieves all suppliers
func (r *SupplierRepository) List() ([]models.Supplier, error) {
	query := `
		SELECT id, name, email, status, suspended_at, created_at, updated_at
		FROM suppliers
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []models.Supplier{}
	for rows.Next() {
		var supplier models.Supplier
		err := rows.Scan(
			&supplier.ID,
			&supplier.Name,
			&supplier.Email,
			&supplier.Status,
			&supplier.SuspendedAt,
			&supplier.CreatedAt,
			&supplier.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}

	return suppliers, rows.Err()
}

// Update updates a supplier's editable fields
func (r *SupplierRepository) Update(supplier *models.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, email = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at
	`
	return r.db.QueryRow(query, supplier.Name, supplier.Email, supplier.ID).Scan(&supplier.UpdatedAt)
}

// Suspend marks a supplier as suspended. Returns false if the supplier was
// already suspended (so the caller does not re-notify).
func (r *SupplierRepository) Suspend(id uint, at time.Time) (bool, error) {
	query := `
		UPDATE suppliers
		SET status = $1, suspended_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.Exec(query, models.SupplierSuspended, at, id, models.SupplierActive)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Reinstate returns a suspended supplier to active status
func (r *SupplierRepository) Reinstate(id uint) error {
	query := `
		UPDATE suppliers
		SET status = $1, suspended_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`
	_, err := r.db.Exec(query, models.SupplierActive, id)
	return err
}

// Delete removes a supplier
func (r *SupplierRepository) Delete(id uint) error {
	_, err := r.db.Exec(`DELETE FROM suppliers WHERE id = $1`, id)
	return err
}
