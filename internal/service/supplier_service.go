package service

import (
	"fmt"
	"time"

	"hse-compliance/internal/models"
	"hse-compliance/internal/repository"
	"hse-compliance/pkg/validator"
)

// SupplierService handles business logic for suppliers and their compliance
// documents
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	documentRepo *repository.DocumentRepository
	auditRepo    *repository.AuditRepository
}

// NewSupplierService creates a new supplier service
func NewSupplierService(
	supplierRepo *repository.SupplierRepository,
	documentRepo *repository.DocumentRepository,
	auditRepo *repository.AuditRepository,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
	}
}

// CreateSupplier creates a new active supplier
func (s *SupplierService) CreateSupplier(supplier *models.Supplier, userID uint) error {
	if supplier.Name == "" {
		return fmt.Errorf("name is required")
	}
	supplier.Email = validator.SanitizeEmail(supplier.Email)
	if err := validator.ValidateEmail(supplier.Email); err != nil {
		return err
	}

	supplier.Status = models.SupplierActive

	if err := s.supplierRepo.Create(supplier); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "create",
		Resource: "supplier",
		Details:  fmt.Sprintf("Created supplier: %s (ID: %d)", supplier.Name, supplier.ID),
	})

	return nil
}

// GetSupplierByID retrieves a supplier by ID
func (s *SupplierService) GetSupplierByID(id uint) (*models.Supplier, error) {
	return s.supplierRepo.GetByID(id)
}

// GetAllSuppliers retrieves all suppliers
func (s *SupplierService) GetAllSuppliers() ([]models.Supplier, error) {
	return s.supplierRepo.List()
}

// UpdateSupplier updates a supplier's name and contact email
func (s *SupplierService) UpdateSupplier(supplier *models.Supplier, userID uint) error {
	existing, err := s.supplierRepo.GetByID(supplier.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("supplier not found")
	}
	if supplier.Name == "" {
		return fmt.Errorf("name is required")
	}
	supplier.Email = validator.SanitizeEmail(supplier.Email)
	if err := validator.ValidateEmail(supplier.Email); err != nil {
		return err
	}

	// Status changes go through Suspend/Reinstate
	supplier.Status = existing.Status

	if err := s.supplierRepo.Update(supplier); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "update",
		Resource: "supplier",
		Details:  fmt.Sprintf("Updated supplier: %s (ID: %d)", supplier.Name, supplier.ID),
	})

	return nil
}

// SuspendSupplier manually suspends a supplier
func (s *SupplierService) SuspendSupplier(id uint, userID uint) error {
	applied, err := s.supplierRepo.Suspend(id, time.Now())
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("supplier is not active")
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "suspend",
		Resource: "supplier",
		Details:  fmt.Sprintf("Suspended supplier %d", id),
	})

	return nil
}

// ReinstateSupplier reactivates a suspended supplier
func (s *SupplierService) ReinstateSupplier(id uint, userID uint) error {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("supplier not found")
	}
	if supplier.Status != models.SupplierSuspended {
		return fmt.Errorf("supplier is not suspended")
	}

	if err := s.supplierRepo.Reinstate(id); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "reinstate",
		Resource: "supplier",
		Details:  fmt.Sprintf("Reinstated supplier %d", id),
	})

	return nil
}

// DeleteSupplier removes a supplier, its documents and its assignments
func (s *SupplierService) DeleteSupplier(id uint, userID uint) error {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("supplier not found")
	}

	if err := s.supplierRepo.Delete(id); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "delete",
		Resource: "supplier",
		Details:  fmt.Sprintf("Deleted supplier: %s (ID: %d)", supplier.Name, id),
	})

	return nil
}

// AddDocument registers a compliance document for a supplier
func (s *SupplierService) AddDocument(doc *models.SupplierDocument, userID uint) error {
	if doc.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !validDocumentKind(doc.Kind) {
		return fmt.Errorf("invalid document kind: %s", doc.Kind)
	}
	if doc.ExpiresAt.IsZero() {
		return fmt.Errorf("expiry date is required")
	}

	supplier, err := s.supplierRepo.GetByID(doc.SupplierID)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("supplier not found")
	}

	if err := s.documentRepo.Create(doc); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "create",
		Resource: "supplier_document",
		Details:  fmt.Sprintf("Added document %q (ID: %d) for supplier %d, expires %s", doc.Title, doc.ID, doc.SupplierID, doc.ExpiresAt.Format("2006-01-02")),
	})

	return nil
}

// GetDocuments retrieves a supplier's documents
func (s *SupplierService) GetDocuments(supplierID uint) ([]models.SupplierDocument, error) {
	return s.documentRepo.ListBySupplier(supplierID)
}

// RenewDocument updates a document's expiry date and resets its reminder
// stage so the reminder cycle starts over for the new date
func (s *SupplierService) RenewDocument(id uint, expiresAt time.Time, userID uint) error {
	doc, err := s.documentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}
	if !expiresAt.After(doc.ExpiresAt) {
		return fmt.Errorf("new expiry date must be after the current one")
	}

	if err := s.documentRepo.UpdateExpiry(id, expiresAt); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "renew",
		Resource: "supplier_document",
		Details:  fmt.Sprintf("Renewed document %d until %s", id, expiresAt.Format("2006-01-02")),
	})

	return nil
}

// DeleteDocument removes a document
func (s *SupplierService) DeleteDocument(id uint, userID uint) error {
	doc, err := s.documentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}

	if err := s.documentRepo.Delete(id); err != nil {
		return err
	}

	s.auditRepo.Create(&models.AuditLog{
		UserID:   &userID,
		Action:   "delete",
		Resource: "supplier_document",
		Details:  fmt.Sprintf("Deleted document %q (ID: %d)", doc.Title, id),
	})

	return nil
}

func validDocumentKind(kind string) bool {
	switch kind {
	case models.DocumentCertification, models.DocumentTraining, models.DocumentVehicleInspection:
		return true
	}
	return false
}
