package handlers

import (
	"encoding/json"
	"net/http"

	"hse-compliance/internal/middleware"
	"hse-compliance/internal/models"
	"hse-compliance/internal/service"
	"hse-compliance/pkg/validator"
)

// SupplierRequest represents the request body for suppliers
type SupplierRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DocumentRequest represents the request body for supplier documents
type DocumentRequest struct {
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	ExpiresAt string `json:"expires_at"` // YYYY-MM-DD
}

// RenewDocumentRequest represents the request body for document renewal
type RenewDocumentRequest struct {
	ExpiresAt string `json:"expires_at"` // YYYY-MM-DD
}

// SupplierHandler handles supplier and document requests
type SupplierHandler struct {
	supplierService *service.SupplierService
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(supplierService *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// GetAllSuppliers retrieves all suppliers
// @Summary Get all suppliers
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Supplier
// @Router /suppliers [get]
func (h *SupplierHandler) GetAllSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.supplierService.GetAllSuppliers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	JSONResponse(w, suppliers)
}

// GetSupplier retrieves a supplier by ID
// @Summary Get supplier by ID
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} map[string]string "Not found"
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	supplier, err := h.supplierService.GetSupplierByID(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if supplier == nil {
		http.Error(w, "Supplier not found", http.StatusNotFound)
		return
	}

	JSONResponse(w, supplier)
}

// CreateSupplier creates a new supplier
// @Summary Create supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SupplierRequest true "Supplier data"
// @Success 201 {object} models.Supplier
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /suppliers [post]
func (h *SupplierHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	supplier := &models.Supplier{Name: req.Name, Email: req.Email}
	if err := h.supplierService.CreateSupplier(supplier, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, supplier)
}

// UpdateSupplier updates a supplier
// @Summary Update supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Param request body SupplierRequest true "Supplier data"
// @Success 200 {object} models.Supplier
// @Failure 404 {object} map[string]string "Not found"
// @Router /suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	var req SupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	supplier := &models.Supplier{ID: id, Name: req.Name, Email: req.Email}
	if err := h.supplierService.UpdateSupplier(supplier, userID); err != nil {
		serviceError(w, err)
		return
	}

	JSONResponse(w, supplier)
}

// SuspendSupplier manually suspends a supplier
// @Summary Suspend supplier
// @Tags Suppliers
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Not active"
// @Router /suppliers/{id}/suspend [post]
func (h *SupplierHandler) SuspendSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.supplierService.SuspendSupplier(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReinstateSupplier reactivates a suspended supplier
// @Summary Reinstate supplier
// @Tags Suppliers
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Not suspended"
// @Router /suppliers/{id}/reinstate [post]
func (h *SupplierHandler) ReinstateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.supplierService.ReinstateSupplier(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSupplier removes a supplier
// @Summary Delete supplier
// @Tags Suppliers
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.supplierService.DeleteSupplier(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetDocuments retrieves a supplier's compliance documents
// @Summary Get supplier documents
// @Tags Suppliers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Success 200 {array} models.SupplierDocument
// @Router /suppliers/{id}/documents [get]
func (h *SupplierHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	documents, err := h.supplierService.GetDocuments(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSONResponse(w, documents)
}

// AddDocument registers a compliance document for a supplier
// @Summary Add supplier document
// @Tags Suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Supplier ID"
// @Param request body DocumentRequest true "Document data"
// @Success 201 {object} models.SupplierDocument
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /suppliers/{id}/documents [post]
func (h *SupplierHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expiresAt, err := validator.ParseDate("expires_at", req.ExpiresAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	doc := &models.SupplierDocument{
		SupplierID: supplierID,
		Kind:       req.Kind,
		Title:      req.Title,
		ExpiresAt:  expiresAt,
	}
	if err := h.supplierService.AddDocument(doc, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(w, doc)
}

// RenewDocument updates a document's expiry date
// @Summary Renew document
// @Description Set a new, later expiry date and restart the reminder cycle
// @Tags Suppliers
// @Accept json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param request body RenewDocumentRequest true "New expiry date"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /documents/{id}/renew [post]
func (h *SupplierHandler) RenewDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req RenewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expiresAt, err := validator.ParseDate("expires_at", req.ExpiresAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.supplierService.RenewDocument(id, expiresAt, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument removes a document
// @Summary Delete document
// @Tags Suppliers
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /documents/{id} [delete]
func (h *SupplierHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.GetUserID(r)

	if err := h.supplierService.DeleteDocument(id, userID); err != nil {
		serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
