package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/imagestore"
	"inventory-service/internal/model"
	"inventory-service/internal/store"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// SupplierRequest defines the structure for supplier creation/update
// requests. Category is not part of the structured schema; it lives in the
// side-attribute store keyed by the supplier identity.
type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	Notes         string `json:"notes"`
	Category      string `json:"category"`
}

// SupplierResponse is a supplier together with its side-store category
type SupplierResponse struct {
	model.Supplier
	Category string `json:"category"`
}

// SupplierHandler serves the supplier CRUD endpoints
type SupplierHandler struct {
	records *store.RecordStore
	side    *store.SideAttributeStore
	images  *imagestore.ImageStore
}

// NewSupplierHandler creates a supplier handler with its stores
func NewSupplierHandler(records *store.RecordStore, side *store.SideAttributeStore, images *imagestore.ImageStore) *SupplierHandler {
	return &SupplierHandler{records: records, side: side, images: images}
}

func (h *SupplierHandler) toResponse(supplier model.Supplier) SupplierResponse {
	return SupplierResponse{
		Supplier: supplier,
		Category: h.side.GetString(store.NamespaceSupplierCategory, supplier.ID, ""),
	}
}

// List handles retrieving all suppliers with deterministic ordering
func (h *SupplierHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	sortKeys := splitSortKeys(c.QueryParam("sort"))
	log.Info("Listing suppliers", zap.Strings("sort", sortKeys))
	prometheus.RecordOperation("supplier", "fetch_all")

	suppliers, err := h.records.FetchSuppliers(sortKeys...)
	if err != nil {
		log.Error("Failed to list suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve suppliers",
		})
	}

	responses := make([]SupplierResponse, 0, len(suppliers))
	for _, supplier := range suppliers {
		responses = append(responses, h.toResponse(supplier))
	}

	log.Info("Suppliers retrieved successfully", zap.Int("count", len(responses)))
	return c.JSON(http.StatusOK, responses)
}

// Get handles retrieving a single supplier by ID
func (h *SupplierHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting supplier by ID", zap.String("supplier_id", id))

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Supplier not found", zap.String("supplier_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to get supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve supplier"})
	}

	return c.JSON(http.StatusOK, h.toResponse(*supplier))
}

// Create handles creating a new supplier
func (h *SupplierHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new supplier")
	prometheus.RecordOperation("supplier", "save")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	supplier := model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Website:       req.Website,
		Notes:         req.Notes,
	}

	if err := h.records.SaveSupplier(&supplier); err != nil {
		return h.saveError(c, err, "")
	}

	h.applyCategory(c, supplier.ID, req.Category)

	log.Info("Supplier created successfully",
		zap.String("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, h.toResponse(supplier))
}

// Update handles updating an existing supplier
func (h *SupplierHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating supplier", zap.String("supplier_id", id))
	prometheus.RecordOperation("supplier", "save")

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Supplier not found for update", zap.String("supplier_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier for update", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update supplier"})
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	supplier.Website = req.Website
	supplier.Notes = req.Notes

	if err := h.records.SaveSupplier(supplier); err != nil {
		return h.saveError(c, err, id)
	}

	h.applyCategory(c, supplier.ID, req.Category)

	log.Info("Supplier updated successfully",
		zap.String("supplier_id", id),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusOK, h.toResponse(*supplier))
}

// Delete handles deleting a supplier along with its contact persons. The
// store does not cascade; every cleanup step happens here explicitly.
func (h *SupplierHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting supplier", zap.String("supplier_id", id))
	prometheus.RecordOperation("supplier", "delete")

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Supplier not found for deletion", zap.String("supplier_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier for deletion", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete supplier"})
	}

	contacts, err := h.records.FetchContacts(id)
	if err != nil {
		log.Error("Failed to list supplier contacts for deletion",
			zap.String("supplier_id", id),
			zap.Error(err))
		contacts = nil
	}

	if err := h.records.DeleteSupplier(id); err != nil {
		log.Error("Failed to delete supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete supplier"})
	}

	for _, ref := range supplier.ImagePaths {
		if err := h.images.Delete(ref); err != nil {
			log.Error("Failed to delete supplier attachment",
				zap.String("supplier_id", id),
				zap.String("ref", ref),
				zap.Error(err))
		}
	}
	if err := h.side.Remove(store.NamespaceSupplierCategory, id); err != nil {
		log.Error("Failed to remove supplier category", zap.String("supplier_id", id), zap.Error(err))
	}

	for _, contact := range contacts {
		if err := h.records.DeleteContact(contact.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("Failed to delete supplier contact",
				zap.String("supplier_id", id),
				zap.String("contact_id", contact.ID),
				zap.Error(err))
			continue
		}
		cleanupContact(c, h.side, h.images, &contact)
	}

	log.Info("Supplier deleted successfully",
		zap.String("supplier_id", id),
		zap.Int("contacts_removed", len(contacts)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier deleted successfully"})
}

func (h *SupplierHandler) saveError(c echo.Context, err error, id string) error {
	log := logger.FromContext(c)
	if errors.Is(err, store.ErrNameRequired) {
		log.Warn("Supplier validation failed", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	log.Error("Failed to save supplier", zap.String("supplier_id", id), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save supplier"})
}

func (h *SupplierHandler) applyCategory(c echo.Context, id, category string) {
	log := logger.FromContext(c)
	if err := h.side.SetString(store.NamespaceSupplierCategory, id, category); err != nil {
		log.Error("Failed to save supplier category", zap.String("supplier_id", id), zap.Error(err))
	}
}
