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

// ContactRequest defines the structure for contact person creation/update
// requests. Notes live in the side-attribute store; the schema has no column
// for them.
type ContactRequest struct {
	Name      string `json:"name" validate:"required"`
	JobTitle  string `json:"job_title"`
	Phone     string `json:"phone"`
	Whatsapp  string `json:"whatsapp"`
	WechatID  string `json:"wechat_id"`
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
	Notes     string `json:"notes"`
}

// ContactResponse is a contact person together with the side-store notes
type ContactResponse struct {
	model.ContactPerson
	Notes string `json:"notes"`
}

// ContactHandler serves the contact person endpoints
type ContactHandler struct {
	records *store.RecordStore
	side    *store.SideAttributeStore
	images  *imagestore.ImageStore
}

// NewContactHandler creates a contact handler with its stores
func NewContactHandler(records *store.RecordStore, side *store.SideAttributeStore, images *imagestore.ImageStore) *ContactHandler {
	return &ContactHandler{records: records, side: side, images: images}
}

func (h *ContactHandler) toResponse(contact model.ContactPerson) ContactResponse {
	return ContactResponse{
		ContactPerson: contact,
		Notes:         h.side.GetString(store.NamespaceContactNotes, contact.ID, ""),
	}
}

// List handles retrieving the contact persons of a supplier
func (h *ContactHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	supplierID := c.Param("id")
	sortKeys := splitSortKeys(c.QueryParam("sort"))
	log.Info("Listing contacts", zap.String("supplier_id", supplierID))
	prometheus.RecordOperation("contact", "fetch_all")

	contacts, err := h.records.FetchContacts(supplierID, sortKeys...)
	if err != nil {
		log.Error("Failed to list contacts", zap.String("supplier_id", supplierID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve contacts",
		})
	}

	responses := make([]ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		responses = append(responses, h.toResponse(contact))
	}

	log.Info("Contacts retrieved successfully", zap.Int("count", len(responses)))
	return c.JSON(http.StatusOK, responses)
}

// Get handles retrieving a single contact person by ID
func (h *ContactHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting contact by ID", zap.String("contact_id", id))

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Contact not found", zap.String("contact_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to get contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve contact"})
	}

	return c.JSON(http.StatusOK, h.toResponse(*contact))
}

// Create handles creating a new contact person for a supplier
func (h *ContactHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	supplierID := c.Param("id")
	log.Info("Creating new contact", zap.String("supplier_id", supplierID))
	prometheus.RecordOperation("contact", "save")

	if _, err := h.records.GetSupplier(supplierID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Supplier not found for contact", zap.String("supplier_id", supplierID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier for contact", zap.String("supplier_id", supplierID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create contact"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	contact := model.ContactPerson{
		SupplierID: supplierID,
		Name:       req.Name,
		JobTitle:   req.JobTitle,
		Phone:      req.Phone,
		Whatsapp:   req.Whatsapp,
		WechatID:   req.WechatID,
		Email:      req.Email,
		IsPrimary:  req.IsPrimary,
	}

	if err := h.records.SaveContact(&contact); err != nil {
		return h.saveError(c, err, "")
	}

	h.applyNotes(c, contact.ID, req.Notes)

	log.Info("Contact created successfully",
		zap.String("contact_id", contact.ID),
		zap.String("supplier_id", supplierID),
		zap.String("name", contact.Name))
	return c.JSON(http.StatusCreated, h.toResponse(contact))
}

// Update handles updating an existing contact person
func (h *ContactHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating contact", zap.String("contact_id", id))
	prometheus.RecordOperation("contact", "save")

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Contact not found for update", zap.String("contact_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact for update", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update contact"})
	}

	contact.Name = req.Name
	contact.JobTitle = req.JobTitle
	contact.Phone = req.Phone
	contact.Whatsapp = req.Whatsapp
	contact.WechatID = req.WechatID
	contact.Email = req.Email
	contact.IsPrimary = req.IsPrimary

	if err := h.records.SaveContact(contact); err != nil {
		return h.saveError(c, err, id)
	}

	h.applyNotes(c, contact.ID, req.Notes)

	log.Info("Contact updated successfully",
		zap.String("contact_id", id),
		zap.String("name", contact.Name))
	return c.JSON(http.StatusOK, h.toResponse(*contact))
}

// Delete handles deleting a contact person, cleaning up its business-card
// image, portrait blob and notes
func (h *ContactHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting contact", zap.String("contact_id", id))
	prometheus.RecordOperation("contact", "delete")

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Contact not found for deletion", zap.String("contact_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact for deletion", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete contact"})
	}

	if err := h.records.DeleteContact(id); err != nil {
		log.Error("Failed to delete contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete contact"})
	}

	cleanupContact(c, h.side, h.images, contact)

	log.Info("Contact deleted successfully", zap.String("contact_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Contact deleted successfully"})
}

func (h *ContactHandler) saveError(c echo.Context, err error, id string) error {
	log := logger.FromContext(c)
	if errors.Is(err, store.ErrNameRequired) {
		log.Warn("Contact validation failed", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	log.Error("Failed to save contact", zap.String("contact_id", id), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save contact"})
}

func (h *ContactHandler) applyNotes(c echo.Context, id, notes string) {
	log := logger.FromContext(c)
	if err := h.side.SetString(store.NamespaceContactNotes, id, notes); err != nil {
		log.Error("Failed to save contact notes", zap.String("contact_id", id), zap.Error(err))
	}
}

// cleanupContact removes a contact's attachments and side attributes after
// the structured record is gone. Shared with the supplier delete path.
func cleanupContact(c echo.Context, side *store.SideAttributeStore, images *imagestore.ImageStore, contact *model.ContactPerson) {
	log := logger.FromContext(c)

	if contact.CardImagePath != "" {
		if err := images.Delete(contact.CardImagePath); err != nil {
			log.Error("Failed to delete business card image",
				zap.String("contact_id", contact.ID),
				zap.String("ref", contact.CardImagePath),
				zap.Error(err))
		}
	}
	for _, namespace := range []string{store.NamespaceContactNotes, store.NamespaceContactPhoto} {
		if err := side.Remove(namespace, contact.ID); err != nil {
			log.Error("Failed to remove contact side attribute",
				zap.String("contact_id", contact.ID),
				zap.String("namespace", namespace),
				zap.Error(err))
		}
	}
}
