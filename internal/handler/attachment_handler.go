package handler

import (
	"errors"
	"image"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/imagestore"
	"inventory-service/internal/model"
	"inventory-service/internal/store"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// AttachmentHandler serves image upload, fetch and delete endpoints for
// products, suppliers and contact persons
type AttachmentHandler struct {
	records *store.RecordStore
	side    *store.SideAttributeStore
	images  *imagestore.ImageStore
}

// NewAttachmentHandler creates an attachment handler with its stores
func NewAttachmentHandler(records *store.RecordStore, side *store.SideAttributeStore, images *imagestore.ImageStore) *AttachmentHandler {
	return &AttachmentHandler{records: records, side: side, images: images}
}

// decodeUpload reads and decodes the multipart "image" field
func decodeUpload(c echo.Context) (image.Image, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, err
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return imaging.Decode(src)
}

// save runs the store save and the metrics bookkeeping for one image
func (h *AttachmentHandler) save(c echo.Context, img image.Image, ownerID string, category imagestore.Category) (string, error) {
	ref, err := h.images.Save(img, ownerID, category)
	if err != nil {
		return "", err
	}
	prometheus.AttachmentSavesCounter.WithLabelValues(string(category)).Inc()
	if imagestore.IsFallbackRef(ref) {
		prometheus.AttachmentFallbackCounter.Inc()
	}
	return ref, nil
}

// serveImage writes an image as JPEG, substituting the placeholder when the
// image is nil so the consumer never receives an empty body
func serveImage(c echo.Context, img image.Image) error {
	log := logger.FromContext(c)
	if img == nil {
		img = imagestore.Placeholder()
	}
	data, err := imagestore.EncodeJPEG(img)
	if err != nil {
		log.Error("Failed to encode image response", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to encode image"})
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// UploadProductImage saves a new image for a product and appends its
// reference to the product's ordered attachment list
func (h *AttachmentHandler) UploadProductImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Uploading product image", zap.String("product_id", id))

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload image"})
	}

	img, err := decodeUpload(c)
	if err != nil {
		log.Error("Invalid image upload", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image data"})
	}

	ref, err := h.save(c, img, id, imagestore.CategoryProduct)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidImage) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image dimensions"})
		}
		log.Error("Failed to save product image", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	product.ImagePaths = h.pruneSupersededRefs(c, product.ImagePaths, ref)
	if err := h.records.SaveProduct(product); err != nil {
		log.Error("Failed to record product image reference", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	log.Info("Product image saved", zap.String("product_id", id), zap.String("ref", ref))
	return c.JSON(http.StatusCreated, echo.Map{"path": ref, "image_paths": product.ImagePaths})
}

// GetProductImage serves a product image by list index, or the placeholder
// when the resource is missing
func (h *AttachmentHandler) GetProductImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load image"})
	}

	index, ok := parseIndex(c, len(product.ImagePaths))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}

	img, err := h.images.Load(product.ImagePaths[index])
	if err != nil {
		log.Error("Failed to load product image", zap.String("product_id", id), zap.Error(err))
	}
	return serveImage(c, img)
}

// DeleteProductImage removes a product image by list index. Deleting an
// already-deleted file is a success.
func (h *AttachmentHandler) DeleteProductImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	index, ok := parseIndex(c, len(product.ImagePaths))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}

	ref := product.ImagePaths[index]
	prometheus.AttachmentDeletesCounter.Inc()
	if err := h.images.Delete(ref); err != nil {
		log.Error("Failed to delete product image",
			zap.String("product_id", id),
			zap.String("ref", ref),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	product.ImagePaths = append(product.ImagePaths[:index], product.ImagePaths[index+1:]...)
	if err := h.records.SaveProduct(product); err != nil {
		log.Error("Failed to record image removal", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	log.Info("Product image deleted", zap.String("product_id", id), zap.String("ref", ref))
	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully"})
}

// UploadSupplierImage saves a new image for a supplier
func (h *AttachmentHandler) UploadSupplierImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Uploading supplier image", zap.String("supplier_id", id))

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload image"})
	}

	img, err := decodeUpload(c)
	if err != nil {
		log.Error("Invalid image upload", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image data"})
	}

	ref, err := h.save(c, img, id, imagestore.CategorySupplier)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidImage) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image dimensions"})
		}
		log.Error("Failed to save supplier image", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	supplier.ImagePaths = h.pruneSupersededRefs(c, supplier.ImagePaths, ref)
	if err := h.records.SaveSupplier(supplier); err != nil {
		log.Error("Failed to record supplier image reference", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	log.Info("Supplier image saved", zap.String("supplier_id", id), zap.String("ref", ref))
	return c.JSON(http.StatusCreated, echo.Map{"path": ref, "image_paths": supplier.ImagePaths})
}

// GetSupplierImage serves a supplier image by list index
func (h *AttachmentHandler) GetSupplierImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load image"})
	}

	index, ok := parseIndex(c, len(supplier.ImagePaths))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}

	img, err := h.images.Load(supplier.ImagePaths[index])
	if err != nil {
		log.Error("Failed to load supplier image", zap.String("supplier_id", id), zap.Error(err))
	}
	return serveImage(c, img)
}

// DeleteSupplierImage removes a supplier image by list index
func (h *AttachmentHandler) DeleteSupplierImage(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	supplier, err := h.records.GetSupplier(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
		}
		log.Error("Failed to load supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	index, ok := parseIndex(c, len(supplier.ImagePaths))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}

	ref := supplier.ImagePaths[index]
	prometheus.AttachmentDeletesCounter.Inc()
	if err := h.images.Delete(ref); err != nil {
		log.Error("Failed to delete supplier image",
			zap.String("supplier_id", id),
			zap.String("ref", ref),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	supplier.ImagePaths = append(supplier.ImagePaths[:index], supplier.ImagePaths[index+1:]...)
	if err := h.records.SaveSupplier(supplier); err != nil {
		log.Error("Failed to record image removal", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	log.Info("Supplier image deleted", zap.String("supplier_id", id), zap.String("ref", ref))
	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully"})
}

// UploadContactCard saves the business-card image for a contact person
func (h *AttachmentHandler) UploadContactCard(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Uploading business card", zap.String("contact_id", id))

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload image"})
	}

	img, err := decodeUpload(c)
	if err != nil {
		log.Error("Invalid image upload", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image data"})
	}

	ref, err := h.save(c, img, id, imagestore.CategoryContact)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidImage) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image dimensions"})
		}
		log.Error("Failed to save business card", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	// Fallback refs are not covered by the on-disk retention sweep; drop the
	// superseded blob explicitly.
	if contact.CardImagePath != "" && contact.CardImagePath != ref && imagestore.IsFallbackRef(contact.CardImagePath) {
		if err := h.images.Delete(contact.CardImagePath); err != nil {
			log.Error("Failed to delete superseded business card",
				zap.String("contact_id", id),
				zap.Error(err))
		}
	}

	contact.CardImagePath = ref
	if err := h.records.SaveContact(contact); err != nil {
		log.Error("Failed to record business card reference", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save image"})
	}

	log.Info("Business card saved", zap.String("contact_id", id), zap.String("ref", ref))
	return c.JSON(http.StatusCreated, echo.Map{"path": ref})
}

// GetContactCard serves the business-card image, or the placeholder
func (h *AttachmentHandler) GetContactCard(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load image"})
	}

	var img image.Image
	if contact.CardImagePath != "" {
		img, err = h.images.Load(contact.CardImagePath)
		if err != nil {
			log.Error("Failed to load business card", zap.String("contact_id", id), zap.Error(err))
		}
	}
	return serveImage(c, img)
}

// DeleteContactCard removes the business-card image. A missing card is a
// success, not an error.
func (h *AttachmentHandler) DeleteContactCard(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	contact, err := h.records.GetContact(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
	}

	if contact.CardImagePath != "" {
		prometheus.AttachmentDeletesCounter.Inc()
		if err := h.images.Delete(contact.CardImagePath); err != nil {
			log.Error("Failed to delete business card",
				zap.String("contact_id", id),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
		}
		contact.CardImagePath = ""
		if err := h.records.SaveContact(contact); err != nil {
			log.Error("Failed to record card removal", zap.String("contact_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete image"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Image deleted successfully"})
}

// UploadContactPhoto stores the contact's portrait in the side-attribute
// store; the schema has no column for it
func (h *AttachmentHandler) UploadContactPhoto(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Uploading contact photo", zap.String("contact_id", id))

	if _, err := h.records.GetContact(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upload photo"})
	}

	img, err := decodeUpload(c)
	if err != nil {
		log.Error("Invalid image upload", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid image data"})
	}

	data, err := imagestore.EncodeJPEG(img)
	if err != nil {
		log.Error("Failed to compress contact photo", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save photo"})
	}
	if err := h.side.SetBlob(store.NamespaceContactPhoto, id, data); err != nil {
		log.Error("Failed to store contact photo", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save photo"})
	}

	log.Info("Contact photo saved", zap.String("contact_id", id))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Photo saved successfully"})
}

// GetContactPhoto serves the portrait blob, or the placeholder when absent
func (h *AttachmentHandler) GetContactPhoto(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if _, err := h.records.GetContact(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contact not found"})
		}
		log.Error("Failed to load contact", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load photo"})
	}

	data := h.side.GetBlob(store.NamespaceContactPhoto, id)
	if data == nil {
		return serveImage(c, nil)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// DeleteContactPhoto removes the portrait blob; idempotent
func (h *AttachmentHandler) DeleteContactPhoto(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if err := h.side.Remove(store.NamespaceContactPhoto, id); err != nil {
		log.Error("Failed to remove contact photo", zap.String("contact_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete photo"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Photo deleted successfully"})
}

// parseIndex reads the :index path parameter and bounds-checks it
func parseIndex(c echo.Context, length int) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= length {
		return 0, false
	}
	return index, true
}

// pruneSupersededRefs collapses an attachment list after a new save.
// Retention is latest-only per owner: the save's cleanup sweep already
// removed the older files on disk, so every previous reference is stale.
// Fallback blobs are not covered by the sweep and are removed here.
func (h *AttachmentHandler) pruneSupersededRefs(c echo.Context, refs model.StringList, current string) model.StringList {
	log := logger.FromContext(c)
	for _, ref := range refs {
		if ref == current || !imagestore.IsFallbackRef(ref) {
			continue
		}
		if err := h.images.Delete(ref); err != nil {
			log.Error("Failed to delete superseded fallback image",
				zap.String("ref", ref),
				zap.Error(err))
		}
	}
	return model.StringList{current}
}
