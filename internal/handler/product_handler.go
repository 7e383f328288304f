package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/imagestore"
	"inventory-service/internal/model"
	"inventory-service/internal/store"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests.
// PackingType and QuantityPerBox are schema-overflow fields persisted in the
// side-attribute store, not on the product row.
type ProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	SKU            string  `json:"sku"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	MOQ            int     `json:"moq"`
	Dimensions     string  `json:"dimensions"`
	Weight         float64 `json:"weight"`
	Materials      string  `json:"materials"`
	Notes          string  `json:"notes"`
	SupplierID     *string `json:"supplier_id"`
	PackingType    string  `json:"packing_type"`
	QuantityPerBox int64   `json:"quantity_per_box"`
}

// ProductResponse is a product together with its side attributes and the
// defensively parsed dimension components
type ProductResponse struct {
	model.Product
	PackingType         string   `json:"packing_type"`
	QuantityPerBox      int64    `json:"quantity_per_box"`
	DimensionComponents []string `json:"dimension_components"`
}

// ProductHandler serves the product CRUD endpoints
type ProductHandler struct {
	records *store.RecordStore
	side    *store.SideAttributeStore
	images  *imagestore.ImageStore
}

// NewProductHandler creates a product handler with its stores
func NewProductHandler(records *store.RecordStore, side *store.SideAttributeStore, images *imagestore.ImageStore) *ProductHandler {
	return &ProductHandler{records: records, side: side, images: images}
}

func (h *ProductHandler) toResponse(product model.Product) ProductResponse {
	width, height, depth := product.DimensionsComponents()
	return ProductResponse{
		Product:             product,
		PackingType:         h.side.GetString(store.NamespacePackingType, product.ID, ""),
		QuantityPerBox:      h.side.GetInt(store.NamespaceQuantityPerBox, product.ID, 0),
		DimensionComponents: []string{width, height, depth},
	}
}

// List handles retrieving all products with deterministic ordering
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	sortKeys := splitSortKeys(c.QueryParam("sort"))
	log.Info("Listing products", zap.Strings("sort", sortKeys))
	prometheus.RecordOperation("product", "fetch_all")

	products, err := h.records.FetchProducts(sortKeys...)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, h.toResponse(product))
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(responses)))
	return c.JSON(http.StatusOK, responses)
}

// Get handles retrieving a single product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting product by ID", zap.String("product_id", id))

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Product not found", zap.String("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve product"})
	}

	return c.JSON(http.StatusOK, h.toResponse(*product))
}

// Create handles creating a new product
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")
	prometheus.RecordOperation("product", "save")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	product := model.Product{
		Name:       req.Name,
		SKU:        req.SKU,
		Category:   req.Category,
		Price:      req.Price,
		Currency:   req.Currency,
		MOQ:        req.MOQ,
		Dimensions: req.Dimensions,
		Weight:     req.Weight,
		Materials:  req.Materials,
		Notes:      req.Notes,
		SupplierID: req.SupplierID,
	}

	if err := h.records.SaveProduct(&product); err != nil {
		return h.saveError(c, err, "")
	}

	h.applySideAttributes(c, product.ID, &req)

	log.Info("Product created successfully",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, h.toResponse(product))
}

// Update handles updating an existing product. All editable fields are
// overwritten in one save, matching the form's apply-properties operation.
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating product", zap.String("product_id", id))
	prometheus.RecordOperation("product", "save")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Product not found for update", zap.String("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to load product for update", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	product.Name = req.Name
	product.SKU = req.SKU
	product.Category = req.Category
	product.Price = req.Price
	product.Currency = req.Currency
	product.MOQ = req.MOQ
	product.Dimensions = req.Dimensions
	product.Weight = req.Weight
	product.Materials = req.Materials
	product.Notes = req.Notes
	product.SupplierID = req.SupplierID

	if err := h.records.SaveProduct(product); err != nil {
		return h.saveError(c, err, id)
	}

	h.applySideAttributes(c, product.ID, &req)

	log.Info("Product updated successfully",
		zap.String("product_id", id),
		zap.String("name", product.Name))
	return c.JSON(http.StatusOK, h.toResponse(*product))
}

// Delete handles deleting a product. The structured store does not cascade:
// attachments and side attributes are cleaned up here, keeping the create and
// delete paths symmetric.
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting product", zap.String("product_id", id))
	prometheus.RecordOperation("product", "delete")

	product, err := h.records.GetProduct(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("Product not found for deletion", zap.String("product_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		log.Error("Failed to load product for deletion", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}

	if err := h.records.DeleteProduct(id); err != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}

	// Attachment and side-attribute cleanup.
	for _, ref := range product.ImagePaths {
		if err := h.images.Delete(ref); err != nil {
			log.Error("Failed to delete product attachment",
				zap.String("product_id", id),
				zap.String("ref", ref),
				zap.Error(err))
		}
	}
	h.removeSideAttributes(c, id)

	log.Info("Product deleted successfully", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

func (h *ProductHandler) saveError(c echo.Context, err error, id string) error {
	log := logger.FromContext(c)
	if errors.Is(err, store.ErrNameRequired) {
		log.Warn("Product validation failed", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	log.Error("Failed to save product", zap.String("product_id", id), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save product"})
}

// applySideAttributes persists the schema-overflow fields after the record
// save. Failures are logged, not surfaced: the structured save already
// succeeded.
func (h *ProductHandler) applySideAttributes(c echo.Context, id string, req *ProductRequest) {
	log := logger.FromContext(c)

	if err := h.side.SetString(store.NamespacePackingType, id, req.PackingType); err != nil {
		log.Error("Failed to save packing type", zap.String("product_id", id), zap.Error(err))
	}
	if err := h.side.SetInt(store.NamespaceQuantityPerBox, id, req.QuantityPerBox); err != nil {
		log.Error("Failed to save quantity per box", zap.String("product_id", id), zap.Error(err))
	}

	// Mirror of the structured supplier reference, kept for consumers that
	// look the link up by owner identity.
	if req.SupplierID != nil && *req.SupplierID != "" {
		if err := h.side.SetString(store.NamespaceProductSupplier, id, *req.SupplierID); err != nil {
			log.Error("Failed to save supplier link", zap.String("product_id", id), zap.Error(err))
		}
	} else if err := h.side.Remove(store.NamespaceProductSupplier, id); err != nil {
		log.Error("Failed to clear supplier link", zap.String("product_id", id), zap.Error(err))
	}
}

func (h *ProductHandler) removeSideAttributes(c echo.Context, id string) {
	log := logger.FromContext(c)
	for _, namespace := range []string{
		store.NamespacePackingType,
		store.NamespaceQuantityPerBox,
		store.NamespaceProductSupplier,
	} {
		if err := h.side.Remove(namespace, id); err != nil {
			log.Error("Failed to remove side attribute",
				zap.String("product_id", id),
				zap.String("namespace", namespace),
				zap.Error(err))
		}
	}
}

// splitSortKeys parses the comma-separated sort query parameter
func splitSortKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
