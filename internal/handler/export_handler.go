package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/export"
	"inventory-service/internal/store"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// ExportHandler serves the catalog export endpoints
type ExportHandler struct {
	records  *store.RecordStore
	exporter *export.Exporter
}

// NewExportHandler creates an export handler
func NewExportHandler(records *store.RecordStore, exporter *export.Exporter) *ExportHandler {
	return &ExportHandler{records: records, exporter: exporter}
}

// Products exports the product catalog as CSV or XLSX and returns the
// document as an attachment
func (h *ExportHandler) Products(c echo.Context) error {
	log := logger.FromContext(c)
	format := exportFormat(c)
	log.Info("Exporting products", zap.String("format", format))

	products, err := h.records.FetchProducts("name")
	if err != nil {
		log.Error("Failed to fetch products for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export products"})
	}

	var path string
	if format == "xlsx" {
		path, err = h.exporter.ProductsXLSX(products)
	} else {
		path, err = h.exporter.ProductsCSV(products)
	}
	if err != nil {
		log.Error("Failed to write product export", zap.String("format", format), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export products"})
	}

	prometheus.ExportsCounter.WithLabelValues("product", format).Inc()
	log.Info("Products exported", zap.String("path", path), zap.Int("count", len(products)))
	return c.Attachment(path, filepath.Base(path))
}

// Suppliers exports the supplier catalog as CSV or XLSX
func (h *ExportHandler) Suppliers(c echo.Context) error {
	log := logger.FromContext(c)
	format := exportFormat(c)
	log.Info("Exporting suppliers", zap.String("format", format))

	suppliers, err := h.records.FetchSuppliers("name")
	if err != nil {
		log.Error("Failed to fetch suppliers for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export suppliers"})
	}

	var path string
	if format == "xlsx" {
		path, err = h.exporter.SuppliersXLSX(suppliers)
	} else {
		path, err = h.exporter.SuppliersCSV(suppliers)
	}
	if err != nil {
		log.Error("Failed to write supplier export", zap.String("format", format), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export suppliers"})
	}

	prometheus.ExportsCounter.WithLabelValues("supplier", format).Inc()
	log.Info("Suppliers exported", zap.String("path", path), zap.Int("count", len(suppliers)))
	return c.Attachment(path, filepath.Base(path))
}

func exportFormat(c echo.Context) string {
	if c.QueryParam("format") == "xlsx" {
		return "xlsx"
	}
	return "csv"
}
