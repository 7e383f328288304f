package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"inventory-service/internal/store"
)

// HealthHandler reports service status and the record counts used by
// summary displays. DataReset is true for the session when the local store
// had to be rebuilt from scratch at startup.
type HealthHandler struct {
	records   *store.RecordStore
	dataReset bool
}

// NewHealthHandler creates a health handler
func NewHealthHandler(records *store.RecordStore, dataReset bool) *HealthHandler {
	return &HealthHandler{records: records, dataReset: dataReset}
}

// Check handles the health check endpoint. The counts never fail: a storage
// error is reported as zero, not as an unhealthy service.
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "ok",
		"data_reset": h.dataReset,
		"counts": echo.Map{
			"products":  h.records.CountProducts(),
			"suppliers": h.records.CountSuppliers(),
			"contacts":  h.records.CountContacts(),
		},
	})
}
