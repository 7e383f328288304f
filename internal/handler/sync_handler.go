package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/store"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// SyncHandler applies remote change notifications to the local store using
// the property-trumps merge policy: only the properties present in the
// payload are overwritten, so concurrent edits to different properties of
// the same record both survive.
type SyncHandler struct {
	records *store.RecordStore
	enabled bool
}

// NewSyncHandler creates a sync handler. When the sync capability flag is
// off the endpoints refuse merges.
func NewSyncHandler(records *store.RecordStore, enabled bool) *SyncHandler {
	return &SyncHandler{records: records, enabled: enabled}
}

// MergeProduct applies a remote product change
func (h *SyncHandler) MergeProduct(c echo.Context) error {
	return h.merge(c, "product", h.records.MergeProductProperties)
}

// MergeSupplier applies a remote supplier change
func (h *SyncHandler) MergeSupplier(c echo.Context) error {
	return h.merge(c, "supplier", h.records.MergeSupplierProperties)
}

// MergeContact applies a remote contact change
func (h *SyncHandler) MergeContact(c echo.Context) error {
	return h.merge(c, "contact", h.records.MergeContactProperties)
}

func (h *SyncHandler) merge(c echo.Context, entity string, apply func(string, map[string]interface{}) error) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if !h.enabled {
		log.Warn("Sync merge rejected, sync is disabled",
			zap.String("entity", entity),
			zap.String("record_id", id))
		return c.JSON(http.StatusConflict, echo.Map{"error": "sync is disabled"})
	}

	var props map[string]interface{}
	if err := c.Bind(&props); err != nil {
		log.Error("Invalid merge payload", zap.String("record_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if err := apply(id, props); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Warn("Record not found for merge",
				zap.String("entity", entity),
				zap.String("record_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Record not found"})
		case errors.Is(err, store.ErrNameRequired):
			log.Warn("Merge validation failed", zap.String("record_id", id), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		default:
			log.Error("Failed to apply merge",
				zap.String("entity", entity),
				zap.String("record_id", id),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to apply change"})
		}
	}

	prometheus.SyncMergesCounter.WithLabelValues(entity).Inc()
	log.Info("Remote change merged",
		zap.String("entity", entity),
		zap.String("record_id", id),
		zap.Int("properties", len(props)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Change applied successfully"})
}
