package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"catalog-service/internal/repository"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"
)

// SupplierHandler serves the read-only supplier lookup.
type SupplierHandler struct {
	repo repository.ProductRepository
}

func NewSupplierHandler(repo repository.ProductRepository) *SupplierHandler {
	return &SupplierHandler{repo: repo}
}

// ListSuppliers retrieves all suppliers ordered by name
func (h *SupplierHandler) ListSuppliers(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Listing suppliers")
	prometheus.RecordProductOperation("list_suppliers")

	defer prometheus.TrackDBOperation("query")(time.Now())

	suppliers, err := h.repo.ListSuppliers(c.Request().Context())
	if err != nil {
		log.Error("Failed to retrieve suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve suppliers",
		})
	}

	out := make([]SupplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, SupplierResponse{ID: s.ID(), Name: s.Name()})
	}

	log.Info("Suppliers retrieved successfully", zap.Int("count", len(out)))
	return c.JSON(http.StatusOK, out)
}
