package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"catalog-service/internal/model"
	"catalog-service/internal/repository"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	NetPrice   float64  `json:"net_price"`
	VATRate    *float64 `json:"vat_rate"`
	SupplierID *uint    `json:"supplier_id"`
}

// SupplierResponse is the supplier snapshot embedded in product payloads.
type SupplierResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProductResponse is the JSON shape of a catalog product.
type ProductResponse struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	NetPrice   float64           `json:"net_price"`
	GrossPrice float64           `json:"gross_price"`
	VATRate    float64           `json:"vat_rate"`
	Supplier   *SupplierResponse `json:"supplier"`
}

func toProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		Code:       p.Code(),
		Name:       p.Name(),
		NetPrice:   p.NetPrice().InexactFloat64(),
		GrossPrice: p.GrossPrice().InexactFloat64(),
		VATRate:    p.VATRate().InexactFloat64(),
	}
	if s := p.Supplier(); s != nil {
		resp.Supplier = &SupplierResponse{ID: s.ID(), Name: s.Name()}
	}
	return resp
}

func toProductResponses(products []*model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// ProductHandler serves the product CRUD endpoints over an injected repository.
type ProductHandler struct {
	repo repository.ProductRepository
}

func NewProductHandler(repo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// ListProducts handles retrieving all active products
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Listing products")
	prometheus.RecordProductOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	products, skipped, err := h.repo.FindAllActive(c.Request().Context())
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	if skipped > 0 {
		// Partial failure: some stored rows no longer validate. Surface it
		// instead of silently returning less than the table holds.
		log.Warn("Some product rows failed reconstruction", zap.Int("skipped", skipped))
		prometheus.RecordSkippedRows(skipped)
		c.Response().Header().Set("X-Skipped-Rows", strconv.Itoa(skipped))
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// GetProduct handles retrieving a single product by code
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")
	log.Info("Getting product by code", zap.String("code", code))
	prometheus.RecordProductOperation("get")

	defer prometheus.TrackDBOperation("query")(time.Now())

	product, err := h.repo.FindByCode(c.Request().Context(), code)
	if err != nil {
		log.Error("Failed to find product", zap.String("code", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve product",
		})
	}
	if product == nil {
		log.Warn("Product not found", zap.String("code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product retrieved successfully",
		zap.String("code", code),
		zap.String("name", product.Name()))
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// CreateProduct handles creating a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Creating new product")
	prometheus.RecordProductOperation("create")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	product, err := h.productFromRequest(c, &req, req.Code)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Product validation failed",
				zap.String("field", verr.Field),
				zap.String("reason", verr.Reason))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Error(),
			})
		}
		log.Error("Failed to resolve supplier", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	id, err := h.repo.Create(c.Request().Context(), product)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("Product with this code already exists", zap.String("code", product.Code()))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product with this code already exists",
			})
		}
		log.Error("Failed to create product",
			zap.String("code", product.Code()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	log.Info("Product created successfully",
		zap.Uint("id", id),
		zap.String("code", product.Code()),
		zap.String("name", product.Name()))
	return c.JSON(http.StatusCreated, toProductResponse(product))
}

// UpdateProduct handles overwriting a product's name and prices by code
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")
	log.Info("Updating product", zap.String("code", code))
	prometheus.RecordProductOperation("update")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("code", code), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	// The code in the path is authoritative; updates never rename a code.
	product, err := h.productFromRequest(c, &req, code)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Product validation failed",
				zap.String("field", verr.Field),
				zap.String("reason", verr.Reason))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Error(),
			})
		}
		log.Error("Failed to resolve supplier", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	ok, err := h.repo.Update(c.Request().Context(), product)
	if err != nil {
		log.Error("Failed to update product", zap.String("code", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}
	if !ok {
		log.Warn("Product not found for update", zap.String("code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product updated successfully",
		zap.String("code", code),
		zap.String("name", product.Name()),
		zap.Float64("net_price", product.NetPrice().InexactFloat64()))
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles removing a product by code
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")
	log.Info("Deleting product", zap.String("code", code))
	prometheus.RecordProductOperation("delete")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	ok, err := h.repo.Delete(c.Request().Context(), code)
	if err != nil {
		log.Error("Failed to delete product", zap.String("code", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}
	if !ok {
		log.Warn("Product not found for deletion", zap.String("code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product deleted successfully", zap.String("code", code))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}

// SearchProducts handles the filtered search over active products
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Searching products")
	prometheus.RecordProductOperation("search")

	filter := repository.Filter{Name: c.QueryParam("name")}
	if raw := c.QueryParam("max_net_price"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			log.Warn("Invalid max_net_price parameter", zap.String("value", raw), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "max_net_price must be a number",
			})
		}
		filter.MaxNetPrice = &max
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	products, err := h.repo.Search(c.Request().Context(), filter)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Invalid search filter",
				zap.String("field", verr.Field),
				zap.String("reason", verr.Reason))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Error(),
			})
		}
		log.Error("Failed to search products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to search products",
		})
	}

	log.Info("Search completed", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// productFromRequest builds a validated product, resolving the optional
// supplier reference against the supplier lookup table.
func (h *ProductHandler) productFromRequest(c echo.Context, req *ProductRequest, code string) (*model.Product, error) {
	vatRate := decimal.NewFromInt(model.DefaultVATRate)
	if req.VATRate != nil {
		vatRate = decimal.NewFromFloat(*req.VATRate)
	}

	var supplier *model.Supplier
	if req.SupplierID != nil {
		suppliers, err := h.repo.ListSuppliers(c.Request().Context())
		if err != nil {
			return nil, err
		}
		for _, s := range suppliers {
			if s.ID() == *req.SupplierID {
				supplier = s
				break
			}
		}
		if supplier == nil {
			return nil, &model.ValidationError{Field: "supplier_id", Reason: "unknown supplier"}
		}
	}

	return model.NewProduct(code, req.Name, decimal.NewFromFloat(req.NetPrice), vatRate, supplier)
}
