package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apimodel "example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/services/composite/internal/health"
	"example.com/productmesh/services/composite/internal/service"
)

// CompositeHandler handles product aggregate HTTP requests.
type CompositeHandler struct {
	aggregator *service.Aggregator
	monitor    *health.Monitor
}

// NewCompositeHandler creates a new handler.
func NewCompositeHandler(aggregator *service.Aggregator, monitor *health.Monitor) *CompositeHandler {
	return &CompositeHandler{aggregator: aggregator, monitor: monitor}
}

// RegisterRoutes registers the aggregate routes onto a router group. The
// group carries the scope middleware when auth is enabled.
func (h *CompositeHandler) RegisterRoutes(read, write gin.IRoutes) {
	read.GET("/product-composite/:productId", h.GetProduct)
	write.POST("/product-composite", h.CreateProduct)
	write.DELETE("/product-composite/:productId", h.DeleteProduct)
}

// GetProduct returns a full product aggregate.
func (h *CompositeHandler) GetProduct(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	delay := intQuery(c, "delay")
	faultPercent := intQuery(c, "faultPercent")

	aggregate, err := h.aggregator.GetProduct(c.Request.Context(), productID, delay, faultPercent)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, aggregate)
}

// CreateProduct decomposes and creates an aggregate.
func (h *CompositeHandler) CreateProduct(c *gin.Context) {
	var body apimodel.ProductAggregate
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		writeError(c, apperrors.NewBadRequest("invalid request body: %v", err))
		return
	}

	if err := h.aggregator.CreateProduct(c.Request.Context(), body); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteProduct tears an aggregate down across all services.
func (h *CompositeHandler) DeleteProduct(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.aggregator.DeleteProduct(c.Request.Context(), productID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// Health serves the last health snapshot, 200 when every core service was
// up, 503 otherwise.
func (h *CompositeHandler) Health(c *gin.Context) {
	snapshot := h.monitor.Snapshot()
	status := http.StatusOK
	if !snapshot.Up() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, snapshot)
}

func productIDParam(c *gin.Context) (int, error) {
	raw := c.Param("productId")
	productID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequest("Type mismatch, productId: %s", raw)
	}
	return productID, nil
}

func intQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, "0"))
	if err != nil {
		return 0
	}
	return value
}

func writeError(c *gin.Context, err error) {
	info := httperr.New(c.Request.URL.Path, err)
	c.AbortWithStatusJSON(info.Status, info)
}
