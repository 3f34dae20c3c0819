package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apimodel "example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/services/product/internal/service"
)

// ProductHandler handles product HTTP requests.
type ProductHandler struct {
	service *service.ProductService
}

// NewProductHandler creates a new handler.
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{service: svc}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/product/:productId", h.GetProduct)
	router.POST("/product", h.CreateProduct)
	router.DELETE("/product/:productId", h.DeleteProduct)
}

// GetProduct returns a single product. The optional delay and faultPercent
// query parameters drive the read-path fault injection hook.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	delay := intQuery(c, "delay")
	faultPercent := intQuery(c, "faultPercent")

	product, err := h.service.GetProduct(c.Request.Context(), productID, delay, faultPercent)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct stores a new product.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var body apimodel.Product
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		writeError(c, apperrors.NewBadRequest("invalid request body: %v", err))
		return
	}

	created, err := h.service.CreateProduct(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// DeleteProduct removes a product.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), productID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
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
