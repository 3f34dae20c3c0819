package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apimodel "example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/services/recommendation/internal/service"
)

// RecommendationHandler handles recommendation HTTP requests.
type RecommendationHandler struct {
	service *service.RecommendationService
}

// NewRecommendationHandler creates a new handler.
func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: svc}
}

// RegisterRoutes registers the recommendation routes.
func (h *RecommendationHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/recommendation", h.GetRecommendations)
	router.POST("/recommendation", h.CreateRecommendation)
	router.DELETE("/recommendation", h.DeleteRecommendations)
}

// GetRecommendations returns the recommendations for a productId.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	recommendations, err := h.service.GetRecommendations(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendations)
}

// CreateRecommendation stores a new recommendation.
func (h *RecommendationHandler) CreateRecommendation(c *gin.Context) {
	var body apimodel.Recommendation
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		writeError(c, apperrors.NewBadRequest("invalid request body: %v", err))
		return
	}

	created, err := h.service.CreateRecommendation(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// DeleteRecommendations removes all recommendations for a productId.
func (h *RecommendationHandler) DeleteRecommendations(c *gin.Context) {
	productID, err := productIDParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.service.DeleteRecommendations(c.Request.Context(), productID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func productIDParam(c *gin.Context) (int, error) {
	raw := c.Query("productId")
	if raw == "" {
		return 0, apperrors.NewBadRequest("Required query parameter 'productId' is missing")
	}
	productID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequest("Type mismatch, productId: %s", raw)
	}
	return productID, nil
}

func writeError(c *gin.Context, err error) {
	info := httperr.New(c.Request.URL.Path, err)
	c.AbortWithStatusJSON(info.Status, info)
}
