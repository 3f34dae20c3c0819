package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	apimodel "example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/services/review/internal/service"
)

// Handler defines the review API handler.
type Handler struct {
	service *service.ReviewService
	log     *logrus.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *service.ReviewService, log *logrus.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

// RegisterRoutes registers API routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/review", h.GetReviews).Methods(http.MethodGet)
	r.HandleFunc("/review", h.CreateReview).Methods(http.MethodPost)
	r.HandleFunc("/review", h.DeleteReviews).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// GetReviews returns the reviews for a productId.
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.service.GetReviews(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, reviews)
}

// CreateReview stores a new review.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var body apimodel.Review
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, apperrors.NewBadRequest("invalid request body: %v", err))
		return
	}

	created, err := h.service.CreateReview(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, created)
}

// DeleteReviews removes all reviews for a productId.
func (h *Handler) DeleteReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteReviews(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func productIDParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("productId")
	if raw == "" {
		return 0, apperrors.NewBadRequest("Required query parameter 'productId' is missing")
	}
	productID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequest("Type mismatch, productId: %s", raw)
	}
	return productID, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	info := httperr.New(r.URL.Path, err)
	h.writeJSON(w, info.Status, info)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Error("Failed to encode JSON response")
	}
}
