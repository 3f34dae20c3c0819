package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apimodel "example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/composite/config"
	"example.com/productmesh/services/composite/internal/auth"
	"example.com/productmesh/services/composite/internal/health"
	"example.com/productmesh/services/composite/internal/service"
	"example.com/productmesh/services/composite/internal/tracing"
)

// fakeIntegration keeps the three collections in memory so the handlers
// can be exercised end to end without any downstream service.
type fakeIntegration struct {
	products        map[int]apimodel.Product
	recommendations map[int][]apimodel.Recommendation
	reviews         map[int][]apimodel.Review
}

func newFakeIntegration() *fakeIntegration {
	return &fakeIntegration{
		products:        map[int]apimodel.Product{},
		recommendations: map[int][]apimodel.Recommendation{},
		reviews:         map[int][]apimodel.Review{},
	}
}

func (f *fakeIntegration) GetProduct(ctx context.Context, productID, delay, faultPercent int) (apimodel.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return apimodel.Product{}, apperrors.NewNotFound("No product found for productId: %d", productID)
	}
	return product, nil
}

func (f *fakeIntegration) GetRecommendations(ctx context.Context, productID int) []apimodel.Recommendation {
	return f.recommendations[productID]
}

func (f *fakeIntegration) GetReviews(ctx context.Context, productID int) []apimodel.Review {
	return f.reviews[productID]
}

func (f *fakeIntegration) CreateProduct(ctx context.Context, body apimodel.Product) (apimodel.Product, error) {
	if _, ok := f.products[body.ProductID]; ok {
		return apimodel.Product{}, apperrors.NewBadRequest("Duplicate key, Product Id: %d", body.ProductID)
	}
	f.products[body.ProductID] = body
	return body, nil
}

func (f *fakeIntegration) CreateRecommendation(ctx context.Context, body apimodel.Recommendation) (apimodel.Recommendation, error) {
	f.recommendations[body.ProductID] = append(f.recommendations[body.ProductID], body)
	return body, nil
}

func (f *fakeIntegration) CreateReview(ctx context.Context, body apimodel.Review) (apimodel.Review, error) {
	f.reviews[body.ProductID] = append(f.reviews[body.ProductID], body)
	return body, nil
}

func (f *fakeIntegration) DeleteProduct(ctx context.Context, productID int) error {
	delete(f.products, productID)
	return nil
}

func (f *fakeIntegration) DeleteRecommendations(ctx context.Context, productID int) error {
	delete(f.recommendations, productID)
	return nil
}

func (f *fakeIntegration) DeleteReviews(ctx context.Context, productID int) error {
	delete(f.reviews, productID)
	return nil
}

type upProber struct{}

func (upProber) CheckHealth(ctx context.Context, name string) bool { return true }

func newTestServer(t *testing.T, secret string) (*gin.Engine, *fakeIntegration) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := newFakeIntegration()
	tracer, err := tracing.NewTracer(config.TracingConfig{})
	require.NoError(t, err)

	aggregator := service.NewAggregator(fake, serviceutil.NewAddressResolver("7000"), tracer)
	monitor := health.NewMonitor(upProber{}, []string{"product"})
	monitor.Refresh(context.Background())

	router := gin.New()
	verifier := auth.NewVerifier(secret)
	handler := NewCompositeHandler(aggregator, monitor)

	read := router.Group("/", RequireScope(verifier, auth.ScopeProductRead))
	write := router.Group("/", RequireScope(verifier, auth.ScopeProductWrite))
	handler.RegisterRoutes(read, write)
	router.GET("/health", handler.Health)

	return router, fake
}

func performJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateThenGetAggregate(t *testing.T) {
	router, _ := newTestServer(t, "")

	body := apimodel.ProductAggregate{
		ProductID: 1,
		Name:      "product 1",
		Weight:    10,
		Recommendations: []apimodel.RecommendationSummary{
			{RecommendationID: 1, Author: "author 1", Rate: 4, Content: "content 1"},
		},
		Reviews: []apimodel.ReviewSummary{
			{ReviewID: 1, Author: "author 1", Subject: "subject 1", Content: "content 1"},
		},
	}

	created := performJSON(router, http.MethodPost, "/product-composite", body, nil)
	require.Equal(t, http.StatusOK, created.Code)

	got := performJSON(router, http.MethodGet, "/product-composite/1", nil, nil)
	require.Equal(t, http.StatusOK, got.Code)

	var aggregate apimodel.ProductAggregate
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &aggregate))
	assert.Equal(t, 1, aggregate.ProductID)
	assert.Equal(t, "product 1", aggregate.Name)
	require.Len(t, aggregate.Recommendations, 1)
	require.Len(t, aggregate.Reviews, 1)
	assert.Equal(t, "subject 1", aggregate.Reviews[0].Subject)
}

func TestGetUnknownProductReturns404WithErrorBody(t *testing.T) {
	router, _ := newTestServer(t, "")

	got := performJSON(router, http.MethodGet, "/product-composite/13", nil, nil)
	require.Equal(t, http.StatusNotFound, got.Code)

	var info httperr.ErrorInfo
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &info))
	assert.Equal(t, "/product-composite/13", info.Path)
	assert.Equal(t, http.StatusNotFound, info.Status)
	assert.Equal(t, "No product found for productId: 13", info.Message)
	assert.False(t, info.Timestamp.IsZero())
}

func TestDeleteIsIdempotentOverHTTP(t *testing.T) {
	router, _ := newTestServer(t, "")

	body := apimodel.ProductAggregate{ProductID: 1, Name: "product 1"}
	created := performJSON(router, http.MethodPost, "/product-composite", body, nil)
	require.Equal(t, http.StatusOK, created.Code)

	first := performJSON(router, http.MethodDelete, "/product-composite/1", nil, nil)
	second := performJSON(router, http.MethodDelete, "/product-composite/1", nil, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)

	got := performJSON(router, http.MethodGet, "/product-composite/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t, "")

	got := performJSON(router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, got.Code)

	var snapshot health.Snapshot
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &snapshot))
	assert.True(t, snapshot.Services["product"])
}

func signToken(t *testing.T, secret string, scopes []string) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Scopes: scopes,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestScopeGating(t *testing.T) {
	const secret = "test-secret"
	router, fake := newTestServer(t, secret)
	fake.products[1] = apimodel.Product{ProductID: 1, Name: "product 1"}

	// No token at all.
	got := performJSON(router, http.MethodGet, "/product-composite/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, got.Code)

	// Read scope can read but not write.
	readToken := signToken(t, secret, []string{auth.ScopeProductRead})
	got = performJSON(router, http.MethodGet, "/product-composite/1", nil,
		map[string]string{"Authorization": readToken})
	assert.Equal(t, http.StatusOK, got.Code)

	got = performJSON(router, http.MethodDelete, "/product-composite/1", nil,
		map[string]string{"Authorization": readToken})
	assert.Equal(t, http.StatusForbidden, got.Code)

	// Write scope can write.
	writeToken := signToken(t, secret, []string{auth.ScopeProductWrite})
	got = performJSON(router, http.MethodDelete, "/product-composite/1", nil,
		map[string]string{"Authorization": writeToken})
	assert.Equal(t, http.StatusOK, got.Code)
}
