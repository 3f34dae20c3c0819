package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/composite/config"
	"example.com/productmesh/services/composite/internal/tracing"
)

type MockIntegration struct {
	mock.Mock
}

func (m *MockIntegration) GetProduct(ctx context.Context, productID, delay, faultPercent int) (api.Product, error) {
	args := m.Called(ctx, productID, delay, faultPercent)
	return args.Get(0).(api.Product), args.Error(1)
}

func (m *MockIntegration) GetRecommendations(ctx context.Context, productID int) []api.Recommendation {
	args := m.Called(ctx, productID)
	return args.Get(0).([]api.Recommendation)
}

func (m *MockIntegration) GetReviews(ctx context.Context, productID int) []api.Review {
	args := m.Called(ctx, productID)
	return args.Get(0).([]api.Review)
}

func (m *MockIntegration) CreateProduct(ctx context.Context, body api.Product) (api.Product, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(api.Product), args.Error(1)
}

func (m *MockIntegration) CreateRecommendation(ctx context.Context, body api.Recommendation) (api.Recommendation, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(api.Recommendation), args.Error(1)
}

func (m *MockIntegration) CreateReview(ctx context.Context, body api.Review) (api.Review, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(api.Review), args.Error(1)
}

func (m *MockIntegration) DeleteProduct(ctx context.Context, productID int) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockIntegration) DeleteRecommendations(ctx context.Context, productID int) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockIntegration) DeleteReviews(ctx context.Context, productID int) error {
	return m.Called(ctx, productID).Error(0)
}

func newTestAggregator(integration Integration) *Aggregator {
	tracer, _ := tracing.NewTracer(config.TracingConfig{})
	return NewAggregator(integration, serviceutil.NewAddressResolver("7000"), tracer)
}

func TestGetProductJoinsAllThreeServices(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	integration.On("GetProduct", mock.Anything, 1, 0, 0).Return(api.Product{
		ProductID: 1, Name: "product 1", Weight: 10, ServiceAddress: "product-host/10.0.0.1:7001",
	}, nil)
	integration.On("GetRecommendations", mock.Anything, 1).Return([]api.Recommendation{
		{ProductID: 1, RecommendationID: 1, Author: "author 1", Rate: 5, ServiceAddress: "rec-host/10.0.0.2:7002"},
	})
	integration.On("GetReviews", mock.Anything, 1).Return([]api.Review{
		{ProductID: 1, ReviewID: 1, Author: "author 1", Subject: "subject 1", ServiceAddress: "rev-host/10.0.0.3:7003"},
	})

	aggregate, err := aggregator.GetProduct(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, aggregate.ProductID)
	assert.Equal(t, "product 1", aggregate.Name)
	require.Len(t, aggregate.Recommendations, 1)
	require.Len(t, aggregate.Reviews, 1)
	require.NotNil(t, aggregate.ServiceAddresses)
	assert.Equal(t, "product-host/10.0.0.1:7001", aggregate.ServiceAddresses.ProductAddress)
	assert.Equal(t, "rec-host/10.0.0.2:7002", aggregate.ServiceAddresses.RecommendationAddress)
	assert.Equal(t, "rev-host/10.0.0.3:7003", aggregate.ServiceAddresses.ReviewAddress)
	assert.NotEmpty(t, aggregate.ServiceAddresses.CompositeAddress)
}

func TestGetProductSurvivesEmptyLists(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	integration.On("GetProduct", mock.Anything, 1, 0, 0).Return(api.Product{ProductID: 1, Name: "product 1"}, nil)
	integration.On("GetRecommendations", mock.Anything, 1).Return([]api.Recommendation{})
	integration.On("GetReviews", mock.Anything, 1).Return([]api.Review{})

	aggregate, err := aggregator.GetProduct(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, aggregate.Recommendations)
	assert.Empty(t, aggregate.Reviews)
	assert.Empty(t, aggregate.ServiceAddresses.RecommendationAddress)
	assert.Empty(t, aggregate.ServiceAddresses.ReviewAddress)
}

func TestGetProductFailsWhenProductFails(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	integration.On("GetProduct", mock.Anything, 13, 0, 0).
		Return(api.Product{}, apperrors.NewNotFound("No product found for productId: 13"))
	integration.On("GetRecommendations", mock.Anything, 13).Return([]api.Recommendation{}).Maybe()
	integration.On("GetReviews", mock.Anything, 13).Return([]api.Review{}).Maybe()

	_, err := aggregator.GetProduct(context.Background(), 13, 0, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetProductFansOutConcurrently(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	wait := 100 * time.Millisecond
	integration.On("GetProduct", mock.Anything, 1, 0, 0).
		Return(api.Product{ProductID: 1}, nil).
		Run(func(mock.Arguments) { time.Sleep(wait) })
	integration.On("GetRecommendations", mock.Anything, 1).
		Return([]api.Recommendation{}).
		Run(func(mock.Arguments) { time.Sleep(wait) })
	integration.On("GetReviews", mock.Anything, 1).
		Return([]api.Review{}).
		Run(func(mock.Arguments) { time.Sleep(wait) })

	start := time.Now()
	_, err := aggregator.GetProduct(context.Background(), 1, 0, 0)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 3*wait, "calls should overlap, not run sequentially")
}

func TestCreateProductStampsProductID(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	body := api.ProductAggregate{
		ProductID: 1,
		Name:      "product 1",
		Weight:    10,
		Recommendations: []api.RecommendationSummary{
			{RecommendationID: 1, Author: "author 1", Rate: 4},
		},
		Reviews: []api.ReviewSummary{
			{ReviewID: 1, Author: "author 1", Subject: "subject 1"},
		},
	}

	integration.On("CreateProduct", mock.Anything, api.Product{ProductID: 1, Name: "product 1", Weight: 10}).
		Return(api.Product{ProductID: 1}, nil)
	integration.On("CreateRecommendation", mock.Anything, mock.MatchedBy(func(r api.Recommendation) bool {
		return r.ProductID == 1 && r.RecommendationID == 1
	})).Return(api.Recommendation{}, nil)
	integration.On("CreateReview", mock.Anything, mock.MatchedBy(func(r api.Review) bool {
		return r.ProductID == 1 && r.ReviewID == 1
	})).Return(api.Review{}, nil)

	require.NoError(t, aggregator.CreateProduct(context.Background(), body))
	integration.AssertExpectations(t)
}

func TestCreateProductStopsOnProductFailure(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	integration.On("CreateProduct", mock.Anything, mock.Anything).
		Return(api.Product{}, apperrors.NewBadRequest("Duplicate key, Product Id: 1"))

	body := api.ProductAggregate{
		ProductID:       1,
		Recommendations: []api.RecommendationSummary{{RecommendationID: 1}},
	}

	err := aggregator.CreateProduct(context.Background(), body)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	integration.AssertNotCalled(t, "CreateRecommendation")
}

func TestDeleteProductIssuesEveryDelete(t *testing.T) {
	integration := new(MockIntegration)
	aggregator := newTestAggregator(integration)

	integration.On("DeleteProduct", mock.Anything, 1).Return(nil).Twice()
	integration.On("DeleteRecommendations", mock.Anything, 1).Return(nil).Twice()
	integration.On("DeleteReviews", mock.Anything, 1).Return(nil).Twice()

	require.NoError(t, aggregator.DeleteProduct(context.Background(), 1))
	require.NoError(t, aggregator.DeleteProduct(context.Background(), 1))
	integration.AssertExpectations(t)
}
