package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/httperr"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/recommendation/internal/store"
)

func newTestService() *RecommendationService {
	return NewRecommendationService(store.New(store.NewMemoryEngine()), serviceutil.NewAddressResolver("7002"))
}

func TestGetRecommendationsRejectsInvalidProductID(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetRecommendations(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, httperr.StatusOf(err))
	assert.Contains(t, err.Error(), "Invalid productId: 0")
}

func TestGetRecommendationsAttachesServiceAddress(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRecommendation(ctx, api.Recommendation{ProductID: 1, RecommendationID: 1, Author: "a"})
	require.NoError(t, err)

	found, err := svc.GetRecommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.NotEmpty(t, found[0].ServiceAddress)
	assert.Contains(t, found[0].ServiceAddress, ":7002")
}

func TestGetRecommendationsEmptyIsValid(t *testing.T) {
	svc := newTestService()

	found, err := svc.GetRecommendations(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestCreateRecommendationMapsDuplicateToBadRequest(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRecommendation(ctx, api.Recommendation{ProductID: 1, RecommendationID: 2})
	require.NoError(t, err)

	_, err = svc.CreateRecommendation(ctx, api.Recommendation{ProductID: 1, RecommendationID: 2})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperr.StatusOf(err))
	assert.Contains(t, err.Error(), "Product Id: 1")
	assert.Contains(t, err.Error(), "Recommendation Id: 2")
}

func TestDeleteRecommendationsIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRecommendation(ctx, api.Recommendation{ProductID: 1, RecommendationID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecommendations(ctx, 1))
	require.NoError(t, svc.DeleteRecommendations(ctx, 1))

	found, err := svc.GetRecommendations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, found)
}
