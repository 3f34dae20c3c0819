package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
	"example.com/productmesh/pkg/serviceutil"
	"example.com/productmesh/services/review/internal/models"
	"example.com/productmesh/services/review/internal/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByProductID(ctx context.Context, productID int) ([]models.ReviewEntity, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEntity), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, entity *models.ReviewEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRepository) DeleteByProductID(ctx context.Context, productID int) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexReview(ctx context.Context, review *models.ReviewEntity) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockIndexer) DeleteByProductID(ctx context.Context, productID int) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newTestService(repo repository.Repository) *ReviewService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewReviewService(repo, nil, serviceutil.NewAddressResolver("7003"), logger)
}

func TestGetReviews(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("FindByProductID", mock.Anything, 1).Return([]models.ReviewEntity{
		{ProductID: 1, ReviewID: 1, Author: "author 1", Subject: "subject 1", Content: "content 1"},
		{ProductID: 1, ReviewID: 2, Author: "author 2", Subject: "subject 2", Content: "content 2"},
	}, nil)

	reviews, err := svc.GetReviews(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 1, reviews[0].ReviewID)
	assert.Equal(t, 2, reviews[1].ReviewID)
	assert.NotEmpty(t, reviews[0].ServiceAddress)
	repo.AssertExpectations(t)
}

func TestGetReviewsEmptyResultIsValid(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("FindByProductID", mock.Anything, 213).Return([]models.ReviewEntity{}, nil)

	reviews, err := svc.GetReviews(context.Background(), 213)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestGetReviewsInvalidProductID(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.GetReviews(context.Background(), -1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid productId: -1")
	repo.AssertNotCalled(t, "FindByProductID")
}

func TestCreateReview(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.ReviewEntity) bool {
		return e.ProductID == 1 && e.ReviewID == 3
	})).Return(nil)

	created, err := svc.CreateReview(context.Background(), api.Review{
		ProductID: 1, ReviewID: 3, Author: "author 3", Subject: "subject 3", Content: "content 3",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ReviewID)
	repo.AssertExpectations(t)
}

func TestCreateReviewDuplicateKey(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateKey)

	_, err := svc.CreateReview(context.Background(), api.Review{ProductID: 1, ReviewID: 1})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Duplicate key, Product Id: 1, Review Id: 1")
}

func TestCreateReviewIndexFailureDoesNotFailWrite(t *testing.T) {
	repo := new(MockRepository)
	indexer := new(MockIndexer)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := NewReviewService(repo, indexer, serviceutil.NewAddressResolver("7003"), logger)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	indexer.On("IndexReview", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.CreateReview(context.Background(), api.Review{ProductID: 1, ReviewID: 1})
	require.NoError(t, err)
	indexer.AssertExpectations(t)
}

func TestDeleteReviewsIsIdempotent(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("DeleteByProductID", mock.Anything, 1).Return(nil).Twice()

	require.NoError(t, svc.DeleteReviews(context.Background(), 1))
	require.NoError(t, svc.DeleteReviews(context.Background(), 1))
	repo.AssertExpectations(t)
}
