package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
)

type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) CreateReview(ctx context.Context, body api.Review) (api.Review, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(api.Review), args.Error(1)
}

func (m *MockHandler) DeleteReviews(ctx context.Context, productID int) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newTestProcessor(handler *MockHandler) *Processor {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewProcessor(handler, logger)
}

func eventBody(t *testing.T, event api.DataEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestProcessCreateEvent(t *testing.T) {
	handler := new(MockHandler)
	processor := newTestProcessor(handler)

	review := api.Review{ProductID: 1, ReviewID: 1, Author: "author 1"}
	handler.On("CreateReview", mock.Anything, review).Return(review, nil)

	data, err := json.Marshal(review)
	require.NoError(t, err)

	event := api.DataEvent{EventType: api.EventCreate, Key: 1, Data: data}
	require.NoError(t, processor.Process(context.Background(), eventBody(t, event)))
	handler.AssertExpectations(t)
}

func TestProcessDeleteEvent(t *testing.T) {
	handler := new(MockHandler)
	processor := newTestProcessor(handler)

	handler.On("DeleteReviews", mock.Anything, 1).Return(nil)

	event := api.DataEvent{EventType: api.EventDelete, Key: 1}
	require.NoError(t, processor.Process(context.Background(), eventBody(t, event)))
	handler.AssertExpectations(t)
}

func TestProcessUnknownEventType(t *testing.T) {
	handler := new(MockHandler)
	processor := newTestProcessor(handler)

	event := api.DataEvent{EventType: "UPDATE", Key: 1}
	err := processor.Process(context.Background(), eventBody(t, event))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEventProcessing, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Incorrect event type: UPDATE")
}

func TestProcessMalformedBody(t *testing.T) {
	handler := new(MockHandler)
	processor := newTestProcessor(handler)

	err := processor.Process(context.Background(), []byte("not json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindEventProcessing, apperrors.KindOf(err))
}
