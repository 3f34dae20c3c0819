package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
)

type MockProductHandler struct {
	mock.Mock
}

func (m *MockProductHandler) CreateProduct(ctx context.Context, body api.Product) (api.Product, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(api.Product), args.Error(1)
}

func (m *MockProductHandler) DeleteProduct(ctx context.Context, productID int) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func eventBody(t *testing.T, eventType api.EventType, key int, data interface{}) []byte {
	t.Helper()
	event, err := api.NewDataEvent(eventType, key, data)
	require.NoError(t, err)
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestProcessCreateEvent(t *testing.T) {
	handler := new(MockProductHandler)
	product := api.Product{ProductID: 1, Name: "n", Weight: 2}
	handler.On("CreateProduct", mock.Anything, product).Return(product, nil)

	err := NewProcessor(handler).Process(context.Background(), eventBody(t, api.EventCreate, 1, product))

	require.NoError(t, err)
	handler.AssertExpectations(t)
}

func TestProcessDeleteEvent(t *testing.T) {
	handler := new(MockProductHandler)
	handler.On("DeleteProduct", mock.Anything, 3).Return(nil)

	err := NewProcessor(handler).Process(context.Background(), eventBody(t, api.EventDelete, 3, nil))

	require.NoError(t, err)
	handler.AssertExpectations(t)
}

func TestProcessUnknownEventTypeFails(t *testing.T) {
	handler := new(MockProductHandler)

	err := NewProcessor(handler).Process(context.Background(), eventBody(t, api.EventType("PATCH"), 1, nil))

	require.Error(t, err)
	assert.Equal(t, apperrors.KindEventProcessing, apperrors.KindOf(err))
	handler.AssertNotCalled(t, "CreateProduct")
	handler.AssertNotCalled(t, "DeleteProduct")
}
