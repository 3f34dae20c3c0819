package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
)

// ProductHandler is the slice of the domain service the processor drives.
type ProductHandler interface {
	CreateProduct(ctx context.Context, body api.Product) (api.Product, error)
	DeleteProduct(ctx context.Context, productID int) error
}

// Processor applies data events to the product service.
type Processor struct {
	handler ProductHandler
}

// NewProcessor creates a processor over the given handler.
func NewProcessor(handler ProductHandler) *Processor {
	return &Processor{handler: handler}
}

// Process dispatches one event. Failures propagate so the channel can
// abandon and redeliver the message.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	var event api.DataEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewEventProcessing("failed to unmarshal event: %v", err)
	}

	log.Info().Str("eventType", string(event.EventType)).Int("key", event.Key).
		Time("eventCreatedAt", event.EventCreatedAt).Msg("Processing message event")

	switch event.EventType {
	case api.EventCreate:
		var product api.Product
		if err := json.Unmarshal(event.Data, &product); err != nil {
			return apperrors.NewEventProcessing("failed to unmarshal product payload: %v", err)
		}
		_, err := p.handler.CreateProduct(ctx, product)
		return err

	case api.EventDelete:
		return p.handler.DeleteProduct(ctx, event.Key)

	default:
		return apperrors.NewEventProcessing(
			"Incorrect event type: %s, expected a CREATE or DELETE event", event.EventType)
	}
}
