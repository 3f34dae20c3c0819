package messaging

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
)

// RecommendationHandler is the slice of the domain service the processor
// drives. The event path applies the same operations as the HTTP path.
type RecommendationHandler interface {
	CreateRecommendation(ctx context.Context, body api.Recommendation) (api.Recommendation, error)
	DeleteRecommendations(ctx context.Context, productID int) error
}

// Processor applies data events to the recommendation service.
type Processor struct {
	handler RecommendationHandler
}

// NewProcessor creates a processor over the given handler.
func NewProcessor(handler RecommendationHandler) *Processor {
	return &Processor{handler: handler}
}

// Process dispatches one event. A duplicate create propagates the same
// BadRequest the synchronous path raises; the channel's failure handling
// decides what happens to the message. Unknown event types are fatal for
// the event, never retried into the handler.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	var event api.DataEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewEventProcessing("failed to unmarshal event: %v", err)
	}

	log.Info().Str("eventType", string(event.EventType)).Int("key", event.Key).
		Time("eventCreatedAt", event.EventCreatedAt).Msg("Processing message event")

	switch event.EventType {
	case api.EventCreate:
		var recommendation api.Recommendation
		if err := json.Unmarshal(event.Data, &recommendation); err != nil {
			return apperrors.NewEventProcessing("failed to unmarshal recommendation payload: %v", err)
		}
		_, err := p.handler.CreateRecommendation(ctx, recommendation)
		return err

	case api.EventDelete:
		return p.handler.DeleteRecommendations(ctx, event.Key)

	default:
		return apperrors.NewEventProcessing(
			"Incorrect event type: %s, expected a CREATE or DELETE event", event.EventType)
	}
}
