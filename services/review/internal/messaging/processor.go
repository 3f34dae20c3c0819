package messaging

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"example.com/productmesh/pkg/api"
	"example.com/productmesh/pkg/apperrors"
)

// ReviewHandler is the slice of the domain service the processor drives.
type ReviewHandler interface {
	CreateReview(ctx context.Context, body api.Review) (api.Review, error)
	DeleteReviews(ctx context.Context, productID int) error
}

// Processor applies data events to the review service.
type Processor struct {
	handler ReviewHandler
	log     *logrus.Logger
}

// NewProcessor creates a processor over the given handler.
func NewProcessor(handler ReviewHandler, log *logrus.Logger) *Processor {
	return &Processor{handler: handler, log: log}
}

// Process dispatches one event. Failures propagate so the channel can
// abandon and redeliver the message.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	var event api.DataEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.NewEventProcessing("failed to unmarshal event: %v", err)
	}

	p.log.WithFields(logrus.Fields{
		"eventType": event.EventType,
		"key":       event.Key,
	}).Info("Processing message event")

	switch event.EventType {
	case api.EventCreate:
		var review api.Review
		if err := json.Unmarshal(event.Data, &review); err != nil {
			return apperrors.NewEventProcessing("failed to unmarshal review payload: %v", err)
		}
		_, err := p.handler.CreateReview(ctx, review)
		return err

	case api.EventDelete:
		return p.handler.DeleteReviews(ctx, event.Key)

	default:
		return apperrors.NewEventProcessing(
			"Incorrect event type: %s, expected a CREATE or DELETE event", event.EventType)
	}
}
