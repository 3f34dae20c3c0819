// Package messaging wraps Azure Service Bus for the mesh's event channel.
// Events for the same key are published with the key as session id, so
// session receivers observe them in submission order. There is no ordering
// guarantee across different keys.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Publisher sends one event body to a queue, keyed for ordering.
type Publisher interface {
	Publish(ctx context.Context, body interface{}, sessionKey string) error
	Close() error
}

// ProcessFunc handles one received message body. Returning an error
// abandons the message for redelivery (at-least-once).
type ProcessFunc func(ctx context.Context, body []byte) error

// ServiceBusClient is the azservicebus-backed publisher and consumer.
type ServiceBusClient struct {
	client    *azservicebus.Client
	sender    *azservicebus.Sender
	queueName string
	source    string
}

// NewServiceBusClient connects to the namespace and prepares a sender for
// queueName. The source tag is attached to outgoing messages for tracing.
func NewServiceBusClient(connectionString, queueName, source string) (*ServiceBusClient, error) {
	if connectionString == "" {
		return nil, errors.New("service bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	sender, err := client.NewSender(queueName, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus sender")
	}

	return &ServiceBusClient{
		client:    client,
		sender:    sender,
		queueName: queueName,
		source:    source,
	}, nil
}

// Publish sends body as JSON with sessionKey as the message session id.
func (s *ServiceBusClient) Publish(ctx context.Context, body interface{}, sessionKey string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message body")
	}

	msg := &azservicebus.Message{
		Body:      data,
		SessionID: &sessionKey,
		ApplicationProperties: map[string]interface{}{
			"source": s.source,
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	}

	return s.sender.SendMessage(ctx, msg, nil)
}

// Consume accepts sessions from the queue until ctx is cancelled, feeding
// every message through process. Failed messages are abandoned and
// redelivered.
func (s *ServiceBusClient) Consume(ctx context.Context, process ProcessFunc) error {
	log.Info().Str("queue", s.queueName).Msg("Starting Service Bus consumers")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		receiver, err := s.client.AcceptNextSessionForQueue(ctx, s.queueName, nil)
		if err != nil {
			var sbErr *azservicebus.Error
			if errors.As(err, &sbErr) && sbErr.Code == azservicebus.CodeTimeout {
				log.Debug().Msg("No session available, waiting...")
				time.Sleep(2 * time.Second)
				continue
			}
			return errors.Wrap(err, "failed to accept session")
		}

		log.Info().Str("session", receiver.SessionID()).Msg("Session received")
		go s.handleSession(ctx, receiver, process)
	}
}

func (s *ServiceBusClient) handleSession(ctx context.Context, receiver *azservicebus.SessionReceiver, process ProcessFunc) {
	defer func() {
		if err := receiver.Close(context.Background()); err != nil {
			log.Error().Err(err).Str("session", receiver.SessionID()).Msg("Error closing session")
		}
	}()

	for {
		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			log.Error().Err(err).Str("session", receiver.SessionID()).Msg("Error receiving messages")
			return
		}
		if len(messages) == 0 {
			return
		}

		for _, message := range messages {
			if err := process(ctx, message.Body); err != nil {
				log.Error().Err(err).Str("messageId", message.MessageID).Msg("Error processing message")
				if err := receiver.AbandonMessage(ctx, message, nil); err != nil {
					log.Error().Err(err).Str("messageId", message.MessageID).Msg("Error abandoning message")
				}
				continue
			}

			if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
				log.Error().Err(err).Str("messageId", message.MessageID).Msg("Error completing message")
			}
		}
	}
}

// Close shuts down the sender and the underlying client.
func (s *ServiceBusClient) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return fmt.Errorf("failed to close sender: %w", err)
		}
	}
	if s.client != nil {
		return s.client.Close(context.Background())
	}
	return nil
}
