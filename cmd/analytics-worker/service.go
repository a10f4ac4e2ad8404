package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox"
)

type eventProcessor interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID string, envelope outbox.PayloadEnvelope) error
}

// Service pulls inventory events off the domain subscription and feeds them
// to the analytics consumer.
type Service struct {
	subscription *gcppubsub.Subscriber
	processor    eventProcessor
	logg         *logger.Logger
}

func NewService(subscription *gcppubsub.Subscriber, processor eventProcessor, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("domain subscription is required")
	}
	if processor == nil {
		return nil, errors.New("event processor is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		processor:    processor,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Malformed messages are acked and dropped so a poison event cannot wedge
// the subscription. Processing failures nack for redelivery.
func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	eventType, aggregateType, aggregateID, envelope, err := decodeMessage(msg)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid inventory event message")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_type"] = eventType
	fields["aggregate_type"] = aggregateType
	fields["aggregate_id"] = aggregateID
	logCtx = s.logg.WithFields(ctx, fields)

	if err := s.processor.Process(logCtx, eventType, aggregateType, aggregateID, envelope); err != nil {
		s.logg.Error(logCtx, "inventory event processing failed", err)
		return processResult{nack: true}
	}
	return processResult{}
}

func decodeMessage(msg *gcppubsub.Message) (enums.OutboxEventType, enums.OutboxAggregateType, string, outbox.PayloadEnvelope, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return "", "", "", envelope, fmt.Errorf("decode payload envelope: %w", err)
	}

	eventType, err := enums.ParseOutboxEventType(strings.TrimSpace(msg.Attributes["event_type"]))
	if err != nil {
		return "", "", "", envelope, fmt.Errorf("event_type: %w", err)
	}

	aggregateType, err := enums.ParseOutboxAggregateType(strings.TrimSpace(msg.Attributes["aggregate_type"]))
	if err != nil {
		return "", "", "", envelope, fmt.Errorf("aggregate_type: %w", err)
	}

	aggregateID := strings.TrimSpace(msg.Attributes["aggregate_id"])
	if aggregateID == "" {
		return "", "", "", envelope, errors.New("aggregate_id missing")
	}

	if strings.TrimSpace(envelope.EventID) == "" {
		envelope.EventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if envelope.EventID == "" {
		return "", "", "", envelope, errors.New("event_id missing")
	}

	return eventType, aggregateType, aggregateID, envelope, nil
}
