package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/internal/analytics/types"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
	"github.com/angelmondragon/dealerstock-backend/pkg/outbox"
)

const analyticsConsumerName = "analytics"

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer writes inventory events to BigQuery while honoring Redis
// idempotency.
type Consumer struct {
	client      tableInserter
	table       string
	manager     idempotencyChecker
	logg        *logger.Logger
	eventFilter map[enums.OutboxEventType]struct{}
}

// NewConsumer builds a new analytics consumer.
func NewConsumer(client tableInserter, table string, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("bigquery table name required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		client:  client,
		table:   strings.TrimSpace(table),
		manager: manager,
		logg:    logg,
		eventFilter: map[enums.OutboxEventType]struct{}{
			enums.EventReservationCreated:   {},
			enums.EventReservationConfirmed: {},
			enums.EventReservationCancelled: {},
			enums.EventReservationExpired:   {},
			enums.EventTransferCreated:      {},
			enums.EventTransferCompleted:    {},
			enums.EventTransferCancelled:    {},
			enums.EventCarSold:              {},
		},
	}, nil
}

// Process ingests the outbox envelope into BigQuery if the event is
// supported.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID string, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if _, ok := c.eventFilter[eventType]; !ok {
		c.logg.Info(logCtx, "event not handled by analytics consumer")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, analyticsConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	row, err := buildRow(eventType, aggregateType, aggregateID, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build inventory event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return err
	}

	if err := c.client.InsertRows(ctx, c.table, []any{row}); err != nil {
		c.logg.Error(logCtx, "failed to insert inventory event row", err)
		_ = c.manager.Delete(ctx, analyticsConsumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "inventory event ingested")
	return nil
}

func buildRow(eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID string, envelope outbox.PayloadEnvelope) (*types.InventoryEventRow, error) {
	payload := map[string]any{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		if payload == nil {
			payload = map[string]any{}
		}
	}

	payloadJSON := cbigquery.NullJSON{}
	if len(envelope.Data) > 0 {
		payloadJSON.Valid = true
		payloadJSON.JSONVal = string(envelope.Data)
	}

	occurredAt := envelope.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	warehouseID := stringValue(payload, "from_warehouse_id")
	if warehouseID == nil {
		warehouseID = stringValue(payload, "to_warehouse_id")
	}

	row := &types.InventoryEventRow{
		EventID:       envelope.EventID,
		EventType:     string(eventType),
		AggregateType: string(aggregateType),
		AggregateID:   aggregateID,
		OccurredAt:    occurredAt,
		CarID:         stringValue(payload, "car_id"),
		WarehouseID:   warehouseID,
		Quantity:      int64Value(payload, "quantity"),
		Payload:       payloadJSON,
	}
	if envelope.Actor != nil {
		if user := strings.TrimSpace(envelope.Actor.UserID); user != "" {
			row.ActorUserID = &user
		}
		if tenant := strings.TrimSpace(envelope.Actor.TenantID); tenant != "" {
			row.TenantID = &tenant
		}
	}
	return row, nil
}

func stringValue(payload map[string]any, key string) *string {
	if payload == nil {
		return nil
	}
	if raw, ok := payload[key]; ok {
		if str, ok := raw.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed != "" {
				return &trimmed
			}
		}
	}
	return nil
}

func int64Value(payload map[string]any, key string) *int64 {
	if payload == nil {
		return nil
	}
	if raw, ok := payload[key]; ok {
		if num, ok := raw.(float64); ok {
			value := int64(num)
			return &value
		}
	}
	return nil
}
