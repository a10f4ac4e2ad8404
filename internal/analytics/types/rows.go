package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// InventoryEventRow mirrors the inventory_events BigQuery schema.
type InventoryEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	CarID         *string            `bigquery:"car_id"`
	WarehouseID   *string            `bigquery:"warehouse_id"`
	Quantity      *int64             `bigquery:"quantity"`
	ActorUserID   *string            `bigquery:"actor_user_id"`
	TenantID      *string            `bigquery:"tenant_id"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}
