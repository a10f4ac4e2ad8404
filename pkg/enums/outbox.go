package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCar           OutboxAggregateType = "car"
	AggregateReservation   OutboxAggregateType = "reservation"
	AggregateTransferOrder OutboxAggregateType = "transfer_order"
	AggregateSale          OutboxAggregateType = "sale"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCar,
	AggregateReservation,
	AggregateTransferOrder,
	AggregateSale,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventReservationCreated   OutboxEventType = "reservation_created"
	EventReservationConfirmed OutboxEventType = "reservation_confirmed"
	EventReservationCancelled OutboxEventType = "reservation_cancelled"
	EventReservationExpired   OutboxEventType = "reservation_expired"
	EventTransferCreated      OutboxEventType = "transfer_created"
	EventTransferCompleted    OutboxEventType = "transfer_completed"
	EventTransferCancelled    OutboxEventType = "transfer_cancelled"
	EventCarSold              OutboxEventType = "car_sold"
)

var validOutboxEventTypes = []OutboxEventType{
	EventReservationCreated,
	EventReservationConfirmed,
	EventReservationCancelled,
	EventReservationExpired,
	EventTransferCreated,
	EventTransferCompleted,
	EventTransferCancelled,
	EventCarSold,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
