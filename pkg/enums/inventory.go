package enums

import "fmt"

// AlertLevel grades how urgent a stock alert is.
type AlertLevel string

const (
	AlertLevelCritical AlertLevel = "Critical"
	AlertLevelWarning  AlertLevel = "Warning"
	AlertLevelOk       AlertLevel = "Ok"
)

var validAlertLevels = []AlertLevel{
	AlertLevelCritical,
	AlertLevelWarning,
	AlertLevelOk,
}

// String implements fmt.Stringer.
func (l AlertLevel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known AlertLevel.
func (l AlertLevel) IsValid() bool {
	for _, candidate := range validAlertLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseAlertLevel converts raw input into an AlertLevel.
func ParseAlertLevel(value string) (AlertLevel, error) {
	for _, candidate := range validAlertLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert level %q", value)
}

// ActionType enumerates the suggested remediations attached to stock alerts.
type ActionType string

const (
	ActionTypeReorder                   ActionType = "Reorder"
	ActionTypeTransferFromWarehouse     ActionType = "TransferFromWarehouse"
	ActionTypeCancelPendingReservations ActionType = "CancelPendingReservations"
	ActionTypeIncreasePrice             ActionType = "IncreasePrice"
	ActionTypeMarketingPush             ActionType = "MarketingPush"
)

var validActionTypes = []ActionType{
	ActionTypeReorder,
	ActionTypeTransferFromWarehouse,
	ActionTypeCancelPendingReservations,
	ActionTypeIncreasePrice,
	ActionTypeMarketingPush,
}

// String implements fmt.Stringer.
func (a ActionType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActionType.
func (a ActionType) IsValid() bool {
	for _, candidate := range validActionTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// StockTrend summarizes the short-term sales direction for a car.
type StockTrend string

const (
	StockTrendIncreasing StockTrend = "Increasing"
	StockTrendDecreasing StockTrend = "Decreasing"
	StockTrendStable     StockTrend = "Stable"
)

var validStockTrends = []StockTrend{
	StockTrendIncreasing,
	StockTrendDecreasing,
	StockTrendStable,
}

// String implements fmt.Stringer.
func (t StockTrend) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockTrend.
func (t StockTrend) IsValid() bool {
	for _, candidate := range validStockTrends {
		if candidate == t {
			return true
		}
	}
	return false
}
