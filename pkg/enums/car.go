package enums

import "fmt"

// CarStatus represents the lifecycle state of a car listing.
type CarStatus string

const (
	CarStatusAvailable   CarStatus = "Available"
	CarStatusSold        CarStatus = "Sold"
	CarStatusReserved    CarStatus = "Reserved"
	CarStatusMaintenance CarStatus = "Maintenance"
)

var validCarStatuses = []CarStatus{
	CarStatusAvailable,
	CarStatusSold,
	CarStatusReserved,
	CarStatusMaintenance,
}

// String implements fmt.Stringer.
func (s CarStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CarStatus.
func (s CarStatus) IsValid() bool {
	for _, candidate := range validCarStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCarStatus converts raw input into a CarStatus.
func ParseCarStatus(value string) (CarStatus, error) {
	for _, candidate := range validCarStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid car status %q", value)
}

// EngineType represents the supported powertrain categories.
type EngineType string

const (
	EngineTypeElectric EngineType = "Electric"
	EngineTypeHybrid   EngineType = "Hybrid"
	EngineTypeGasoline EngineType = "Gasoline"
	EngineTypeDiesel   EngineType = "Diesel"
	EngineTypePetrol   EngineType = "Petrol"
)

var validEngineTypes = []EngineType{
	EngineTypeElectric,
	EngineTypeHybrid,
	EngineTypeGasoline,
	EngineTypeDiesel,
	EngineTypePetrol,
}

// String implements fmt.Stringer.
func (e EngineType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EngineType.
func (e EngineType) IsValid() bool {
	for _, candidate := range validEngineTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEngineType converts raw input into an EngineType.
func ParseEngineType(value string) (EngineType, error) {
	for _, candidate := range validEngineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid engine type %q", value)
}
