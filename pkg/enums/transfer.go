package enums

import "fmt"

// TransferStatus tracks a warehouse transfer order.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "Pending"
	TransferStatusInTransit TransferStatus = "InTransit"
	TransferStatusCompleted TransferStatus = "Completed"
	TransferStatusCancelled TransferStatus = "Cancelled"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusInTransit,
	TransferStatusCompleted,
	TransferStatusCancelled,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
