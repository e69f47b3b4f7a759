package enums

import "fmt"

type SettlementStatus string

const (
	SettlementStatusScheduled SettlementStatus = "scheduled"
	SettlementStatusPaid      SettlementStatus = "paid"
	SettlementStatusHeld      SettlementStatus = "held"
	SettlementStatusCancelled SettlementStatus = "cancelled"
)

var validSettlementStatuses = []SettlementStatus{
	SettlementStatusScheduled,
	SettlementStatusPaid,
	SettlementStatusHeld,
	SettlementStatusCancelled,
}

func (v SettlementStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known SettlementStatus.
func (v SettlementStatus) IsValid() bool {
	for _, candidate := range validSettlementStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseSettlementStatus converts raw input into a SettlementStatus.
func ParseSettlementStatus(value string) (SettlementStatus, error) {
	for _, candidate := range validSettlementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement status %q", value)
}
