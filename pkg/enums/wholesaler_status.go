package enums

import "fmt"

// WholesalerStatus is the admin approval state of a wholesaler account.
type WholesalerStatus string

const (
	WholesalerStatusPending  WholesalerStatus = "pending"
	WholesalerStatusApproved WholesalerStatus = "approved"
	WholesalerStatusRejected WholesalerStatus = "rejected"
)

var validWholesalerStatuses = []WholesalerStatus{
	WholesalerStatusPending,
	WholesalerStatusApproved,
	WholesalerStatusRejected,
}

func (v WholesalerStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known WholesalerStatus.
func (v WholesalerStatus) IsValid() bool {
	for _, candidate := range validWholesalerStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseWholesalerStatus converts raw input into a WholesalerStatus.
func ParseWholesalerStatus(value string) (WholesalerStatus, error) {
	for _, candidate := range validWholesalerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wholesaler status %q", value)
}
