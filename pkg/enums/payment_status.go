package enums

import "fmt"

// PaymentStatus mirrors the gateway's transaction status.
type PaymentStatus string

const (
	PaymentStatusDone              PaymentStatus = "DONE"
	PaymentStatusCanceled          PaymentStatus = "CANCELED"
	PaymentStatusPartialCanceled   PaymentStatus = "PARTIAL_CANCELED"
	PaymentStatusAborted           PaymentStatus = "ABORTED"
	PaymentStatusExpired           PaymentStatus = "EXPIRED"
	PaymentStatusWaitingForDeposit PaymentStatus = "WAITING_FOR_DEPOSIT"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusDone,
	PaymentStatusCanceled,
	PaymentStatusPartialCanceled,
	PaymentStatusAborted,
	PaymentStatusExpired,
	PaymentStatusWaitingForDeposit,
}

func (v PaymentStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known PaymentStatus.
func (v PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
