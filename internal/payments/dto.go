package payments

import "time"

// ConfirmInput is what the client received from the gateway redirect.
type ConfirmInput struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// ConfirmResult echoes the identifiers of the records created for a
// confirmed payment.
type ConfirmResult struct {
	OrderID      string    `json:"orderId"`
	SettlementID string    `json:"settlementId"`
	PaymentID    string    `json:"paymentId"`
	Amount       int64     `json:"amount"`
	PayoutDate   time.Time `json:"payoutDate"`
}
