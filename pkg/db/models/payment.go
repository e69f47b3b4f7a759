package models

import (
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Payment records a gateway transaction confirmed for a checkout.
type Payment struct {
	ID         string              `gorm:"column:id;primaryKey" json:"id"`
	PaymentKey string              `gorm:"column:payment_key;not null;uniqueIndex" json:"payment_key"`
	OrderID    string              `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	Amount     int64               `gorm:"column:amount;not null" json:"amount"`
	Status     enums.PaymentStatus `gorm:"column:status;type:text;not null" json:"status"`
	Method     *string             `gorm:"column:method" json:"method,omitempty"`
	ApprovedAt *time.Time          `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// PaymentReconciliation flags a payment the gateway captured but local
// bookkeeping failed to record.
type PaymentReconciliation struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	PaymentKey string    `gorm:"column:payment_key;not null" json:"payment_key"`
	OrderID    string    `gorm:"column:order_id;not null" json:"order_id"`
	Amount     int64     `gorm:"column:amount;not null" json:"amount"`
	Reason     string    `gorm:"column:reason;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
