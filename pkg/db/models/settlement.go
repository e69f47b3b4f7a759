package models

import (
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Settlement schedules the payout for a confirmed payment. OrderID holds the
// gateway order id (Order.CheckoutID).
type Settlement struct {
	ID          string                 `gorm:"column:id;primaryKey" json:"id"`
	OrderID     string                 `gorm:"column:order_id;not null;index" json:"order_id"`
	GrossAmount int64                  `gorm:"column:gross_amount;not null" json:"gross_amount"`
	FeeAmount   int64                  `gorm:"column:fee_amount;not null" json:"fee_amount"`
	Amount      int64                  `gorm:"column:amount;not null" json:"amount"`
	PayoutDate  time.Time              `gorm:"column:payout_date;type:date;not null" json:"payout_date"`
	Status      enums.SettlementStatus `gorm:"column:status;type:text;not null;default:'scheduled'" json:"status"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
