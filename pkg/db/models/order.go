package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Order is a single-product purchase. Orders created from one checkout share
// CheckoutID, which is the order id exchanged with the payment gateway.
type Order struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber           string               `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	CheckoutID            string               `gorm:"column:checkout_id;not null;index" json:"checkout_id"`
	RetailerID            uuid.UUID            `gorm:"column:retailer_id;type:uuid;not null" json:"retailer_id"`
	WholesalerID          uuid.UUID            `gorm:"column:wholesaler_id;type:uuid;not null" json:"wholesaler_id"`
	ProductID             uuid.UUID            `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VariantID             *uuid.UUID           `gorm:"column:variant_id;type:uuid" json:"variant_id,omitempty"`
	ProductName           string               `gorm:"column:product_name;not null" json:"product_name"`
	Quantity              int                  `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice             int64                `gorm:"column:unit_price;not null" json:"unit_price"`
	ShippingFeeTotal      int64                `gorm:"column:shipping_fee_total;not null;default:0" json:"shipping_fee_total"`
	TotalAmount           int64                `gorm:"column:total_amount;not null" json:"total_amount"`
	DeliveryMethod        enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null" json:"delivery_method"`
	ShippingAddress       string               `gorm:"column:shipping_address" json:"shipping_address"`
	Status                enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	StockReserved         bool                 `gorm:"column:stock_reserved;not null;default:false" json:"-"`
	EstimatedDeliveryDate *time.Time           `gorm:"column:estimated_delivery_date;type:date" json:"estimated_delivery_date,omitempty"`
	CancelledAt           *time.Time           `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
