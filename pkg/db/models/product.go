package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Product is a wholesaler listing. Prices and fees are whole KRW.
type Product struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WholesalerID     uuid.UUID           `gorm:"column:wholesaler_id;type:uuid;not null" json:"wholesaler_id"`
	Name             string              `gorm:"column:name;not null" json:"name"`
	StandardizedName *string             `gorm:"column:standardized_name" json:"standardized_name,omitempty"`
	Category         string              `gorm:"column:category;not null" json:"category"`
	UnitPrice        int64               `gorm:"column:unit_price;not null" json:"unit_price"`
	MOQ              int                 `gorm:"column:moq;not null;default:1" json:"moq"`
	StockQuantity    int                 `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	ShippingFee      int64               `gorm:"column:shipping_fee;not null;default:0" json:"shipping_fee"`
	Status           enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	Variants         []ProductVariant    `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ProductVariant overrides price and stock for a product option.
type ProductVariant struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	UnitPrice     *int64    `gorm:"column:unit_price" json:"unit_price,omitempty"`
	StockQuantity int       `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
}
