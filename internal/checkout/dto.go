package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Line is one product the retailer wants to buy.
type Line struct {
	ProductID      uuid.UUID            `json:"productId" validate:"required"`
	VariantID      *uuid.UUID           `json:"variantId,omitempty"`
	Quantity       int                  `json:"quantity" validate:"required,min=1"`
	DeliveryMethod enums.DeliveryMethod `json:"deliveryMethod" validate:"omitempty,oneof=parcel freight pickup"`
}

// PrepareInput is the checkout request.
type PrepareInput struct {
	Lines           []Line `json:"items" validate:"required,min=1,max=50,dive"`
	ShippingAddress string `json:"shippingAddress" validate:"max=500"`
}

// PrepareResult carries what the client needs to open the gateway payment
// window: the gateway order id, the amount and a display name.
type PrepareResult struct {
	OrderID   string         `json:"orderId"`
	Amount    int64          `json:"amount"`
	OrderName string         `json:"orderName"`
	Orders    []models.Order `json:"orders"`
}
