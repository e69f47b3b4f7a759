package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// ErrorCode identifies a cart validation rule.
type ErrorCode string

const (
	ErrNoItemsSelected ErrorCode = "NO_ITEMS_SELECTED"
	ErrMOQNotMet       ErrorCode = "MOQ_NOT_MET"
	ErrOutOfStock      ErrorCode = "OUT_OF_STOCK"
	// ErrDeadlinePassed is reserved for wholesaler order cutoff times and is
	// not emitted yet.
	ErrDeadlinePassed ErrorCode = "DEADLINE_PASSED"
)

// Item is a proposed order line. Items are not persisted until checkout.
type Item struct {
	ProductID      uuid.UUID            `json:"product_id"`
	ProductName    string               `json:"product_name"`
	VariantID      *uuid.UUID           `json:"variant_id,omitempty"`
	WholesalerID   uuid.UUID            `json:"wholesaler_id"`
	Quantity       int                  `json:"quantity"`
	UnitPrice      int64                `json:"unit_price"`
	MOQ            int                  `json:"moq"`
	StockQuantity  int                  `json:"stock_quantity"`
	ShippingFee    int64                `json:"shipping_fee"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
}

// ShippingFeeTotal is the per-unit shipping fee times quantity, zero for pickup.
func (i Item) ShippingFeeTotal() int64 {
	if !i.DeliveryMethod.ChargesShipping() {
		return 0
	}
	return i.ShippingFee * int64(i.Quantity)
}

// Total is unit_price * quantity + shipping_fee_total.
func (i Item) Total() int64 {
	return i.UnitPrice*int64(i.Quantity) + i.ShippingFeeTotal()
}

// ValidationError describes one violated rule.
type ValidationError struct {
	Code        ErrorCode  `json:"code"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
	Message     string     `json:"message"`
}

// Result is the outcome of Validate.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// Validate checks every item against its MOQ and stock. All violations are
// collected so the caller can present the complete list.
func Validate(items []Item) Result {
	if len(items) == 0 {
		return Result{
			IsValid: false,
			Errors: []ValidationError{{
				Code:    ErrNoItemsSelected,
				Message: "주문할 상품을 선택해주세요.",
			}},
		}
	}

	errs := make([]ValidationError, 0)
	for _, item := range items {
		productID := item.ProductID
		if item.Quantity < item.MOQ {
			errs = append(errs, ValidationError{
				Code:        ErrMOQNotMet,
				ProductID:   &productID,
				ProductName: item.ProductName,
				Message:     fmt.Sprintf("%s: 최소 주문 수량은 %d개입니다. (현재 %d개)", displayName(item), item.MOQ, item.Quantity),
			})
		}
		if item.Quantity > item.StockQuantity {
			errs = append(errs, ValidationError{
				Code:        ErrOutOfStock,
				ProductID:   &productID,
				ProductName: item.ProductName,
				Message:     fmt.Sprintf("%s: 재고가 부족합니다. (재고 %d개, 요청 %d개)", displayName(item), item.StockQuantity, item.Quantity),
			})
		}
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func displayName(item Item) string {
	if item.ProductName != "" {
		return item.ProductName
	}
	return item.ProductID.String()
}
