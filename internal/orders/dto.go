package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

// Sort columns accepted by List.
const (
	SortCreatedAt   = "created_at"
	SortTotalAmount = "total_amount"
	SortOrderNumber = "order_number"
)

var sortColumns = map[string]string{
	SortCreatedAt:   "orders.created_at",
	SortTotalAmount: "orders.total_amount",
	SortOrderNumber: "orders.order_number",
}

// Scope limits which orders a query may see. A zero Scope sees everything.
type Scope struct {
	RetailerID   *uuid.UUID
	WholesalerID *uuid.UUID
}

// ListInput describes the listOrders query.
type ListInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
	SortBy     string
	SortOrder  string
}

// ListQuery is the repository form of ListInput with the caller scope applied.
type ListQuery struct {
	Scope     Scope
	Status    *enums.OrderStatus
	Page      pagination.Params
	SortBy    string
	Ascending bool
}

type ListResult struct {
	Orders []models.Order `json:"orders"`
	types.PageMeta
}

// AdvanceInput moves an order one fulfillment step forward.
type AdvanceInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}
