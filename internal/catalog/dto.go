package catalog

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

// Sort orders accepted by List.
const (
	SortLatest    = "latest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

var sortClauses = map[string]string{
	SortLatest:    "products.created_at DESC",
	SortPriceAsc:  "products.unit_price ASC",
	SortPriceDesc: "products.unit_price DESC",
	SortName:      "products.name ASC",
}

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Category     string
	WholesalerID *uuid.UUID
	Keyword      string
	Sort         string
}

type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

type ListResult struct {
	Products []models.Product `json:"products"`
	types.PageMeta
}

// StandardizeResult is returned after AI name normalization.
type StandardizeResult struct {
	ProductID        uuid.UUID `json:"productId"`
	Name             string    `json:"name"`
	StandardizedName string    `json:"standardizedName"`
}
