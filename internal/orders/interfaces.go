package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Repository defines persistence operations for orders and the stock they hold.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrders(ctx context.Context, orders []models.Order) error
	List(ctx context.Context, query ListQuery) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCheckoutID(ctx context.Context, checkoutID string) ([]models.Order, error)
	CancelOwned(ctx context.Context, id, retailerID uuid.UUID, at time.Time) (int64, error)
	ConfirmCheckout(ctx context.Context, checkoutID string) (int64, error)
	Transition(ctx context.Context, id, wholesalerID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	ClearStockReserved(ctx context.Context, id uuid.UUID) error
	ReserveStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) (int64, error)
	ReleaseStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) error
	FindSettlement(ctx context.Context, checkoutID string) (*models.Settlement, error)
	AdjustSettlement(ctx context.Context, current models.Settlement, gross, fee int64, status enums.SettlementStatus) (int64, error)
}
