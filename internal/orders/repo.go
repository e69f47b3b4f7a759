package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) CreateOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&orders).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Order, int64, error) {
	q := r.DB(ctx).Model(&models.Order{})
	if query.Scope.RetailerID != nil {
		q = q.Where("orders.retailer_id = ?", *query.Scope.RetailerID)
	}
	if query.Scope.WholesalerID != nil {
		q = q.Where("orders.wholesaler_id = ?", *query.Scope.WholesalerID)
	}
	if query.Status != nil {
		q = q.Where("orders.status = ?", *query.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}
	direction := " DESC"
	if query.Ascending {
		direction = " ASC"
	}

	var rows []models.Order
	err := q.Order(column + direction).
		Order("orders.id ASC").
		Limit(query.Page.Limit()).
		Offset(query.Page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByCheckoutID(ctx context.Context, checkoutID string) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Where("checkout_id = ?", checkoutID).
		Order("created_at ASC").
		Order("order_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CancelOwned cancels the order only while it belongs to retailerID and is
// still in a cancellable state.
func (r *repository) CancelOwned(ctx context.Context, id, retailerID uuid.UUID, at time.Time) (int64, error) {
	return r.UpdateWhere(ctx, &models.Order{},
		map[string]any{"status": enums.OrderStatusCancelled, "cancelled_at": at},
		"id = ? AND retailer_id = ? AND status IN ?", id, retailerID, enums.CancellableOrderStatuses())
}

// ConfirmCheckout moves every pending order of the checkout to confirmed and
// marks its stock as reserved.
func (r *repository) ConfirmCheckout(ctx context.Context, checkoutID string) (int64, error) {
	return r.UpdateWhere(ctx, &models.Order{},
		map[string]any{"status": enums.OrderStatusConfirmed, "stock_reserved": true},
		"checkout_id = ? AND status = ?", checkoutID, enums.OrderStatusPending)
}

func (r *repository) Transition(ctx context.Context, id, wholesalerID uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	return r.UpdateWhere(ctx, &models.Order{},
		map[string]any{"status": to},
		"id = ? AND wholesaler_id = ? AND status = ?", id, wholesalerID, from)
}

func (r *repository) ClearStockReserved(ctx context.Context, id uuid.UUID) error {
	_, err := r.UpdateWhere(ctx, &models.Order{}, map[string]any{"stock_reserved": false}, "id = ?", id)
	return err
}

// ReserveStock decrements stock only when enough is available. Variant lines
// draw from the variant's stock.
func (r *repository) ReserveStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) (int64, error) {
	if variantID != nil {
		return r.UpdateWhere(ctx, &models.ProductVariant{},
			map[string]any{"stock_quantity": gorm.Expr("stock_quantity - ?", qty)},
			"id = ? AND product_id = ? AND stock_quantity >= ?", *variantID, productID, qty)
	}
	return r.UpdateWhere(ctx, &models.Product{},
		map[string]any{"stock_quantity": gorm.Expr("stock_quantity - ?", qty)},
		"id = ? AND stock_quantity >= ?", productID, qty)
}

func (r *repository) ReleaseStock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	var err error
	if variantID != nil {
		_, err = r.UpdateWhere(ctx, &models.ProductVariant{},
			map[string]any{"stock_quantity": gorm.Expr("stock_quantity + ?", qty)},
			"id = ? AND product_id = ?", *variantID, productID)
		return err
	}
	_, err = r.UpdateWhere(ctx, &models.Product{},
		map[string]any{"stock_quantity": gorm.Expr("stock_quantity + ?", qty)},
		"id = ?", productID)
	return err
}

// FindSettlement returns the payout row scheduled for a checkout, or nil when
// the checkout was never paid.
func (r *repository) FindSettlement(ctx context.Context, checkoutID string) (*models.Settlement, error) {
	var row models.Settlement
	err := r.DB(ctx).Where("order_id = ?", checkoutID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// AdjustSettlement rewrites the payout amounts only while the row still holds
// the amounts read in current and has not been paid out.
func (r *repository) AdjustSettlement(ctx context.Context, current models.Settlement, gross, fee int64, status enums.SettlementStatus) (int64, error) {
	return r.UpdateWhere(ctx, &models.Settlement{},
		map[string]any{
			"gross_amount": gross,
			"fee_amount":   fee,
			"amount":       gross - fee,
			"status":       status,
		},
		"id = ? AND gross_amount = ? AND status IN ?", current.ID, current.GrossAmount,
		[]enums.SettlementStatus{enums.SettlementStatusScheduled, enums.SettlementStatusHeld})
}
