package payments

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
)

// Repository persists payments, settlements and reconciliation flags.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	CreateReconciliation(ctx context.Context, rec *models.PaymentReconciliation) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// FindByOrderID returns nil, nil when no payment exists for the order.
func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.DB(ctx).Where("order_id = ?", orderID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	return r.DB(ctx).Create(settlement).Error
}

func (r *repository) CreateReconciliation(ctx context.Context, rec *models.PaymentReconciliation) error {
	return r.DB(ctx).Create(rec).Error
}
