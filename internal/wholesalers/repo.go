package wholesalers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
)

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wholesaler, error)
	List(ctx context.Context, status *enums.WholesalerStatus, page pagination.Params) ([]models.Wholesaler, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, from []enums.WholesalerStatus, to enums.WholesalerStatus, approvedAt *time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Wholesaler, error) {
	var w models.Wholesaler
	if err := r.DB(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) List(ctx context.Context, status *enums.WholesalerStatus, page pagination.Params) ([]models.Wholesaler, int64, error) {
	q := r.DB(ctx).Model(&models.Wholesaler{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Wholesaler
	err := q.Order("created_at ASC").Order("id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SetStatus moves the wholesaler to status `to` only from one of `from`.
func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, from []enums.WholesalerStatus, to enums.WholesalerStatus, approvedAt *time.Time) (int64, error) {
	return r.UpdateWhere(ctx, &models.Wholesaler{},
		map[string]any{"status": to, "approved_at": approvedAt},
		"id = ? AND status IN ?", id, from)
}
