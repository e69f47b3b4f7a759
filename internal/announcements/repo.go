package announcements

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
)

type Repository interface {
	ListPublished(ctx context.Context, page pagination.Params) ([]models.Announcement, int64, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// ListPublished returns published announcements, newest first.
func (r *repository) ListPublished(ctx context.Context, page pagination.Params) ([]models.Announcement, int64, error) {
	q := r.DB(ctx).Model(&models.Announcement{}).Where("published = ?", true)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Announcement
	err := q.Order("published_at DESC").Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
