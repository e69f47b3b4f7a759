package identity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
)

// Repository reads profiles and the businesses attached to them.
type Repository interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindRetailerByProfile(ctx context.Context, profileID uuid.UUID) (*models.Retailer, error)
	FindWholesalerByProfile(ctx context.Context, profileID uuid.UUID) (*models.Wholesaler, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindRetailerByProfile(ctx context.Context, profileID uuid.UUID) (*models.Retailer, error) {
	var retailer models.Retailer
	if err := r.DB(ctx).First(&retailer, "profile_id = ?", profileID).Error; err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *repository) FindWholesalerByProfile(ctx context.Context, profileID uuid.UUID) (*models.Wholesaler, error) {
	var wholesaler models.Wholesaler
	if err := r.DB(ctx).First(&wholesaler, "profile_id = ?", profileID).Error; err != nil {
		return nil, err
	}
	return &wholesaler, nil
}
