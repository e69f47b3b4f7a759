package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/repo"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Repository reads listed products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, input ListInput) ([]models.Product, int64, error)
	FindListed(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error)
	UpdateStandardizedName(ctx context.Context, productID, wholesalerID uuid.UUID, name string) (int64, error)
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

// listed restricts to active products of approved wholesalers.
func (r *repository) listed(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Model(&models.Product{}).
		Joins("JOIN wholesalers ON wholesalers.id = products.wholesaler_id").
		Where("products.status = ? AND wholesalers.status = ?", enums.ProductStatusActive, enums.WholesalerStatusApproved)
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Product, int64, error) {
	q := r.listed(ctx)
	f := input.Filters
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("products.category = ?", c)
	}
	if f.WholesalerID != nil {
		q = q.Where("products.wholesaler_id = ?", *f.WholesalerID)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(COALESCE(products.standardized_name, '')) LIKE ?)", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses[SortLatest]
	}

	var rows []models.Product
	err := q.Select("products.*").
		Order(order).
		Order("products.id ASC").
		Limit(input.Pagination.Limit()).
		Offset(input.Pagination.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) FindListed(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.listed(ctx).
		Select("products.*").
		Preload("Variants").
		Where("products.id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.DB(ctx).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) UpdateStandardizedName(ctx context.Context, productID, wholesalerID uuid.UUID, name string) (int64, error) {
	return r.UpdateWhere(ctx, &models.Product{},
		map[string]any{"standardized_name": name},
		"id = ? AND wholesaler_id = ?", productID, wholesalerID)
}
