package inquiries

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

// Repository persists support inquiries. Every mutation states its owner and
// status preconditions in the WHERE clause.
type Repository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Inquiry, int64, error)
	UpdateAnswered(ctx context.Context, id, userID uuid.UUID, title, content string) (int64, error)
	DeleteAnswered(ctx context.Context, id, userID uuid.UUID) (int64, error)
	SetFeedback(ctx context.Context, id, userID uuid.UUID, helpful bool) (int64, error)
	SetDraftReply(ctx context.Context, id uuid.UUID, draft string) error
	Answer(ctx context.Context, id uuid.UUID, answer string, at time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	return r.DB(ctx).Create(inquiry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.DB(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Inquiry, int64, error) {
	q := r.DB(ctx).Model(&models.Inquiry{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Inquiry
	err := q.Order("created_at DESC").
		Order("id ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateAnswered(ctx context.Context, id, userID uuid.UUID, title, content string) (int64, error) {
	return r.UpdateWhere(ctx, &models.Inquiry{},
		map[string]any{"title": title, "content": content},
		"id = ? AND user_id = ? AND status = ?", id, userID, enums.InquiryStatusAnswered)
}

func (r *repository) DeleteAnswered(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	return r.DeleteWhere(ctx, &models.Inquiry{},
		"id = ? AND user_id = ? AND status = ?", id, userID, enums.InquiryStatusAnswered)
}

// SetFeedback writes ai_feedback directly; the column is read-only on the
// model so inserts keep working on databases that have not added it yet.
func (r *repository) SetFeedback(ctx context.Context, id, userID uuid.UUID, helpful bool) (int64, error) {
	res := r.DB(ctx).
		Table("inquiries").
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("ai_feedback", helpful)
	return res.RowsAffected, res.Error
}

func (r *repository) SetDraftReply(ctx context.Context, id uuid.UUID, draft string) error {
	_, err := r.UpdateWhere(ctx, &models.Inquiry{}, map[string]any{"ai_draft_reply": draft}, "id = ?", id)
	return err
}

func (r *repository) Answer(ctx context.Context, id uuid.UUID, answer string, at time.Time) (int64, error) {
	return r.UpdateWhere(ctx, &models.Inquiry{},
		map[string]any{"answer": answer, "answered_at": at, "status": enums.InquiryStatusAnswered},
		"id = ? AND status = ?", id, enums.InquiryStatusOpen)
}
