package wholesalers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

type ListResult struct {
	Wholesalers []models.Wholesaler `json:"wholesalers"`
	types.PageMeta
}

// Service is the admin approval workflow for wholesaler accounts.
type Service interface {
	List(ctx context.Context, caller identity.Identity, status *enums.WholesalerStatus, page pagination.Params) (*ListResult, error)
	Approve(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Wholesaler, error)
	Reject(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Wholesaler, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wholesalers repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func requireAdmin(caller identity.Identity) error {
	if !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "관리자만 처리할 수 있습니다.")
	}
	return nil
}

func (s *service) List(ctx context.Context, caller identity.Identity, status *enums.WholesalerStatus, page pagination.Params) (*ListResult, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "알 수 없는 승인 상태입니다.")
	}
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, status, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wholesalers")
	}
	return &ListResult{Wholesalers: rows, PageMeta: page.Meta(total)}, nil
}

func (s *service) Approve(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Wholesaler, error) {
	now := s.now().UTC()
	return s.transition(ctx, caller, id,
		[]enums.WholesalerStatus{enums.WholesalerStatusPending, enums.WholesalerStatusRejected},
		enums.WholesalerStatusApproved, &now)
}

// Reject also revokes an earlier approval, which unlists the wholesaler's products.
func (s *service) Reject(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Wholesaler, error) {
	return s.transition(ctx, caller, id,
		[]enums.WholesalerStatus{enums.WholesalerStatusPending, enums.WholesalerStatusApproved},
		enums.WholesalerStatusRejected, nil)
}

func (s *service) transition(ctx context.Context, caller identity.Identity, id uuid.UUID, from []enums.WholesalerStatus, to enums.WholesalerStatus, approvedAt *time.Time) (*models.Wholesaler, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	n, err := s.repo.SetStatus(ctx, id, from, to, approvedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wholesaler status")
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "도매업체를 찾을 수 없습니다.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wholesaler")
	}
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "이미 처리된 도매업체입니다.").
			WithDetails(map[string]any{"status": current.Status})
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"wholesaler_id": id.String(), "status": string(to)})
	s.logg.Info(ctx, "wholesaler status changed")
	return current, nil
}
