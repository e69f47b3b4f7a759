package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/events"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

const msgOrderNotFound = "주문을 찾을 수 없습니다."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order operations available to retailers, wholesalers and admins.
type Service interface {
	List(ctx context.Context, caller identity.Identity, input ListInput) (*ListResult, error)
	Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Order, error)
	AdvanceStatus(ctx context.Context, caller identity.Identity, input AdvanceInput) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	events events.Publisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher events.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		events: publisher,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func scopeFor(caller identity.Identity) (Scope, error) {
	switch caller.Role {
	case enums.RoleAdmin:
		return Scope{}, nil
	case enums.RoleRetailer:
		if caller.RetailerID != nil {
			return Scope{RetailerID: caller.RetailerID}, nil
		}
	case enums.RoleWholesaler:
		if caller.WholesalerID != nil {
			return Scope{WholesalerID: caller.WholesalerID}, nil
		}
	}
	return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "사업자 정보가 등록되지 않았습니다.")
}

func (s *service) List(ctx context.Context, caller identity.Identity, input ListInput) (*ListResult, error) {
	scope, err := scopeFor(caller)
	if err != nil {
		return nil, err
	}

	sortBy := strings.TrimSpace(input.SortBy)
	if sortBy == "" {
		sortBy = SortCreatedAt
	}
	if _, ok := sortColumns[sortBy]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "지원하지 않는 정렬 기준입니다.").
			WithDetails(map[string]any{"sortBy": input.SortBy})
	}
	var ascending bool
	switch strings.ToLower(strings.TrimSpace(input.SortOrder)) {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "정렬 방향은 asc 또는 desc 입니다.").
			WithDetails(map[string]any{"sortOrder": input.SortOrder})
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "알 수 없는 주문 상태입니다.")
	}

	page := input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{
		Scope:     scope,
		Status:    input.Status,
		Page:      page,
		SortBy:    sortBy,
		Ascending: ascending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Orders: rows, PageMeta: page.Meta(total)}, nil
}

func (s *service) Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "주문을 조회할 권한이 없습니다.")
	}
	return order, nil
}

func canView(caller identity.Identity, order *models.Order) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.RetailerID != nil && *caller.RetailerID == order.RetailerID:
		return true
	case caller.WholesalerID != nil && *caller.WholesalerID == order.WholesalerID:
		return true
	}
	return false
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgOrderNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Cancel cancels a pre-shipment order owned by the calling retailer and
// returns any stock the order had reserved.
func (s *service) Cancel(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Order, error) {
	if caller.Role != enums.RoleRetailer || caller.RetailerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "소매업체만 주문을 취소할 수 있습니다.")
	}
	retailerID := *caller.RetailerID

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		n, err := repo.CancelOwned(ctx, id, retailerID, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		current, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return classifyCancelFailure(current, retailerID)
		}

		if current.StockReserved {
			if err := repo.ReleaseStock(ctx, current.ProductID, current.VariantID, current.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
			}
			if err := repo.ClearStockReserved(ctx, current.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear stock reservation")
			}
			current.StockReserved = false
			if err := s.reduceSettlement(ctx, repo, current); err != nil {
				return err
			}
		}
		cancelled = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": cancelled.ID.String(), "checkout_id": cancelled.CheckoutID})
	s.logg.Info(ctx, "order cancelled")
	s.publish(ctx, events.OrderCancelled, caller, map[string]any{
		"orderId":     cancelled.ID,
		"orderNumber": cancelled.OrderNumber,
		"checkoutId":  cancelled.CheckoutID,
	})
	return cancelled, nil
}

// reduceSettlement removes a cancelled order's total from its checkout's
// payout. The fee shrinks in proportion to the remaining gross so the
// platform keeps no fee on cancelled lines.
func (s *service) reduceSettlement(ctx context.Context, repo Repository, order *models.Order) error {
	settlement, err := repo.FindSettlement(ctx, order.CheckoutID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement")
	}
	if settlement == nil {
		return nil
	}
	if settlement.Status == enums.SettlementStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "정산이 완료된 주문은 취소할 수 없습니다.").
			WithDetails(map[string]any{"settlementStatus": settlement.Status})
	}
	if settlement.Status == enums.SettlementStatusCancelled {
		return nil
	}

	gross, fee, status := shrinkSettlement(*settlement, order.TotalAmount)
	n, err := repo.AdjustSettlement(ctx, *settlement, gross, fee, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust settlement")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "정산 정보가 변경되었습니다. 다시 시도해주세요.")
	}
	return nil
}

func shrinkSettlement(current models.Settlement, removed int64) (int64, int64, enums.SettlementStatus) {
	gross := current.GrossAmount - removed
	if gross <= 0 || current.GrossAmount <= 0 {
		return 0, 0, enums.SettlementStatusCancelled
	}
	fee := decimal.NewFromInt(current.FeeAmount).
		Mul(decimal.NewFromInt(gross)).
		Div(decimal.NewFromInt(current.GrossAmount)).
		Floor().IntPart()
	return gross, fee, current.Status
}

func classifyCancelFailure(order *models.Order, retailerID uuid.UUID) error {
	if order.RetailerID != retailerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "본인의 주문만 취소할 수 있습니다.")
	}
	if order.Status == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "이미 취소된 주문입니다.").
			WithDetails(map[string]any{"status": order.Status})
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "배송이 시작된 주문은 취소할 수 없습니다.").
		WithDetails(map[string]any{"status": order.Status})
}

// AdvanceStatus moves a wholesaler's order one fulfillment step forward.
func (s *service) AdvanceStatus(ctx context.Context, caller identity.Identity, input AdvanceInput) (*models.Order, error) {
	if !caller.IsApprovedWholesaler() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "승인된 도매업체만 주문 상태를 변경할 수 있습니다.")
	}
	from, ok := enums.PreviousFulfillmentStatus(input.Status)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "변경할 수 없는 주문 상태입니다.").
			WithDetails(map[string]any{"status": input.Status})
	}
	wholesalerID := *caller.WholesalerID

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		n, err := repo.Transition(ctx, input.OrderID, wholesalerID, from, input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
		}
		current, err := s.load(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if n == 0 {
			if current.WholesalerID != wholesalerID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "본인 업체의 주문만 처리할 수 있습니다.")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "현재 주문 상태에서는 변경할 수 없습니다.").
				WithDetails(map[string]any{"status": current.Status, "requested": input.Status})
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderStatusChanged, caller, map[string]any{
		"orderId": updated.ID,
		"from":    from,
		"to":      updated.Status,
	})
	return updated, nil
}

func (s *service) publish(ctx context.Context, eventType events.Type, caller identity.Identity, data any) {
	actor := &events.Actor{ProfileID: caller.ProfileID, Role: caller.Role.String()}
	if err := s.events.Publish(ctx, eventType, actor, data); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "event_type", string(eventType)), "event publish failed")
	}
}
