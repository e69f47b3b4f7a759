package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/orders"
	"github.com/angelmondragon/foodlink-backend/pkg/businessday"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/events"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/metrics"
	"github.com/angelmondragon/foodlink-backend/pkg/paygate"
)

// MsgMissingParams is returned before any gateway call when the confirm
// triple is incomplete.
const MsgMissingParams = "필수 파라미터가 누락되었습니다."

const reconciliationWriteTimeout = 5 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service confirms gateway payments and books the resulting orders,
// settlement and payment.
type Service interface {
	Confirm(ctx context.Context, caller identity.Identity, input ConfirmInput) (*ConfirmResult, error)
}

// Settings are the bookkeeping parameters of the marketplace.
type Settings struct {
	FeeRate            decimal.Decimal
	PayoutBusinessDays int
	// Location is the marketplace calendar; nil means Korea Standard Time.
	Location *time.Location
}

var koreaStandardTime = time.FixedZone("KST", 9*60*60)

type service struct {
	tx       txRunner
	repo     Repository
	orders   orders.Repository
	gateway  paygate.Confirmer
	events   events.Publisher
	metrics  *metrics.PaymentMetrics
	logg     *logger.Logger
	settings Settings
	now      func() time.Time
}

// NewService builds the payment confirmation service.
func NewService(
	tx txRunner,
	repo Repository,
	ordersRepo orders.Repository,
	gateway paygate.Confirmer,
	publisher events.Publisher,
	m *metrics.PaymentMetrics,
	logg *logger.Logger,
	settings Settings,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if settings.PayoutBusinessDays <= 0 {
		return nil, fmt.Errorf("payout business days must be positive")
	}
	if settings.Location == nil {
		settings.Location = koreaStandardTime
	}
	return &service{
		tx:       tx,
		repo:     repo,
		orders:   ordersRepo,
		gateway:  gateway,
		events:   publisher,
		metrics:  m,
		logg:     logg,
		settings: settings,
		now:      time.Now,
	}, nil
}

func (s *service) Confirm(ctx context.Context, caller identity.Identity, input ConfirmInput) (*ConfirmResult, error) {
	input.PaymentKey = strings.TrimSpace(input.PaymentKey)
	input.OrderID = strings.TrimSpace(input.OrderID)
	if input.PaymentKey == "" || input.OrderID == "" || input.Amount <= 0 {
		s.metrics.IncConfirm(metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgMissingParams)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"payment_key": input.PaymentKey,
		"order_id":    input.OrderID,
		"amount":      input.Amount,
	})

	pending, err := s.precheck(ctx, caller, input)
	if err != nil {
		s.metrics.IncConfirm(metrics.OutcomeRejected)
		return nil, err
	}

	resp, err := s.gateway.Confirm(ctx, paygate.ConfirmRequest{
		PaymentKey: input.PaymentKey,
		OrderID:    input.OrderID,
		Amount:     input.Amount,
	})
	if err != nil {
		s.metrics.IncConfirm(metrics.OutcomeGatewayFailed)
		return nil, err
	}

	result, err := s.book(ctx, input, resp, pending)
	if err != nil {
		return nil, s.reconcile(ctx, caller, input, err)
	}

	s.metrics.IncConfirm(metrics.OutcomeConfirmed)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"settlement_id": result.SettlementID,
		"payment_id":    result.PaymentID,
	}), "payment confirmed")

	orderIDs := make([]uuid.UUID, 0, len(pending))
	for _, o := range pending {
		orderIDs = append(orderIDs, o.ID)
	}
	s.publish(ctx, events.OrderConfirmed, caller, map[string]any{
		"checkoutId":   result.OrderID,
		"orderIds":     orderIDs,
		"paymentId":    result.PaymentID,
		"settlementId": result.SettlementID,
		"amount":       result.Amount,
	})
	return result, nil
}

// precheck loads the pending orders of the checkout and rejects requests
// that could never be booked, so the gateway is not asked to capture them.
func (s *service) precheck(ctx context.Context, caller identity.Identity, input ConfirmInput) ([]models.Order, error) {
	if caller.Role != enums.RoleRetailer || caller.RetailerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "소매업체만 결제할 수 있습니다.")
	}

	rows, err := s.orders.FindByCheckoutID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout orders")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "주문을 찾을 수 없습니다.")
	}

	existing, err := s.repo.FindByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "이미 결제가 완료된 주문입니다.")
	}

	pending := make([]models.Order, 0, len(rows))
	var total int64
	for _, o := range rows {
		if o.RetailerID != *caller.RetailerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "본인의 주문만 결제할 수 있습니다.")
		}
		if o.Status != enums.OrderStatusPending {
			continue
		}
		pending = append(pending, o)
		total += o.TotalAmount
	}
	if len(pending) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "결제 대기 중인 주문이 없습니다.")
	}
	if total != input.Amount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "결제 금액이 주문 금액과 일치하지 않습니다.").
			WithDetails(map[string]any{"expected": total, "received": input.Amount})
	}
	return pending, nil
}

// payoutDate counts business days on the marketplace calendar and returns the
// resulting day as a UTC date.
func (s *service) payoutDate(confirmedAt time.Time) time.Time {
	y, m, d := businessday.PayoutDate(confirmedAt.In(s.settings.Location), s.settings.PayoutBusinessDays).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// book runs the local bookkeeping for a captured payment in one transaction.
func (s *service) book(ctx context.Context, input ConfirmInput, resp *paygate.ConfirmResponse, pending []models.Order) (*ConfirmResult, error) {
	if resp.OrderID != input.OrderID {
		return nil, fmt.Errorf("gateway confirmed order %q, expected %q", resp.OrderID, input.OrderID)
	}

	now := s.now().UTC()
	fee := s.fee(input.Amount)
	settlement := models.Settlement{
		ID:          firstNonEmpty(resp.SettlementID, uuid.NewString()),
		OrderID:     input.OrderID,
		GrossAmount: input.Amount,
		FeeAmount:   fee,
		Amount:      input.Amount - fee,
		PayoutDate:  s.payoutDate(now),
		Status:      enums.SettlementStatusScheduled,
	}
	payment := models.Payment{
		ID:         firstNonEmpty(resp.PaymentID, uuid.NewString()),
		PaymentKey: input.PaymentKey,
		OrderID:    input.OrderID,
		Amount:     input.Amount,
		Status:     paymentStatus(resp.Status),
		ApprovedAt: resp.ApprovedAt,
	}
	if resp.Method != "" {
		method := resp.Method
		payment.Method = &method
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		n, err := ordersRepo.ConfirmCheckout(ctx, input.OrderID)
		if err != nil {
			return fmt.Errorf("confirm orders: %w", err)
		}
		if n != int64(len(pending)) {
			return fmt.Errorf("confirmed %d of %d pending orders", n, len(pending))
		}
		for _, o := range pending {
			n, err := ordersRepo.ReserveStock(ctx, o.ProductID, o.VariantID, o.Quantity)
			if err != nil {
				return fmt.Errorf("reserve stock for order %s: %w", o.OrderNumber, err)
			}
			if n == 0 {
				return fmt.Errorf("insufficient stock for order %s", o.OrderNumber)
			}
		}

		repo := s.repo.WithTx(tx)
		if err := repo.CreateSettlement(ctx, &settlement); err != nil {
			return fmt.Errorf("create settlement: %w", err)
		}
		if err := repo.CreatePayment(ctx, &payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ConfirmResult{
		OrderID:      input.OrderID,
		SettlementID: settlement.ID,
		PaymentID:    payment.ID,
		Amount:       input.Amount,
		PayoutDate:   settlement.PayoutDate,
	}, nil
}

// reconcile records a payment the gateway captured but bookkeeping could not
// store. Every step is best-effort; the caller always gets a reconciliation
// error.
func (s *service) reconcile(ctx context.Context, caller identity.Identity, input ConfirmInput, cause error) error {
	s.metrics.IncReconciliation()
	s.logg.Error(ctx, "payment captured but bookkeeping failed", cause)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconciliationWriteTimeout)
	defer cancel()
	rec := models.PaymentReconciliation{
		ID:         uuid.NewString(),
		PaymentKey: input.PaymentKey,
		OrderID:    input.OrderID,
		Amount:     input.Amount,
		Reason:     cause.Error(),
	}
	if err := s.repo.CreateReconciliation(writeCtx, &rec); err != nil {
		s.logg.Error(ctx, "failed to record payment reconciliation", err)
	}

	s.publish(writeCtx, events.PaymentReconciliationRequired, caller, map[string]any{
		"paymentKey": input.PaymentKey,
		"orderId":    input.OrderID,
		"amount":     input.Amount,
	})
	return pkgerrors.Wrap(pkgerrors.CodeReconciliation, cause, "payment requires reconciliation")
}

// fee is amount times the platform rate, rounded down to whole won.
func (s *service) fee(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(s.settings.FeeRate).Floor().IntPart()
}

func (s *service) publish(ctx context.Context, eventType events.Type, caller identity.Identity, data any) {
	actor := &events.Actor{ProfileID: caller.ProfileID, Role: caller.Role.String()}
	if err := s.events.Publish(ctx, eventType, actor, data); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "event_type", string(eventType)), "event publish failed")
	}
}

func paymentStatus(raw string) enums.PaymentStatus {
	if status, err := enums.ParsePaymentStatus(strings.ToUpper(strings.TrimSpace(raw))); err == nil {
		return status
	}
	return enums.PaymentStatus(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
