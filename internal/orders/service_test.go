package orders

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/events"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
)

type recordedEvent struct {
	Type  events.Type
	Actor *events.Actor
	Data  any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType events.Type, actor *events.Actor, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Actor: actor, Data: data})
	return nil
}

func newService(t *testing.T, conn *gorm.DB) (Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := NewService(NewRepository(conn), db.Wrap(conn), pub, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, pub
}

func retailerOf(f sqlitetest.Fixture) identity.Identity {
	id := f.Retailer.ID
	return identity.Identity{ProfileID: f.RetailerProfile.ID, Role: enums.RoleRetailer, RetailerID: &id}
}

func wholesalerOf(f sqlitetest.Fixture) identity.Identity {
	id := f.Wholesaler.ID
	status := enums.WholesalerStatusApproved
	return identity.Identity{ProfileID: f.WholesalerProfile.ID, Role: enums.RoleWholesaler, WholesalerID: &id, WholesalerStatus: &status}
}

func TestCancelTwiceReturnsStateError(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	order := f.CreateOrder(t, conn, "C1", 2)
	svc, pub := newService(t, conn)
	ctx := context.Background()

	cancelled, err := svc.Cancel(ctx, retailerOf(f), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, retailerOf(f), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCancelled, stored.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.OrderCancelled, pub.events[0].Type)
}

func TestCancelReleasesReservedStock(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 8)
	order := f.CreateOrder(t, conn, "C1", 3)
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{"status": enums.OrderStatusConfirmed, "stock_reserved": true}).Error)
	svc, _ := newService(t, conn)

	_, err := svc.Cancel(context.Background(), retailerOf(f), order.ID)
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", f.Product.ID).Error)
	assert.Equal(t, 11, product.StockQuantity)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	assert.False(t, stored.StockReserved)
}

func confirmOrders(t *testing.T, conn *gorm.DB, orders ...models.Order) {
	t.Helper()
	for _, o := range orders {
		require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", o.ID).
			Updates(map[string]any{"status": enums.OrderStatusConfirmed, "stock_reserved": true}).Error)
	}
}

func seedSettlement(t *testing.T, conn *gorm.DB, checkoutID string, gross int64, status enums.SettlementStatus) models.Settlement {
	t.Helper()
	fee := gross * 35 / 1000
	row := models.Settlement{
		ID:          uuid.NewString(),
		OrderID:     checkoutID,
		GrossAmount: gross,
		FeeAmount:   fee,
		Amount:      gross - fee,
		PayoutDate:  time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
		Status:      status,
	}
	require.NoError(t, conn.Create(&row).Error)
	return row
}

func TestCancelShrinksSettlement(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 20)
	first := f.CreateOrder(t, conn, "C1", 2)
	second := f.CreateOrder(t, conn, "C1", 3)
	confirmOrders(t, conn, first, second)
	gross := first.TotalAmount + second.TotalAmount
	original := seedSettlement(t, conn, "C1", gross, enums.SettlementStatusScheduled)
	svc, _ := newService(t, conn)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, retailerOf(f), first.ID)
	require.NoError(t, err)

	var stored models.Settlement
	require.NoError(t, conn.First(&stored, "id = ?", original.ID).Error)
	wantFee := decimal.NewFromInt(original.FeeAmount).
		Mul(decimal.NewFromInt(second.TotalAmount)).
		Div(decimal.NewFromInt(gross)).
		Floor().IntPart()
	assert.Equal(t, second.TotalAmount, stored.GrossAmount)
	assert.Equal(t, wantFee, stored.FeeAmount)
	assert.Equal(t, second.TotalAmount-wantFee, stored.Amount)
	assert.Equal(t, enums.SettlementStatusScheduled, stored.Status)

	_, err = svc.Cancel(ctx, retailerOf(f), second.ID)
	require.NoError(t, err)

	require.NoError(t, conn.First(&stored, "id = ?", original.ID).Error)
	assert.Zero(t, stored.GrossAmount)
	assert.Zero(t, stored.FeeAmount)
	assert.Zero(t, stored.Amount)
	assert.Equal(t, enums.SettlementStatusCancelled, stored.Status)
}

func TestCancelRejectsPaidSettlement(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	order := f.CreateOrder(t, conn, "C1", 2)
	confirmOrders(t, conn, order)
	paid := seedSettlement(t, conn, "C1", order.TotalAmount, enums.SettlementStatusPaid)
	svc, _ := newService(t, conn)

	_, err := svc.Cancel(context.Background(), retailerOf(f), order.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, stored.Status)
	assert.True(t, stored.StockReserved)

	var settlement models.Settlement
	require.NoError(t, conn.First(&settlement, "id = ?", paid.ID).Error)
	assert.Equal(t, order.TotalAmount, settlement.GrossAmount)
}

func TestCancelClassifiesFailures(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	order := f.CreateOrder(t, conn, "C1", 2)
	svc, _ := newService(t, conn)
	ctx := context.Background()

	_, err := svc.Cancel(ctx, retailerOf(f), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	stranger := retailerOf(f)
	otherID := uuid.New()
	stranger.RetailerID = &otherID
	_, err = svc.Cancel(ctx, stranger, order.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusShipped).Error)
	_, err = svc.Cancel(ctx, retailerOf(f), order.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	_, err = svc.Cancel(ctx, wholesalerOf(f), order.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestGetChecksVisibility(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	order := f.CreateOrder(t, conn, "C1", 2)
	svc, _ := newService(t, conn)
	ctx := context.Background()

	_, err := svc.Get(ctx, retailerOf(f), order.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, wholesalerOf(f), order.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, identity.Identity{Role: enums.RoleAdmin}, order.ID)
	require.NoError(t, err)

	otherID := uuid.New()
	_, err = svc.Get(ctx, identity.Identity{Role: enums.RoleRetailer, RetailerID: &otherID}, order.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestListValidatesSortAndClampsPageSize(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	f.CreateOrder(t, conn, "C1", 2)
	svc, _ := newService(t, conn)
	ctx := context.Background()

	_, err := svc.List(ctx, retailerOf(f), ListInput{SortBy: "product_name"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	res, err := svc.List(ctx, retailerOf(f), ListInput{Pagination: pagination.Params{PageSize: 500}, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, pagination.MaxPageSize, res.PageSize)
	assert.Equal(t, int64(1), res.Total)

	_, err = svc.List(ctx, identity.Identity{Role: enums.RoleRetailer}, ListInput{})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestAdvanceStatusOneStepAtATime(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 10)
	order := f.CreateOrder(t, conn, "C1", 2)
	svc, pub := newService(t, conn)
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, wholesalerOf(f), AdvanceInput{OrderID: order.ID, Status: enums.OrderStatusPreparing})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusConfirmed).Error)

	updated, err := svc.AdvanceStatus(ctx, wholesalerOf(f), AdvanceInput{OrderID: order.ID, Status: enums.OrderStatusPreparing})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, updated.Status)

	_, err = svc.AdvanceStatus(ctx, wholesalerOf(f), AdvanceInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	_, err = svc.AdvanceStatus(ctx, wholesalerOf(f), AdvanceInput{OrderID: order.ID, Status: enums.OrderStatusCancelled})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.OrderStatusChanged, pub.events[0].Type)
}
