package checkout

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/cart"
	"github.com/angelmondragon/foodlink-backend/internal/catalog"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/orders"
	"github.com/angelmondragon/foodlink-backend/pkg/db"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

func newTestService(t *testing.T, conn *gorm.DB) *service {
	t.Helper()
	svc, err := NewService(db.Wrap(conn), catalog.NewRepository(conn), orders.NewRepository(conn), logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	impl := svc.(*service)
	// Friday morning in Seoul.
	impl.now = func() time.Time { return time.Date(2026, 1, 9, 1, 0, 0, 0, time.UTC) }
	return impl
}

func retailerOf(f sqlitetest.Fixture) identity.Identity {
	id := f.Retailer.ID
	return identity.Identity{ProfileID: f.RetailerProfile.ID, Role: enums.RoleRetailer, RetailerID: &id}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 3)
	svc := newTestService(t, conn)

	res, err := svc.Validate(context.Background(), []Line{
		{ProductID: f.Product.ID, Quantity: 1, DeliveryMethod: enums.DeliveryMethodParcel},
		{ProductID: f.Product.ID, Quantity: 4, DeliveryMethod: enums.DeliveryMethodParcel},
	})
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, cart.ErrMOQNotMet, res.Errors[0].Code)
	assert.Equal(t, cart.ErrOutOfStock, res.Errors[1].Code)

	res, err = svc.Validate(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, cart.ErrNoItemsSelected, res.Errors[0].Code)
}

func TestPrepareCreatesPendingOrdersUnderOneCheckout(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 20)
	price := int64(20000)
	variant := models.ProductVariant{ID: uuid.New(), ProductID: f.Product.ID, Name: "20kg", UnitPrice: &price, StockQuantity: 5}
	require.NoError(t, conn.Create(&variant).Error)
	svc := newTestService(t, conn)

	res, err := svc.Prepare(context.Background(), retailerOf(f), PrepareInput{
		Lines: []Line{
			{ProductID: f.Product.ID, Quantity: 3, DeliveryMethod: enums.DeliveryMethodParcel},
			{ProductID: f.Product.ID, VariantID: &variant.ID, Quantity: 2, DeliveryMethod: enums.DeliveryMethodPickup},
		},
		ShippingAddress: " 서울시 마포구 ",
	})
	require.NoError(t, err)

	// 12000*3 + 500*3, then 20000*2 with pickup
	assert.Equal(t, int64(37500+40000), res.Amount)
	assert.True(t, strings.HasPrefix(res.OrderID, "FLC-"))
	assert.Equal(t, "국산 양파 10kg 외 1건", res.OrderName)

	var stored []models.Order
	require.NoError(t, conn.Where("checkout_id = ?", res.OrderID).Order("total_amount DESC").Find(&stored).Error)
	require.Len(t, stored, 2)
	for _, o := range stored {
		assert.Equal(t, enums.OrderStatusPending, o.Status)
		assert.Equal(t, o.UnitPrice*int64(o.Quantity)+o.ShippingFeeTotal, o.TotalAmount)
		assert.Equal(t, "서울시 마포구", o.ShippingAddress)
		require.NotNil(t, o.EstimatedDeliveryDate)
	}
	assert.Equal(t, int64(40000), stored[0].TotalAmount)
	assert.Zero(t, stored[0].ShippingFeeTotal)
	require.NotNil(t, stored[0].VariantID)
	// pickup is one business day after Friday
	assert.Equal(t, time.Monday, stored[0].EstimatedDeliveryDate.Weekday())
	assert.NotEqual(t, stored[0].OrderNumber, stored[1].OrderNumber)

	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", f.Product.ID).Error)
	assert.Equal(t, 20, product.StockQuantity, "stock is reserved at payment confirmation")
}

func TestPrepareRejectsInvalidCart(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 20)
	svc := newTestService(t, conn)

	_, err := svc.Prepare(context.Background(), retailerOf(f), PrepareInput{
		Lines: []Line{{ProductID: f.Product.ID, Quantity: 1}},
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "최소 주문 수량은 2개")

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPrepareRequiresRetailerAndListedProduct(t *testing.T) {
	conn := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, conn, 20)
	svc := newTestService(t, conn)

	_, err := svc.Prepare(context.Background(), identity.Identity{Role: enums.RoleWholesaler}, PrepareInput{})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = svc.Prepare(context.Background(), retailerOf(f), PrepareInput{
		Lines: []Line{{ProductID: uuid.New(), Quantity: 2}},
	})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
