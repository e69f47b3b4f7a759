// Package sqlitetest opens in-memory SQLite databases shaped like the
// production schema for repository tests.
package sqlitetest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

type options struct {
	skipInquiryFeedback bool
}

// Option tweaks the generated schema.
type Option func(*options)

// WithoutInquiryFeedback omits inquiries.ai_feedback, mimicking a database
// that has not applied the feedback migration.
func WithoutInquiryFeedback() Option {
	return func(o *options) { o.skipInquiryFeedback = true }
}

var baseDDL = []string{
	`CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  role TEXT NOT NULL,
  email TEXT NOT NULL,
  display_name TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE retailers (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL UNIQUE,
  business_name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`,
	`CREATE TABLE wholesalers (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL UNIQUE,
  business_name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  approved_at DATETIME,
  created_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  wholesaler_id TEXT NOT NULL,
  name TEXT NOT NULL,
  standardized_name TEXT,
  category TEXT NOT NULL,
  unit_price INTEGER NOT NULL,
  moq INTEGER NOT NULL DEFAULT 1,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  shipping_fee INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price INTEGER,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  checkout_id TEXT NOT NULL,
  retailer_id TEXT NOT NULL,
  wholesaler_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  shipping_fee_total INTEGER NOT NULL DEFAULT 0,
  total_amount INTEGER NOT NULL,
  delivery_method TEXT NOT NULL,
  shipping_address TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  stock_reserved BOOLEAN NOT NULL DEFAULT 0,
  estimated_delivery_date DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE settlements (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  gross_amount INTEGER NOT NULL,
  fee_amount INTEGER NOT NULL,
  amount INTEGER NOT NULL,
  payout_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  created_at DATETIME
);`,
	`CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  payment_key TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL UNIQUE,
  amount INTEGER NOT NULL,
  status TEXT NOT NULL,
  method TEXT,
  approved_at DATETIME,
  created_at DATETIME
);`,
	`CREATE TABLE payment_reconciliations (
  id TEXT PRIMARY KEY,
  payment_key TEXT NOT NULL,
  order_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  reason TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE announcements (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  published BOOLEAN NOT NULL DEFAULT 0,
  published_at DATETIME,
  created_at DATETIME
);`,
}

const inquiriesDDL = `CREATE TABLE inquiries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  wholesaler_id TEXT,
  order_id TEXT,
  answer TEXT,
  answered_at DATETIME,
  ai_draft_reply TEXT,
  attachment_urls TEXT NOT NULL DEFAULT '[]',
  %s
  created_at DATETIME,
  updated_at DATETIME
);`

// Open returns a fresh database named after the running test.
func Open(t *testing.T, opts ...Option) *gorm.DB {
	t.Helper()
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serializes transactions the way row locks would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	stmts := append([]string{}, baseDDL...)
	feedback := "ai_feedback BOOLEAN,"
	if o.skipInquiryFeedback {
		feedback = ""
	}
	stmts = append(stmts, fmt.Sprintf(inquiriesDDL, feedback))
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// Fixture bundles a retailer and an approved wholesaler with one product.
type Fixture struct {
	RetailerProfile   models.Profile
	Retailer          models.Retailer
	WholesalerProfile models.Profile
	Wholesaler        models.Wholesaler
	Product           models.Product
}

// Seed inserts a retailer, an approved wholesaler and a product with the
// given stock.
func Seed(t *testing.T, db *gorm.DB, stock int) Fixture {
	t.Helper()
	now := time.Now().UTC()

	f := Fixture{
		RetailerProfile:   models.Profile{ID: uuid.New(), Role: enums.RoleRetailer, Email: "retailer@example.com", DisplayName: "동네마트"},
		WholesalerProfile: models.Profile{ID: uuid.New(), Role: enums.RoleWholesaler, Email: "wholesaler@example.com", DisplayName: "한빛농산"},
	}
	f.Retailer = models.Retailer{ID: uuid.New(), ProfileID: f.RetailerProfile.ID, BusinessName: "동네마트", Address: "서울시 마포구"}
	f.Wholesaler = models.Wholesaler{ID: uuid.New(), ProfileID: f.WholesalerProfile.ID, BusinessName: "한빛농산", Status: enums.WholesalerStatusApproved, ApprovedAt: &now}
	f.Product = models.Product{
		ID:            uuid.New(),
		WholesalerID:  f.Wholesaler.ID,
		Name:          "국산 양파 10kg",
		Category:      "vegetables",
		UnitPrice:     12000,
		MOQ:           2,
		StockQuantity: stock,
		ShippingFee:   500,
		Status:        enums.ProductStatusActive,
	}

	for _, row := range []any{&f.RetailerProfile, &f.WholesalerProfile, &f.Retailer, &f.Wholesaler, &f.Product} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
	return f
}

// CreateOrder inserts a pending order for the fixture product under checkoutID.
func (f Fixture) CreateOrder(t *testing.T, db *gorm.DB, checkoutID string, qty int) models.Order {
	t.Helper()
	shipping := f.Product.ShippingFee * int64(qty)
	order := models.Order{
		ID:               uuid.New(),
		OrderNumber:      "FL-" + uuid.NewString()[:8],
		CheckoutID:       checkoutID,
		RetailerID:       f.Retailer.ID,
		WholesalerID:     f.Wholesaler.ID,
		ProductID:        f.Product.ID,
		ProductName:      f.Product.Name,
		Quantity:         qty,
		UnitPrice:        f.Product.UnitPrice,
		ShippingFeeTotal: shipping,
		TotalAmount:      f.Product.UnitPrice*int64(qty) + shipping,
		DeliveryMethod:   enums.DeliveryMethodParcel,
		Status:           enums.OrderStatusPending,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}
