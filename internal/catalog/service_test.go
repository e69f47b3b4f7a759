package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/gemini"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
	last  []gemini.Message
}

func (s *stubGenerator) Generate(_ context.Context, _ string, messages []gemini.Message) (string, error) {
	s.calls++
	s.last = messages
	return s.reply, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, db *gorm.DB, gen gemini.Generator) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gen, testLogger())
	require.NoError(t, err)
	return svc
}

func wholesalerCaller(f sqlitetest.Fixture) identity.Identity {
	status := f.Wholesaler.Status
	id := f.Wholesaler.ID
	return identity.Identity{ProfileID: f.WholesalerProfile.ID, Role: enums.RoleWholesaler, WholesalerID: &id, WholesalerStatus: &status}
}

func addProduct(t *testing.T, db *gorm.DB, wholesalerID uuid.UUID, name string, price int64, status enums.ProductStatus) models.Product {
	t.Helper()
	p := models.Product{
		ID:            uuid.New(),
		WholesalerID:  wholesalerID,
		Name:          name,
		Category:      "fruits",
		UnitPrice:     price,
		MOQ:           1,
		StockQuantity: 5,
		Status:        status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestListFiltersAndSorts(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	addProduct(t, db, f.Wholesaler.ID, "제주 감귤 5kg", 30000, enums.ProductStatusActive)
	addProduct(t, db, f.Wholesaler.ID, "사과 10kg", 45000, enums.ProductStatusActive)
	addProduct(t, db, f.Wholesaler.ID, "숨김 상품", 1000, enums.ProductStatusHidden)

	pending := models.Wholesaler{ID: uuid.New(), ProfileID: uuid.New(), BusinessName: "대기업체", Status: enums.WholesalerStatusPending}
	require.NoError(t, db.Create(&pending).Error)
	addProduct(t, db, pending.ID, "미승인 배", 100, enums.ProductStatusActive)

	svc := newTestService(t, db, nil)
	ctx := context.Background()

	res, err := svc.List(ctx, ListInput{Filters: ListFilters{Sort: SortPriceAsc}})
	require.NoError(t, err)
	require.Len(t, res.Products, 3)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, pagination.DefaultPageSize, res.PageSize)
	assert.Equal(t, int64(12000), res.Products[0].UnitPrice)
	assert.Equal(t, int64(45000), res.Products[2].UnitPrice)

	res, err = svc.List(ctx, ListInput{Filters: ListFilters{Category: "fruits", Sort: SortPriceDesc}})
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "사과 10kg", res.Products[0].Name)

	res, err = svc.List(ctx, ListInput{Filters: ListFilters{Keyword: "감귤"}})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)

	res, err = svc.List(ctx, ListInput{Pagination: pagination.Params{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, 2, res.TotalPages)
}

func TestGetHidesUnlistedProducts(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	variant := models.ProductVariant{ID: uuid.New(), ProductID: f.Product.ID, Name: "20kg", StockQuantity: 3}
	require.NoError(t, db.Create(&variant).Error)
	hidden := addProduct(t, db, f.Wholesaler.ID, "숨김", 100, enums.ProductStatusHidden)

	svc := newTestService(t, db, nil)
	got, err := svc.Get(context.Background(), f.Product.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, "20kg", got.Variants[0].Name)

	_, err = svc.Get(context.Background(), hidden.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestStandardizeNameStoresTrimmedReply(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	gen := &stubGenerator{reply: "\"양파 국내산 10kg 망\"\n설명은 생략합니다."}
	svc := newTestService(t, db, gen)

	res, err := svc.StandardizeName(context.Background(), wholesalerCaller(f), f.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, "양파 국내산 10kg 망", res.StandardizedName)
	require.Len(t, gen.last, 1)
	assert.Equal(t, f.Product.Name, gen.last[0].Content)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", f.Product.ID).Error)
	require.NotNil(t, stored.StandardizedName)
	assert.Equal(t, "양파 국내산 10kg 망", *stored.StandardizedName)
}

func TestStandardizeNameTruncatesLongReplies(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	svc := newTestService(t, db, &stubGenerator{reply: strings.Repeat("가", 250)})

	res, err := svc.StandardizeName(context.Background(), wholesalerCaller(f), f.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, maxStandardizedNameLen, len([]rune(res.StandardizedName)))
}

func TestStandardizeNameRejectsOtherWholesaler(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	gen := &stubGenerator{reply: "x"}
	svc := newTestService(t, db, gen)

	caller := wholesalerCaller(f)
	other := uuid.New()
	caller.WholesalerID = &other

	_, err := svc.StandardizeName(context.Background(), caller, f.Product.ID)
	assert.Equal(t, pkgerrors.CodeOwnership, pkgerrors.CodeOf(err))
	assert.Zero(t, gen.calls)
}

func TestStandardizeNameRequiresProviderAndApproval(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)

	_, err := newTestService(t, db, nil).StandardizeName(context.Background(), wholesalerCaller(f), f.Product.ID)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	caller := wholesalerCaller(f)
	pending := enums.WholesalerStatusPending
	caller.WholesalerStatus = &pending
	_, err = newTestService(t, db, &stubGenerator{reply: "x"}).StandardizeName(context.Background(), caller, f.Product.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestStandardizeNamePassesProviderErrors(t *testing.T) {
	db := sqlitetest.Open(t)
	f := sqlitetest.Seed(t, db, 10)
	upstream := pkgerrors.Wrap(pkgerrors.CodeRateLimit, errors.New("429"), "rate limited")
	svc := newTestService(t, db, &stubGenerator{err: upstream})

	_, err := svc.StandardizeName(context.Background(), wholesalerCaller(f), f.Product.ID)
	assert.Equal(t, pkgerrors.CodeRateLimit, pkgerrors.CodeOf(err))
}
