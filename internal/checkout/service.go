package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/cart"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/orders"
	"github.com/angelmondragon/foodlink-backend/pkg/businessday"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindListed(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service validates carts and turns them into pending orders.
type Service interface {
	Validate(ctx context.Context, lines []Line) (*cart.Result, error)
	Prepare(ctx context.Context, caller identity.Identity, input PrepareInput) (*PrepareResult, error)
}

type service struct {
	tx       txRunner
	products productLoader
	orders   orders.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(tx txRunner, products productLoader, ordersRepo orders.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, products: products, orders: ordersRepo, logg: logg, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, lines []Line) (*cart.Result, error) {
	items, err := s.items(ctx, lines)
	if err != nil {
		return nil, err
	}
	res := cart.Validate(items)
	return &res, nil
}

// items resolves lines against the listed catalog. Variant lines take the
// variant's price when it overrides one, and always its stock.
func (s *service) items(ctx context.Context, lines []Line) ([]cart.Item, error) {
	items := make([]cart.Item, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.FindListed(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "판매 중인 상품이 아닙니다.").
					WithDetails(map[string]any{"productId": line.ProductID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		method := line.DeliveryMethod
		if method == "" {
			method = enums.DeliveryMethodParcel
		}
		if !method.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "배송 방법이 올바르지 않습니다.").
				WithDetails(map[string]any{"deliveryMethod": line.DeliveryMethod})
		}

		item := cart.Item{
			ProductID:      product.ID,
			ProductName:    product.Name,
			WholesalerID:   product.WholesalerID,
			Quantity:       line.Quantity,
			UnitPrice:      product.UnitPrice,
			MOQ:            product.MOQ,
			StockQuantity:  product.StockQuantity,
			ShippingFee:    product.ShippingFee,
			DeliveryMethod: method,
		}
		if line.VariantID != nil {
			variant := findVariant(product.Variants, *line.VariantID)
			if variant == nil {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "상품 옵션을 찾을 수 없습니다.").
					WithDetails(map[string]any{"productId": product.ID, "variantId": *line.VariantID})
			}
			item.VariantID = &variant.ID
			item.ProductName = product.Name + " " + variant.Name
			item.StockQuantity = variant.StockQuantity
			if variant.UnitPrice != nil {
				item.UnitPrice = *variant.UnitPrice
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func findVariant(variants []models.ProductVariant, id uuid.UUID) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

// Prepare validates the cart and stores one pending order per line, all
// sharing a fresh checkout id that the gateway will use as its order id.
func (s *service) Prepare(ctx context.Context, caller identity.Identity, input PrepareInput) (*PrepareResult, error) {
	if caller.Role != enums.RoleRetailer || caller.RetailerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "소매업체만 주문할 수 있습니다.")
	}

	items, err := s.items(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	if res := cart.Validate(items); !res.IsValid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, res.Errors[0].Message).
			WithDetails(map[string]any{"errors": res.Errors})
	}

	now := s.now().UTC()
	checkoutID := newCheckoutID(now)
	rows := make([]models.Order, 0, len(items))
	var amount int64
	for _, item := range items {
		eta := businessday.EstimateDelivery(now, item.DeliveryMethod)
		rows = append(rows, models.Order{
			ID:                    uuid.New(),
			OrderNumber:           newOrderNumber(now),
			CheckoutID:            checkoutID,
			RetailerID:            *caller.RetailerID,
			WholesalerID:          item.WholesalerID,
			ProductID:             item.ProductID,
			VariantID:             item.VariantID,
			ProductName:           item.ProductName,
			Quantity:              item.Quantity,
			UnitPrice:             item.UnitPrice,
			ShippingFeeTotal:      item.ShippingFeeTotal(),
			TotalAmount:           item.Total(),
			DeliveryMethod:        item.DeliveryMethod,
			ShippingAddress:       strings.TrimSpace(input.ShippingAddress),
			Status:                enums.OrderStatusPending,
			EstimatedDeliveryDate: &eta,
		})
		amount += item.Total()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.orders.WithTx(tx).CreateOrders(ctx, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create orders")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"checkout_id": checkoutID, "orders": len(rows), "amount": amount})
	s.logg.Info(ctx, "checkout prepared")

	return &PrepareResult{
		OrderID:   checkoutID,
		Amount:    amount,
		OrderName: orderName(items),
		Orders:    rows,
	}, nil
}

func orderName(items []cart.Item) string {
	if len(items) == 1 {
		return items[0].ProductName
	}
	return fmt.Sprintf("%s 외 %d건", items[0].ProductName, len(items)-1)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:n*2]
	}
	return hex.EncodeToString(buf)
}

// newCheckoutID returns a gateway-safe order id ([A-Za-z0-9-], 6-64 chars).
func newCheckoutID(now time.Time) string {
	return "FLC-" + now.Format("20060102150405") + "-" + randomHex(6)
}

func newOrderNumber(now time.Time) string {
	return "FL-" + now.Format("20060102") + "-" + strings.ToUpper(randomHex(4))
}
