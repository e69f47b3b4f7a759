package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (v OrderStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known OrderStatus.
func (v OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

var cancellableOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
}

// CancellableOrderStatuses lists the pre-shipment states an order may be cancelled from.
func CancellableOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusConfirmed}
}

// IsCancellable reports whether an order in this state may still be cancelled.
func (v OrderStatus) IsCancellable() bool {
	_, ok := cancellableOrderStatuses[v]
	return ok
}

var nextFulfillmentStatus = map[OrderStatus]OrderStatus{
	OrderStatusConfirmed: OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
	OrderStatusDelivered: OrderStatusCompleted,
}

// CanAdvanceTo reports whether next is the single forward step from v.
func (v OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	expected, ok := nextFulfillmentStatus[v]
	return ok && expected == next
}

// PreviousFulfillmentStatus returns the state an order must be in to move to next.
func PreviousFulfillmentStatus(next OrderStatus) (OrderStatus, bool) {
	for from, to := range nextFulfillmentStatus {
		if to == next {
			return from, true
		}
	}
	return "", false
}
