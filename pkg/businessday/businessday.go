// Package businessday implements weekday arithmetic for payouts and delivery
// estimates. Public holidays are not modelled.
package businessday

import (
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays returns the date n business days after t, keeping the time
// of day. Negative n walks backwards. A zero n returns t unchanged.
func AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for n > 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(t) {
			n--
		}
	}
	return t
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PayoutDate is the settlement payout date for a payment confirmed at t.
func PayoutDate(t time.Time, businessDays int) time.Time {
	return StartOfDay(AddBusinessDays(t, businessDays))
}

// EstimateDelivery returns the expected delivery date for an order placed at
// t with the given delivery method.
func EstimateDelivery(t time.Time, method enums.DeliveryMethod) time.Time {
	return StartOfDay(AddBusinessDays(t, method.LeadBusinessDays()))
}
