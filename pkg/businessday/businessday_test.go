package businessday

import (
	"testing"
	"time"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

func TestIsBusinessDay(t *testing.T) {
	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		want := i < 5
		if got := IsBusinessDay(day); got != want {
			t.Fatalf("%s: expected %v, got %v", day.Weekday(), want, got)
		}
	}
}

func TestAddBusinessDaysFromFridaySkipsTwoWeekends(t *testing.T) {
	friday := time.Date(2026, 1, 9, 15, 30, 0, 0, time.UTC)
	got := AddBusinessDays(friday, 7)

	want := time.Date(2026, 1, 20, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	businessDays := 0
	for d := friday.AddDate(0, 0, 1); !d.After(got); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			businessDays++
		}
	}
	if businessDays != 7 {
		t.Fatalf("expected 7 business days in range, counted %d", businessDays)
	}
	if !IsBusinessDay(got) {
		t.Fatalf("payout landed on %s", got.Weekday())
	}
}

func TestAddBusinessDaysFromWeekend(t *testing.T) {
	saturday := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	if got := AddBusinessDays(saturday, 1); got.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", got.Weekday())
	}
	if got := AddBusinessDays(saturday, 0); !got.Equal(saturday) {
		t.Fatalf("zero days should not move the date")
	}
	if got := AddBusinessDays(saturday, -1); got.Weekday() != time.Friday {
		t.Fatalf("expected Friday going backwards, got %s", got.Weekday())
	}
}

func TestPayoutDateAndDeliveryEstimate(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	thursday := time.Date(2026, 1, 8, 18, 0, 0, 0, loc)

	payout := PayoutDate(thursday, 7)
	if payout.Hour() != 0 || payout.Location() != loc {
		t.Fatalf("payout should be midnight in the input location, got %s", payout)
	}
	if payout.Day() != 19 {
		t.Fatalf("expected the 19th, got %s", payout)
	}

	if got := EstimateDelivery(thursday, enums.DeliveryMethodPickup); got.Day() != 9 {
		t.Fatalf("pickup should be next business day, got %s", got)
	}
	if got := EstimateDelivery(thursday, enums.DeliveryMethodFreight); got.Day() != 13 {
		t.Fatalf("freight should take 3 business days, got %s", got)
	}
}
