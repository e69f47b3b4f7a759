package enums

import "fmt"

type DeliveryMethod string

const (
	DeliveryMethodParcel  DeliveryMethod = "parcel"
	DeliveryMethodFreight DeliveryMethod = "freight"
	DeliveryMethodPickup  DeliveryMethod = "pickup"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodParcel,
	DeliveryMethodFreight,
	DeliveryMethodPickup,
}

func (v DeliveryMethod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (v DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}

var deliveryLeadBusinessDays = map[DeliveryMethod]int{
	DeliveryMethodParcel:  2,
	DeliveryMethodFreight: 3,
	DeliveryMethodPickup:  1,
}

// LeadBusinessDays is the number of business days from confirmation to delivery.
func (v DeliveryMethod) LeadBusinessDays() int {
	if days, ok := deliveryLeadBusinessDays[v]; ok {
		return days
	}
	return deliveryLeadBusinessDays[DeliveryMethodParcel]
}

// ChargesShipping reports whether per-unit shipping fees apply.
func (v DeliveryMethod) ChargesShipping() bool {
	return v != DeliveryMethodPickup
}
