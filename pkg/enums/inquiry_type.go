package enums

import "fmt"

// InquiryType categorizes support inquiries.
type InquiryType string

const (
	InquiryTypeGeneral InquiryType = "general"
	InquiryTypeProduct InquiryType = "product"
	InquiryTypeOrder   InquiryType = "order"
	InquiryTypePayment InquiryType = "payment"
	InquiryTypeOther   InquiryType = "other"
)

var validInquiryTypes = []InquiryType{
	InquiryTypeGeneral,
	InquiryTypeProduct,
	InquiryTypeOrder,
	InquiryTypePayment,
	InquiryTypeOther,
}

func (v InquiryType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known InquiryType.
func (v InquiryType) IsValid() bool {
	for _, candidate := range validInquiryTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseInquiryType converts raw input into a InquiryType.
func ParseInquiryType(value string) (InquiryType, error) {
	for _, candidate := range validInquiryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry type %q", value)
}
