package enums

import "fmt"

type InquiryStatus string

const (
	InquiryStatusOpen     InquiryStatus = "open"
	InquiryStatusAnswered InquiryStatus = "answered"
)

var validInquiryStatuses = []InquiryStatus{
	InquiryStatusOpen,
	InquiryStatusAnswered,
}

func (v InquiryStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known InquiryStatus.
func (v InquiryStatus) IsValid() bool {
	for _, candidate := range validInquiryStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseInquiryStatus converts raw input into a InquiryStatus.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	for _, candidate := range validInquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry status %q", value)
}
