package enums

import "fmt"

type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusHidden ProductStatus = "hidden"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusHidden,
}

func (v ProductStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ProductStatus.
func (v ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
