package identity

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Identity is the resolved caller of a request: the profile behind the token
// plus the business it operates.
type Identity struct {
	ProfileID        uuid.UUID               `json:"id"`
	Role             enums.Role              `json:"role"`
	Email            string                  `json:"email"`
	DisplayName      string                  `json:"display_name"`
	RetailerID       *uuid.UUID              `json:"retailer_id,omitempty"`
	WholesalerID     *uuid.UUID              `json:"wholesaler_id,omitempty"`
	WholesalerStatus *enums.WholesalerStatus `json:"wholesaler_status,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

// IsApprovedWholesaler reports whether the caller may act as a seller.
func (i Identity) IsApprovedWholesaler() bool {
	return i.Role == enums.RoleWholesaler &&
		i.WholesalerID != nil &&
		i.WholesalerStatus != nil &&
		*i.WholesalerStatus == enums.WholesalerStatusApproved
}
