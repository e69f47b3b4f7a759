package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Wholesaler is the supplier-side business owned by a wholesaler profile.
type Wholesaler struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID    uuid.UUID              `gorm:"column:profile_id;type:uuid;not null;uniqueIndex" json:"profile_id"`
	BusinessName string                 `gorm:"column:business_name;not null" json:"business_name"`
	Status       enums.WholesalerStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	ApprovedAt   *time.Time             `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
