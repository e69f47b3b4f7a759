package models

import (
	"time"

	"github.com/google/uuid"
)

// Retailer is the buyer-side business owned by a retailer profile.
type Retailer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID    uuid.UUID `gorm:"column:profile_id;type:uuid;not null;uniqueIndex" json:"profile_id"`
	BusinessName string    `gorm:"column:business_name;not null" json:"business_name"`
	Address      string    `gorm:"column:address;not null" json:"address"`
	Phone        string    `gorm:"column:phone" json:"phone"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
