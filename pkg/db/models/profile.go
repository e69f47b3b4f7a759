package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

// Profile is the local identity record of an authenticated subject. Its ID is
// the subject id issued by the identity provider.
type Profile struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role        enums.Role `gorm:"column:role;type:text;not null" json:"role"`
	Email       string     `gorm:"column:email;not null" json:"email"`
	DisplayName string     `gorm:"column:display_name" json:"display_name"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
