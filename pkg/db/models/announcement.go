package models

import (
	"time"

	"github.com/google/uuid"
)

type Announcement struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Body        string     `gorm:"column:body;not null" json:"body"`
	Published   bool       `gorm:"column:published;not null;default:false" json:"-"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
