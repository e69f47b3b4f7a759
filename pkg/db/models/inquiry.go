package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
)

type Inquiry struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Title          string              `gorm:"column:title;not null" json:"title"`
	Content        string              `gorm:"column:content;not null" json:"content"`
	Type           enums.InquiryType   `gorm:"column:type;type:text;not null" json:"type"`
	Status         enums.InquiryStatus `gorm:"column:status;type:text;not null;default:'open'" json:"status"`
	WholesalerID   *uuid.UUID          `gorm:"column:wholesaler_id;type:uuid" json:"wholesaler_id,omitempty"`
	OrderID        *uuid.UUID          `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	Answer         *string             `gorm:"column:answer" json:"answer,omitempty"`
	AnsweredAt     *time.Time          `gorm:"column:answered_at" json:"answered_at,omitempty"`
	// AIFeedback is read-only here; it is written by a targeted update so a
	// database missing the column can still create and list inquiries.
	AIFeedback     *bool               `gorm:"column:ai_feedback;->" json:"ai_feedback,omitempty"`
	AIDraftReply   *string             `gorm:"column:ai_draft_reply" json:"ai_draft_reply,omitempty"`
	AttachmentURLs []string            `gorm:"column:attachment_urls;type:jsonb;serializer:json" json:"attachment_urls"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
