package inquiries

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

// Draft outcomes reported after Create.
const (
	DraftGenerated = "generated"
	DraftFailed    = "failed"
	DraftSkipped   = "skipped"
)

// Attachment is an uploaded file before validation.
type Attachment struct {
	Filename string
	Data     []byte
}

type CreateInput struct {
	Title        string
	Content      string
	Type         enums.InquiryType
	WholesalerID *uuid.UUID
	OrderID      *uuid.UUID
	Attachments  []Attachment
}

type CreateResult struct {
	Inquiry *models.Inquiry `json:"inquiry"`
	AIDraft string          `json:"ai_draft"`
}

type UpdateInput struct {
	ID      uuid.UUID
	Title   string `json:"title"`
	Content string `json:"content"`
}

type FeedbackInput struct {
	ID      uuid.UUID
	Helpful bool `json:"helpful"`
}

type AnswerInput struct {
	ID     uuid.UUID
	Answer string `json:"answer"`
}

type ListInput struct {
	Pagination pagination.Params
}

type ListResult struct {
	Inquiries []models.Inquiry `json:"inquiries"`
	types.PageMeta
}
