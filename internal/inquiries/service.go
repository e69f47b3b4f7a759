package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/events"
	"github.com/angelmondragon/foodlink-backend/pkg/gemini"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/storage"
)

const (
	maxTitleLen      = 200
	minContentLen    = 10
	maxContentLen    = 3000
	maxAnswerLen     = 5000
	msgNotFound      = "문의를 찾을 수 없습니다."
	msgNotOwner      = "본인이 작성한 문의만 처리할 수 있습니다."
	msgNotAnswered   = "답변이 완료된 문의만 수정하거나 삭제할 수 있습니다."
	draftInstruction = `당신은 식자재 B2B 마켓플레이스 고객센터 상담원입니다.
고객 문의에 대해 정중한 한국어 답변 초안을 작성하세요.
확인이 필요한 사실(주문 상태, 환불 가능 여부 등)은 단정하지 말고 담당자가 확인 후 안내한다고 적으세요.`
)

// Service is the support inquiry workflow.
type Service interface {
	Create(ctx context.Context, caller identity.Identity, input CreateInput) (*CreateResult, error)
	ListMine(ctx context.Context, caller identity.Identity, input ListInput) (*ListResult, error)
	Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Inquiry, error)
	Update(ctx context.Context, caller identity.Identity, input UpdateInput) (*models.Inquiry, error)
	Delete(ctx context.Context, caller identity.Identity, id uuid.UUID) error
	Feedback(ctx context.Context, caller identity.Identity, input FeedbackInput) error
	Answer(ctx context.Context, caller identity.Identity, input AnswerInput) (*models.Inquiry, error)
}

type service struct {
	repo      Repository
	store     storage.Store
	generator gemini.Generator
	events    events.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the inquiry service. generator may be nil, in which case
// drafts are skipped.
func NewService(repo Repository, store storage.Store, generator gemini.Generator, publisher events.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiries repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		store:     store,
		generator: generator,
		events:    publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, caller identity.Identity, input CreateInput) (*CreateResult, error) {
	if caller.Role != enums.RoleRetailer && caller.Role != enums.RoleWholesaler {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "문의 작성 권한이 없습니다.")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "제목과 내용을 입력해주세요.")
	}
	if err := checkLengths(title, content, 1); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "문의 유형이 올바르지 않습니다.").
			WithDetails(map[string]any{"type": input.Type})
	}

	files, err := prepareAttachments(input.Attachments)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.store.Upload(ctx, attachmentKey(caller.ProfileID, now, f.Ext), f.Data, f.ContentType)
		if err != nil {
			s.cleanup(ctx, urls)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload attachment")
		}
		urls = append(urls, url)
	}

	inquiry := &models.Inquiry{
		ID:             uuid.New(),
		UserID:         caller.ProfileID,
		Title:          title,
		Content:        content,
		Type:           input.Type,
		Status:         enums.InquiryStatusOpen,
		WholesalerID:   input.WholesalerID,
		OrderID:        input.OrderID,
		AttachmentURLs: urls,
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		s.cleanup(ctx, urls)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inquiry")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"inquiry_id": inquiry.ID.String(), "attachments": len(urls)})
	s.logg.Info(ctx, "inquiry created")
	s.publish(ctx, events.InquiryCreated, caller, map[string]any{
		"inquiryId": inquiry.ID,
		"type":      inquiry.Type,
	})

	return &CreateResult{Inquiry: inquiry, AIDraft: s.draft(ctx, inquiry)}, nil
}

// draft stores a best-effort AI reply draft. It never fails Create.
func (s *service) draft(ctx context.Context, inquiry *models.Inquiry) string {
	if s.generator == nil {
		return DraftSkipped
	}
	prompt := fmt.Sprintf("문의 유형: %s\n제목: %s\n내용:\n%s", inquiry.Type, inquiry.Title, inquiry.Content)
	reply, err := s.generator.Generate(ctx, draftInstruction, []gemini.Message{{Role: gemini.RoleUser, Content: prompt}})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inquiry draft generation failed")
		return DraftFailed
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return DraftFailed
	}
	if err := s.repo.SetDraftReply(ctx, inquiry.ID, reply); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inquiry draft store failed")
		return DraftFailed
	}
	inquiry.AIDraftReply = &reply
	return DraftGenerated
}

func (s *service) cleanup(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.store.DeleteURLs(ctx, urls); err != nil {
		for _, e := range multierr.Errors(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", e.Error()), "attachment cleanup failed")
		}
	}
}

func checkLengths(title, content string, minContent int) error {
	details := map[string]any{}
	if n := utf8.RuneCountInString(title); n < 1 || n > maxTitleLen {
		details["title"] = fmt.Sprintf("제목은 1~%d자여야 합니다.", maxTitleLen)
	}
	if n := utf8.RuneCountInString(content); n < minContent || n > maxContentLen {
		details["content"] = fmt.Sprintf("내용은 %d~%d자여야 합니다.", minContent, maxContentLen)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "입력값이 올바르지 않습니다.").WithDetails(details)
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, caller identity.Identity, input ListInput) (*ListResult, error) {
	page := input.Pagination.Normalize()
	rows, total, err := s.repo.ListByUser(ctx, caller.ProfileID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inquiries")
	}
	return &ListResult{Inquiries: rows, PageMeta: page.Meta(total)}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inquiry")
	}
	return inquiry, nil
}

func (s *service) Get(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case caller.IsAdmin(), inquiry.UserID == caller.ProfileID:
		return inquiry, nil
	case inquiry.WholesalerID != nil && caller.WholesalerID != nil && *inquiry.WholesalerID == *caller.WholesalerID:
		return inquiry, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeOwnership, msgNotOwner)
}

// classify explains why a conditional write on an inquiry matched no rows.
func (s *service) classify(ctx context.Context, caller identity.Identity, id uuid.UUID, requireAnswered bool) error {
	inquiry, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if inquiry.UserID != caller.ProfileID {
		return pkgerrors.New(pkgerrors.CodeOwnership, msgNotOwner)
	}
	if requireAnswered && inquiry.Status != enums.InquiryStatusAnswered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, msgNotAnswered).
			WithDetails(map[string]any{"status": inquiry.Status})
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "문의가 변경되었습니다. 다시 시도해주세요.")
}

func (s *service) Update(ctx context.Context, caller identity.Identity, input UpdateInput) (*models.Inquiry, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if err := checkLengths(title, content, minContentLen); err != nil {
		return nil, err
	}

	n, err := s.repo.UpdateAnswered(ctx, input.ID, caller.ProfileID, title, content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inquiry")
	}
	if n == 0 {
		return nil, s.classify(ctx, caller, input.ID, true)
	}
	return s.load(ctx, input.ID)
}

func (s *service) Delete(ctx context.Context, caller identity.Identity, id uuid.UUID) error {
	inquiry, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if inquiry.UserID != caller.ProfileID {
		return pkgerrors.New(pkgerrors.CodeOwnership, msgNotOwner)
	}

	n, err := s.repo.DeleteAnswered(ctx, id, caller.ProfileID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inquiry")
	}
	if n == 0 {
		return s.classify(ctx, caller, id, true)
	}
	s.cleanup(ctx, inquiry.AttachmentURLs)
	return nil
}

func (s *service) Feedback(ctx context.Context, caller identity.Identity, input FeedbackInput) error {
	n, err := s.repo.SetFeedback(ctx, input.ID, caller.ProfileID, input.Helpful)
	if err != nil {
		if db.IsUndefinedColumn(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inquiries.ai_feedback column missing")
			return pkgerrors.Wrap(pkgerrors.CodeSchemaPending, err, "피드백 기능이 아직 준비되지 않았습니다.")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store feedback")
	}
	if n == 0 {
		return s.classify(ctx, caller, input.ID, false)
	}
	return nil
}

func (s *service) Answer(ctx context.Context, caller identity.Identity, input AnswerInput) (*models.Inquiry, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "관리자만 답변할 수 있습니다.")
	}
	answer := strings.TrimSpace(input.Answer)
	if answer == "" || utf8.RuneCountInString(answer) > maxAnswerLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("답변은 1~%d자여야 합니다.", maxAnswerLen))
	}

	n, err := s.repo.Answer(ctx, input.ID, answer, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "answer inquiry")
	}
	if n == 0 {
		if _, err := s.load(ctx, input.ID); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "이미 답변된 문의입니다.")
	}
	return s.load(ctx, input.ID)
}

func (s *service) publish(ctx context.Context, eventType events.Type, caller identity.Identity, data any) {
	actor := &events.Actor{ProfileID: caller.ProfileID, Role: caller.Role.String()}
	if err := s.events.Publish(ctx, eventType, actor, data); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "event_type", string(eventType)), "event publish failed")
	}
}
