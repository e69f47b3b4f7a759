package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/gemini"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

const (
	MaxMessages      = 30
	MaxContentLength = 4000
	msgTryAgain      = "잠시 후 다시 시도해주세요."
)

const systemInstruction = `당신은 식자재 B2B 마켓플레이스 "FoodLink"의 상담 도우미입니다.
- 항상 한국어로 간결하고 정중하게 답변하세요.
- 상품 탐색, 주문, 결제, 배송, 정산, 문의 등록 방법 등 마켓플레이스 이용에 관한 질문에만 답변하세요.
- 마켓플레이스와 관련 없는 질문에는 답변할 수 없다고 안내하세요.
- 개별 주문이나 결제 내역은 조회할 수 없으므로 주문 내역 화면이나 1:1 문의를 안내하세요.
- 가격, 재고, 배송일은 확정해서 말하지 말고 상품 상세 화면에서 확인하도록 안내하세요.`

// Message is one turn of the conversation sent by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Reply struct {
	Message string `json:"message"`
}

// Service forwards a conversation to the generative provider.
type Service interface {
	Chat(ctx context.Context, messages []Message) (*Reply, error)
}

type service struct {
	generator gemini.Generator
	logg      *logger.Logger
}

// NewService builds the chat proxy. A nil generator makes every call fail
// with a dependency error.
func NewService(generator gemini.Generator, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{generator: generator, logg: logg}, nil
}

func (s *service) Chat(ctx context.Context, messages []Message) (*Reply, error) {
	history, lengths, err := normalize(messages)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "AI 상담 기능이 설정되지 않았습니다.")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"message_count":   len(history),
		"message_lengths": lengths,
	})
	s.logg.Info(ctx, "chat request")

	reply, err := s.generator.Generate(ctx, systemInstruction, history)
	if err != nil {
		s.logg.Error(ctx, "chat generation failed", err)
		if pkgerrors.Is(err, pkgerrors.CodeRateLimit) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, msgTryAgain)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.logg.Warn(ctx, "chat generation returned empty reply")
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, msgTryAgain)
	}

	s.logg.Info(s.logg.WithField(ctx, "reply_length", utf8.RuneCountInString(reply)), "chat reply")
	return &Reply{Message: reply}, nil
}

func normalize(messages []Message) ([]gemini.Message, []int, error) {
	if len(messages) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "메시지를 입력해주세요.")
	}
	if len(messages) > MaxMessages {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("대화는 최대 %d개 메시지까지 보낼 수 있습니다.", MaxMessages))
	}

	history := make([]gemini.Message, 0, len(messages))
	lengths := make([]int, 0, len(messages))
	for i, m := range messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != gemini.RoleUser && role != gemini.RoleModel {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "메시지 역할은 user 또는 model 이어야 합니다.").
				WithDetails(map[string]any{"index": i})
		}
		content := strings.TrimSpace(m.Content)
		n := utf8.RuneCountInString(content)
		if n == 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "메시지를 입력해주세요.").
				WithDetails(map[string]any{"index": i})
		}
		if n > MaxContentLength {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("메시지는 %d자 이하로 입력해주세요.", MaxContentLength)).
				WithDetails(map[string]any{"index": i})
		}
		history = append(history, gemini.Message{Role: role, Content: content})
		lengths = append(lengths, n)
	}
	return history, lengths, nil
}
