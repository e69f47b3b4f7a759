package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/gemini"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

const maxStandardizedNameLen = 200

const standardizeInstruction = `당신은 식자재 B2B 마켓플레이스의 상품명 정리 도우미입니다.
입력된 상품명을 "품목명 원산지 규격 단위" 순서의 간결한 표준 상품명 한 줄로 바꿔주세요.
설명, 따옴표, 줄바꿈 없이 표준 상품명만 출력하세요.`

// Service exposes catalog reads and the wholesaler name standardizer.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	StandardizeName(ctx context.Context, caller identity.Identity, productID uuid.UUID) (*StandardizeResult, error)
}

type service struct {
	repo      Repository
	generator gemini.Generator
	logg      *logger.Logger
}

// NewService builds the catalog service. generator may be nil, in which case
// StandardizeName fails with a dependency error.
func NewService(repo Repository, generator gemini.Generator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, generator: generator, logg: logg}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	input.Pagination = input.Pagination.Normalize()
	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ListResult{Products: rows, PageMeta: input.Pagination.Meta(total)}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindListed(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "상품을 찾을 수 없습니다.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) StandardizeName(ctx context.Context, caller identity.Identity, productID uuid.UUID) (*StandardizeResult, error) {
	if !caller.IsApprovedWholesaler() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "승인된 도매업체만 사용할 수 있습니다.")
	}
	if s.generator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generative provider not configured")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "상품을 찾을 수 없습니다.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.WholesalerID != *caller.WholesalerID {
		return nil, pkgerrors.New(pkgerrors.CodeOwnership, "본인 업체의 상품만 수정할 수 있습니다.")
	}

	reply, err := s.generator.Generate(ctx, standardizeInstruction, []gemini.Message{{Role: gemini.RoleUser, Content: product.Name}})
	if err != nil {
		return nil, err
	}
	name := truncateRunes(firstLine(reply), maxStandardizedNameLen)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "empty standardized name")
	}

	n, err := s.repo.UpdateStandardizedName(ctx, product.ID, *caller.WholesalerID, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store standardized name")
	}
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "상품을 찾을 수 없습니다.")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": product.ID.String(), "name_len": utf8.RuneCountInString(name)})
	s.logg.Info(ctx, "product name standardized")
	return &StandardizeResult{ProductID: product.ID, Name: product.Name, StandardizedName: name}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
