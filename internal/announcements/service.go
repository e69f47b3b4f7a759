package announcements

import (
	"context"
	"fmt"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

type ListResult struct {
	Announcements []models.Announcement `json:"announcements"`
	types.PageMeta
}

type Service interface {
	List(ctx context.Context, page pagination.Params) (*ListResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("announcements repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListPublished(ctx, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list announcements")
	}
	return &ListResult{Announcements: rows, PageMeta: page.Meta(total)}, nil
}
