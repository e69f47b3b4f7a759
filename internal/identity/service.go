package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

// Resolver maps an authenticated subject to its local identity.
type Resolver interface {
	Resolve(ctx context.Context, subject uuid.UUID) (*Identity, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve loads the profile for subject. A subject with no profile is
// unauthenticated from this service's point of view. Missing business rows
// leave the corresponding id nil rather than failing.
func (s *service) Resolve(ctx context.Context, subject uuid.UUID) (*Identity, error) {
	profile, err := s.repo.FindProfile(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "등록된 사용자 정보를 찾을 수 없습니다.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if !profile.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "알 수 없는 사용자 권한입니다.")
	}

	id := &Identity{
		ProfileID:   profile.ID,
		Role:        profile.Role,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	}

	switch profile.Role {
	case enums.RoleRetailer:
		retailer, err := s.repo.FindRetailerByProfile(ctx, profile.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
		}
		if retailer != nil {
			id.RetailerID = &retailer.ID
		}
	case enums.RoleWholesaler:
		wholesaler, err := s.repo.FindWholesalerByProfile(ctx, profile.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wholesaler")
		}
		if wholesaler != nil {
			id.WholesalerID = &wholesaler.ID
			status := wholesaler.Status
			id.WholesalerStatus = &status
		}
	}
	return id, nil
}
