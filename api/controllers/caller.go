package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodlink-backend/api/middleware"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

func callerFrom(r *http.Request) (identity.Identity, error) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return identity.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	return caller, nil
}
