package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	pkgAuth "github.com/angelmondragon/foodlink-backend/pkg/auth"
	"github.com/angelmondragon/foodlink-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// Auth validates a bearer token, resolves the profile behind it and seeds the
// request context with the caller identity.
func Auth(cfg config.JWTConfig, resolver identity.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다."))
				return
			}

			claims, err := pkgAuth.ParseIdentityToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "유효하지 않은 인증 정보입니다."))
				return
			}
			subject, err := claims.SubjectID()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "유효하지 않은 인증 정보입니다."))
				return
			}

			caller, err := resolver.Resolve(r.Context(), subject)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), *caller)
			if logg != nil {
				ctx = logg.WithUserID(ctx, caller.ProfileID.String())
				ctx = logg.WithRole(ctx, string(caller.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
