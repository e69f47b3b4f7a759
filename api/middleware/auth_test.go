package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/pkg/auth"
	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

type stubResolver struct {
	identity *identity.Identity
	err      error
	subject  uuid.UUID
}

func (s *stubResolver) Resolve(_ context.Context, subject uuid.UUID) (*identity.Identity, error) {
	s.subject = subject
	return s.identity, s.err
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", Audience: "authenticated"}

func okHandler(seen *identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen, _ = IdentityFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func mint(t *testing.T, cfg config.JWTConfig, subject uuid.UUID, ttl time.Duration) string {
	t.Helper()
	token, err := auth.MintIdentityToken(cfg, time.Now(), subject, "buyer@example.com", ttl)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, &stubResolver{}, nil)(okHandler(nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, &stubResolver{}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsForeignSecret(t *testing.T) {
	other := testJWT
	other.Secret = "other"
	handler := Auth(testJWT, &stubResolver{}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, other, uuid.New(), time.Minute))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsIdentity(t *testing.T) {
	subject := uuid.New()
	retailerID := uuid.New()
	resolver := &stubResolver{identity: &identity.Identity{ProfileID: subject, Role: enums.RoleRetailer, RetailerID: &retailerID}}

	var seen identity.Identity
	handler := Auth(testJWT, resolver, nil)(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, testJWT, subject, time.Minute))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resolver.subject != subject {
		t.Fatalf("expected resolver to receive %s, got %s", subject, resolver.subject)
	}
	if seen.ProfileID != subject || seen.RetailerID == nil || *seen.RetailerID != retailerID {
		t.Fatalf("unexpected identity in context: %+v", seen)
	}
}

func TestAuthPropagatesResolverErrors(t *testing.T) {
	resolver := &stubResolver{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "등록된 사용자 정보를 찾을 수 없습니다.")}
	handler := Auth(testJWT, resolver, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, testJWT, uuid.New(), time.Minute))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.RoleRetailer, enums.RoleWholesaler)(okHandler(nil))

	cases := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"admin", WithIdentity(context.Background(), identity.Identity{Role: enums.RoleAdmin}), http.StatusForbidden},
		{"retailer", WithIdentity(context.Background(), identity.Identity{Role: enums.RoleRetailer}), http.StatusOK},
		{"wholesaler", WithIdentity(context.Background(), identity.Identity{Role: enums.RoleWholesaler}), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tc.ctx)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestRecovererWritesEnvelope(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	handler := RequestID(nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(resp.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("expected minted uuid, got %q", resp.Header().Get("X-Request-Id"))
	}
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "bad id\r\ninjected")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	got := resp.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected minted uuid for unsafe header, got %q", got)
	}
	if seen != got {
		t.Fatalf("context id %q does not match header %q", seen, got)
	}
}
