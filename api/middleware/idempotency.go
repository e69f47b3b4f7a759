package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/inquiries"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/foodlink-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	// Money-moving routes keep their replay record for a week.
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

// replayRoute matches a path template where "*" is one segment and a trailing
// "**" is any remainder. maxBody of zero means validators.MaxJSONBodyBytes.
type replayRoute struct {
	method   string
	template string
	critical bool
	maxBody  int64
}

var replayRoutes = []replayRoute{
	{http.MethodPost, "/api/v1/checkout", true, 0},
	{http.MethodPost, "/api/v1/payments/confirm", true, 0},
	{http.MethodPost, "/api/v1/orders/*/cancel", true, 0},
	{http.MethodPost, "/api/v1/inquiries", false, inquiries.MaxFormBytes},
	{http.MethodPost, "/api/v1/wholesaler/orders/*/status", false, 0},
	{http.MethodPost, "/api/v1/admin/**", false, 0},
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency replays the first response of a mutating request retried with
// the same Idempotency-Key by the same caller. Requests without the header pass
// through and 5xx responses are never recorded.
func Idempotency(store pkgredis.IdempotencyStore, defaultTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			route, covered := matchRoute(r.Method, r.URL.Path)
			if store == nil || clientKey == "" || !covered {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			ttl := route.ttl(defaultTTL)

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, route.bodyLimit()))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "요청 본문이 너무 큽니다.").
						WithDetails(map[string]any{"maxBytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "요청 본문을 읽을 수 없습니다."))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintRequest(r, body)
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)

			raw, err := store.Get(ctx, key)
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup"))
				return
			default:
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency record corrupt"))
					return
				}
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "동일한 요청 키가 다른 요청에 사용되었습니다."))
					return
				}
				if prior.ContentType != "" {
					w.Header().Set("Content-Type", prior.ContentType)
				}
				w.Header().Set(replayedHeader, "true")
				w.WriteHeader(prior.Status)
				_, _ = w.Write(prior.Body)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, capture: &bytes.Buffer{}}
			next.ServeHTTP(rec, r)

			status := rec.statusOrOK()
			if status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.capture.Bytes(),
				Fingerprint: fingerprint,
			})
			if err == nil {
				_, err = store.SetNX(ctx, key, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency record not saved", err)
			}
		})
	}
}

func fingerprintRequest(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + r.URL.Path + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func matchRoute(method, path string) (replayRoute, bool) {
	for _, route := range replayRoutes {
		if route.method == method && matchTemplate(route.template, path) {
			return route, true
		}
	}
	return replayRoute{}, false
}

func (r replayRoute) ttl(defaultTTL time.Duration) time.Duration {
	switch {
	case r.critical:
		return criticalIdempotencyTTL
	case defaultTTL > 0:
		return defaultTTL
	default:
		return 24 * time.Hour
	}
}

func (r replayRoute) bodyLimit() int64 {
	if r.maxBody > 0 {
		return r.maxBody
	}
	return validators.MaxJSONBodyBytes
}

func matchTemplate(template, path string) bool {
	want := strings.Split(strings.Trim(template, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range want {
		if seg == "**" {
			return len(got) > i
		}
		if i >= len(got) || (seg != "*" && seg != got[i]) || got[i] == "" {
			return false
		}
	}
	return len(got) == len(want)
}
