package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/types"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body
}

func TestWriteSuccessFlattensObjects(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
	}{OrderID: "FLC-1", Amount: 25000})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Fatalf("expected success flag, got %v", body)
	}
	if body["orderId"] != "FLC-1" || body["amount"] != float64(25000) {
		t.Fatalf("expected flattened payload, got %v", body)
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("object payload should not be nested")
	}
}

func TestWriteSuccessNestsNonObjects(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, []string{"a", "b"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}
	body := decode(t, w)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected list under data, got %v", body)
	}
}

func TestWriteSuccessNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, nil)
	body := decode(t, w)
	if len(body) != 1 || body["success"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "최소 주문 수량은 2개입니다.").
		WithDetails(map[string]string{"field": "quantity"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Error != "최소 주문 수량은 2개입니다." {
		t.Fatalf("unexpected message %q", body.Error)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorHidesUpstreamMessages(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeUpstream, errors.New("dial tcp: refused"), "gemini call failed")
	WriteError(context.Background(), logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), w, err)

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != pkgerrors.MetadataFor(pkgerrors.CodeUpstream).PublicMessage {
		t.Fatalf("expected public message, got %q", body.Error)
	}
}

func TestWriteErrorDefaultsToInternalForUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeUnauthorized:   http.StatusUnauthorized,
		pkgerrors.CodeOwnership:      http.StatusForbidden,
		pkgerrors.CodeNotFound:       http.StatusNotFound,
		pkgerrors.CodeRateLimit:      http.StatusTooManyRequests,
		pkgerrors.CodeSchemaPending:  http.StatusServiceUnavailable,
		pkgerrors.CodeReconciliation: http.StatusInternalServerError,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, pkgerrors.New(code, "x"))
		if w.Code != status {
			t.Fatalf("%s: expected %d, got %d", code, status, w.Code)
		}
	}
}
