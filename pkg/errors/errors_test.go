package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForTaxonomy(t *testing.T) {
	tests := []struct {
		code   Code
		status int
		expose bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, expose: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, expose: true},
		{code: CodeForbidden, status: http.StatusForbidden, expose: true},
		{code: CodeOwnership, status: http.StatusForbidden, expose: true},
		{code: CodeStateConflict, status: http.StatusConflict, expose: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, expose: true},
		{code: CodeUpstream, status: http.StatusInternalServerError},
		{code: CodeReconciliation, status: http.StatusInternalServerError},
		{code: CodeSchemaPending, status: http.StatusServiceUnavailable, expose: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.Expose != tt.expose {
			t.Fatalf("code %s expected expose %v", tt.code, tt.expose)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s missing public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeDependency, cause, "load order")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if got := CodeOf(wrapped); got != CodeDependency {
		t.Fatalf("expected dependency code, got %s", got)
	}
	if !Is(wrapped, CodeDependency) {
		t.Fatal("expected Is to match")
	}
	if Is(nil, CodeDependency) {
		t.Fatal("nil error should not match")
	}
}

func TestCodeOfUntypedError(t *testing.T) {
	if got := CodeOf(stdErrors.New("boom")); got != CodeInternal {
		t.Fatalf("expected internal, got %s", got)
	}
}

func TestDumpIncludesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42703", ColumnName: "ai_feedback", Message: "column does not exist"}
	err := Wrap(CodeDependency, pgErr, "update inquiry")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.PGCode != "42703" || dump.PGColumn != "ai_feedback" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
	if PostgresCode(err) != "42703" {
		t.Fatalf("expected postgres code lookup")
	}
}
