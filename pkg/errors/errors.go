package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeOwnership      Code = "OWNERSHIP_MISMATCH"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeStateConflict  Code = "STATE_CONFLICT"
	CodeIdempotency    Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit      Code = "RATE_LIMIT_EXCEEDED"
	CodePaymentFailed  Code = "PAYMENT_FAILED"
	CodeUpstream       Code = "UPSTREAM_ERROR"
	CodeReconciliation Code = "RECONCILIATION_REQUIRED"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeDependency     Code = "DEPENDENCY_ERROR"
	CodeSchemaPending  Code = "SCHEMA_NOT_MIGRATED"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// Expose reports whether the error's own message may be shown to callers.
	Expose bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "입력값이 올바르지 않습니다.",
		DetailsAllowed: true,
		Expose:         true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "로그인이 필요합니다.",
		Expose:        true,
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "접근 권한이 없습니다.",
		Expose:        true,
	},
	CodeOwnership: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "본인의 항목만 처리할 수 있습니다.",
		Expose:        true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "요청한 항목을 찾을 수 없습니다.",
		Expose:        true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "이미 처리된 요청입니다.",
		Expose:        true,
	},
	CodeStateConflict: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "현재 상태에서는 처리할 수 없습니다.",
		DetailsAllowed: true,
		Expose:         true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "동일한 요청 키가 다른 요청에 사용되었습니다.",
		DetailsAllowed: true,
		Expose:         true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		Expose:        true,
	},
	CodePaymentFailed: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "결제 승인에 실패했습니다.",
		DetailsAllowed: true,
		Expose:         true,
	},
	CodeUpstream: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "잠시 후 다시 시도해주세요.",
	},
	CodeReconciliation: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "결제는 완료되었으나 주문 처리 중 오류가 발생했습니다. 고객센터로 문의해주세요.",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "일시적인 오류가 발생했습니다.",
	},
	CodeDependency: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "서비스를 일시적으로 사용할 수 없습니다.",
	},
	CodeSchemaPending: {
		HTTPStatus:    http.StatusServiceUnavailable,
		PublicMessage: "아직 준비 중인 기능입니다.",
		Expose:        true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the outermost typed error, or CodeInternal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
