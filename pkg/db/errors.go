package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

const (
	pgUniqueViolation = "23505"
	pgUndefinedColumn = "42703"
)

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is provided the constraint must also be named in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	if pkgerrors.PostgresCode(err) == pgUniqueViolation {
		return true
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsUndefinedColumn reports whether err was caused by a column that does not
// exist yet, i.e. a migration that has not been applied.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	if pkgerrors.PostgresCode(err) == pgUndefinedColumn {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column named") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "does not exist"))
}
