package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the connection shared by domain repositories and the
// conditional-write helpers they build on.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a Base that runs on tx. A nil tx keeps the current connection.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// UpdateWhere applies updates to the rows of model matching query and reports
// how many rows changed. Callers express their preconditions (owner, status)
// in query so the check and the write are a single statement.
func (b Base) UpdateWhere(ctx context.Context, model any, updates map[string]any, query string, args ...any) (int64, error) {
	res := b.DB(ctx).Model(model).Where(query, args...).Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteWhere deletes the rows of model matching query and reports how many
// were removed.
func (b Base) DeleteWhere(ctx context.Context, model any, query string, args ...any) (int64, error) {
	res := b.DB(ctx).Where(query, args...).Delete(model)
	return res.RowsAffected, res.Error
}
