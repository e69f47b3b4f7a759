package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := newTestDB(t)
	client := Wrap(conn)
	ctx := context.Background()

	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}

	var count int64
	if err := conn.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after rollback, got %d", count)
	}
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := newTestDB(t)
	client := Wrap(conn)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&testModel{Name: "panicked"})
			panic("boom")
		})
	}()

	var count int64
	conn.Model(&testModel{}).Where("name = ?", "panicked").Count(&count)
	if count != 0 {
		t.Fatalf("expected panic rollback, got %d rows", count)
	}
}

func TestWithTxPassesTransactionHandle(t *testing.T) {
	conn := newTestDB(t)
	client := Wrap(conn)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "first"}).Error; err != nil {
			return err
		}
		var inside int64
		if err := tx.Model(&testModel{}).Count(&inside).Error; err != nil {
			return err
		}
		if inside != 1 {
			return fmt.Errorf("expected row visible inside tx, got %d", inside)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestSlowQueryWriterLogsThroughLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	slowQueryWriter{ctx: context.Background(), logg: logg}.Printf("SLOW SQL >= %s", "500ms")
	out := buf.String()
	if !strings.Contains(out, "SLOW SQL >= 500ms") || !strings.Contains(out, `"component":"gorm"`) {
		t.Fatalf("unexpected log output %s", out)
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing DSN error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn := newTestDB(t)
	if err := conn.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := conn.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if IsUniqueViolation(errors.New("other"), "") {
		t.Fatal("unexpected match")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "payments_order_id_key", Message: "payments_order_id_key"}, "payments_order_id_key") {
		t.Fatal("expected postgres code match")
	}
}

func TestIsUndefinedColumn(t *testing.T) {
	conn := newTestDB(t)
	err := conn.Exec("UPDATE test_models SET missing_col = 1").Error
	if !IsUndefinedColumn(err) {
		t.Fatalf("expected undefined column, got %v", err)
	}
	if !IsUndefinedColumn(&pgconn.PgError{Code: "42703"}) {
		t.Fatal("expected postgres undefined column")
	}
	if IsUndefinedColumn(errors.New("connection refused")) {
		t.Fatal("unexpected match")
	}
}
