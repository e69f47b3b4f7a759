package config

import (
	"testing"
	"time"
)

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("FOODLINK_DB_DSN", "postgres://localhost/foodlink")
	t.Setenv("FOODLINK_JWT_SECRET", "secret")
	t.Setenv("FOODLINK_PAYMENTS_TIMEOUT", "3s")
	t.Setenv("FOODLINK_AI_API_KEY", "ai-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB.DSN != "postgres://localhost/foodlink" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
	if cfg.Payments.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Payments.Timeout)
	}
	if cfg.Payments.PayoutBusinessDays != 7 {
		t.Fatalf("expected default payout days, got %d", cfg.Payments.PayoutBusinessDays)
	}
	if cfg.AI.APIKey != "ai-key" || cfg.AI.Model == "" {
		t.Fatalf("unexpected ai config %+v", cfg.AI)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev default env")
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("FOODLINK_DB_DSN", "")
	t.Setenv("FOODLINK_JWT_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing dsn error")
	}
}

func TestFeeRate(t *testing.T) {
	rate, err := PaymentsConfig{PlatformFeeRate: "0.035"}.FeeRate()
	if err != nil {
		t.Fatalf("fee rate: %v", err)
	}
	if rate.String() != "0.035" {
		t.Fatalf("unexpected rate %s", rate)
	}
	if _, err := (PaymentsConfig{PlatformFeeRate: "1.2"}).FeeRate(); err == nil {
		t.Fatal("expected out of range error")
	}
	if _, err := (PaymentsConfig{PlatformFeeRate: "abc"}).FeeRate(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPaymentsLocation(t *testing.T) {
	loc, err := PaymentsConfig{}.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Seoul" {
		t.Fatalf("unexpected location %s", loc)
	}
	if _, err := (PaymentsConfig{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatal("expected unknown timezone error")
	}
}

func TestPubSubEnabled(t *testing.T) {
	if (PubSubConfig{ProjectID: "p"}).Enabled() {
		t.Fatal("topic required")
	}
	if !(PubSubConfig{ProjectID: "p", DomainTopic: "t"}).Enabled() {
		t.Fatal("expected enabled")
	}
}
