package config

import "testing"

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("SNAPSHOT_KEY", "")
	t.Setenv("AMOUNT_CEILING", "")
	t.Setenv("DATE_FUTURE_TOLERANCE_HOURS", "")
	t.Setenv("RAW_EXCERPT_LIMIT", "")

	cfg := Load()
	if cfg.NATSSubject != "receipts.uploaded" {
		t.Fatalf("expected default subject receipts.uploaded, got %q", cfg.NATSSubject)
	}
	if cfg.SnapshotKey != "" {
		t.Fatalf("expected snapshot merge disabled by default, got %q", cfg.SnapshotKey)
	}
	if cfg.AmountCeiling != "100000.00" {
		t.Fatalf("expected default amount ceiling 100000.00, got %q", cfg.AmountCeiling)
	}
	if cfg.DateFutureToleranceHours != 24 {
		t.Fatalf("expected default future tolerance 24, got %d", cfg.DateFutureToleranceHours)
	}
	if cfg.RawExcerptLimit != 500 {
		t.Fatalf("expected default excerpt limit 500, got %d", cfg.RawExcerptLimit)
	}
}

func TestLoadParsesPipelineOverrides(t *testing.T) {
	t.Setenv("SNAPSHOT_KEY", "legacy/expenses.json")
	t.Setenv("AMOUNT_CEILING", "50000.00")
	t.Setenv("RAW_EXCERPT_LIMIT", "200")
	t.Setenv("API_RATE_LIMIT_RPS", "5")

	cfg := Load()
	if cfg.SnapshotKey != "legacy/expenses.json" {
		t.Fatalf("expected snapshot key override, got %q", cfg.SnapshotKey)
	}
	if cfg.AmountCeiling != "50000.00" {
		t.Fatalf("expected amount ceiling override, got %q", cfg.AmountCeiling)
	}
	if cfg.RawExcerptLimit != 200 {
		t.Fatalf("expected excerpt limit 200, got %d", cfg.RawExcerptLimit)
	}
	if cfg.APIRateLimitRPS != 5 {
		t.Fatalf("expected rate limit 5, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadIgnoresMalformedIntegers(t *testing.T) {
	t.Setenv("RAW_EXCERPT_LIMIT", "not-a-number")

	cfg := Load()
	if cfg.RawExcerptLimit != 500 {
		t.Fatalf("expected fallback 500, got %d", cfg.RawExcerptLimit)
	}
}
