package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "TOKEN_TTL", "REPORT_DAILY_LIMIT", "JWT_SECRET", "EVENTS_EXCHANGE"} {
		t.Setenv(key, "")
	}
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.ReportDailyLimit != 10 {
		t.Errorf("expected daily limit 10, got %d", cfg.ReportDailyLimit)
	}
	if cfg.EventsExchange != "roadsmart.events" {
		t.Errorf("unexpected exchange %s", cfg.EventsExchange)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development signing secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/roads.db")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REPORT_DAILY_LIMIT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.SQLitePath != "/tmp/roads.db" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.TokenTTL)
	}
	if cfg.ReportDailyLimit != 3 {
		t.Errorf("expected limit 3, got %d", cfg.ReportDailyLimit)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("expected configured secret, got %s", cfg.JWTSecret)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"JWT_SECRET", ""},
		{"DB_DRIVER", "mysql"},
		{"TOKEN_TTL", "forever"},
		{"REPORT_DAILY_LIMIT", "-1"},
		{"REPORT_DAILY_LIMIT", "ten"},
	}

	for _, test := range tests {
		t.Run(test.key+"="+test.value, func(t *testing.T) {
			t.Setenv("ENV", "production")
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv(test.key, test.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", test.key, test.value)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := Database{Host: "db", User: "roads", Password: "secret", Name: "roadsmart", Port: "5432", SSLMode: "disable"}
	want := "host=db user=roads password=secret dbname=roadsmart port=5432 sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
