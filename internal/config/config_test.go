package config

import (
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FLIGHT_API_URL", "https://api.tequila.kiwi.com")
	t.Setenv("FLIGHT_API_KEY", "test-api-key")
	t.Setenv("SHORTENER_URL", "https://api-ssl.bitly.com")
	t.Setenv("SHORTENER_TOKEN", "test-token")
	t.Setenv("TWILIO_ACCOUNT_SID", "ACtest")
	t.Setenv("TWILIO_AUTH_TOKEN", "test-auth")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550001111")
	t.Setenv("APP_BASE_URL", "https://flight.me")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	if cfg.SweepConcurrency != 8 {
		t.Errorf("SweepConcurrency = %d, want 8", cfg.SweepConcurrency)
	}
	if cfg.SMSRatePerSec != 10 {
		t.Errorf("SMSRatePerSec = %d, want 10", cfg.SMSRatePerSec)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SWEEP_CONCURRENCY", "32")
	t.Setenv("SMS_RATE_PER_SEC", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %s, want production", cfg.Environment)
	}
	if cfg.SweepConcurrency != 32 {
		t.Errorf("SweepConcurrency = %d, want 32", cfg.SweepConcurrency)
	}
	if cfg.SMSRatePerSec != 25 {
		t.Errorf("SMSRatePerSec = %d, want 25", cfg.SMSRatePerSec)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "host=localhost")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseDSN == "" {
		t.Error("DatabaseDSN should not be empty")
	}
	if cfg.FlightAPIKey == "" {
		t.Error("FlightAPIKey should not be empty")
	}
	if cfg.TwilioAccountSID == "" {
		t.Error("TwilioAccountSID should not be empty")
	}
	if cfg.AppBaseURL == "" {
		t.Error("AppBaseURL should not be empty")
	}
}
