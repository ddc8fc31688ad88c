package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN      string `env:"DATABASE_DSN,required=true"`
	RedisURL         string `env:"REDIS_URL,required=true"`
	FlightAPIURL     string `env:"FLIGHT_API_URL,required=true"`
	FlightAPIKey     string `env:"FLIGHT_API_KEY,required=true"`
	ShortenerURL     string `env:"SHORTENER_URL,required=true"`
	ShortenerToken   string `env:"SHORTENER_TOKEN,required=true"`
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID,required=true"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN,required=true"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER,required=true"`
	AppBaseURL       string `env:"APP_BASE_URL,required=true"`
	Environment      string `env:"ENVIRONMENT,default=development"`
	SweepConcurrency int    `env:"SWEEP_CONCURRENCY,default=8"`
	SMSRatePerSec    int    `env:"SMS_RATE_PER_SEC,default=10"`
	APIPort          int    `env:"API_PORT,default=8080"`
	LogLevel         string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
