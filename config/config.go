package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	JWTSecret   string `env:"JWT_SECRET,required"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:4200"`

	SMTPAddress       string `env:"SMTP_ADDRESS"`
	SMTPHost          string `env:"FROM_EMAIL_SMTP"`
	FromEmail         string `env:"FROM_EMAIL"`
	FromEmailPassword string `env:"FROM_EMAIL_PASSWORD"`

	PaymentBaseURL       string `env:"PAYMENT_BASE_URL" envDefault:"https://checkout.lipia.co.ke"`
	PaymentAPIKey        string `env:"PAYMENT_API_KEY"`
	PaymentCallbackURL   string `env:"PAYMENT_CALLBACK_URL"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`

	ExchangeRateURL string `env:"EXCHANGE_RATE_URL" envDefault:"https://open.er-api.com/v6/latest/USD"`

	S3Bucket string `env:"S3_BUCKET" envDefault:"sokoni"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	return cfg
}
