// Package config carrega as configurações da aplicação a partir de variáveis de ambiente.
// A struct Config é montada uma vez no início do processo e passada explicitamente
// para as camadas que precisam dela.
package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config guarda toda a configuração da aplicação.
type Config struct {
	SecretKey  string `mapstructure:"SECRET_KEY"`
	Debug      bool   `mapstructure:"DEBUG"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	DatabasePath string `mapstructure:"DATABASE_PATH"`
	StaticRoot   string `mapstructure:"STATIC_ROOT"`
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`

	// Lista separada por vírgulas, ex: "https://app.exemplo.com,http://localhost:3000".
	CSRFTrustedOrigins string `mapstructure:"CSRF_TRUSTED_ORIGINS"`

	EmailBackend   string `mapstructure:"EMAIL_BACKEND"` // "console" ou "ses"
	EmailFrom      string `mapstructure:"EMAIL_FROM"`
	EmailAPIKey    string `mapstructure:"EMAIL_API_KEY"`
	EmailAPISecret string `mapstructure:"EMAIL_API_SECRET"`
	AWSRegion      string `mapstructure:"AWS_REGION"`

	StripePublicKey     string `mapstructure:"STRIPE_PUBLIC_KEY"`
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `mapstructure:"CHECKOUT_CANCEL_URL"`

	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	MetricsSchedule string        `mapstructure:"METRICS_SCHEDULE"`
}

var keys = []string{
	"SECRET_KEY", "DEBUG", "SERVER_PORT",
	"DATABASE_PATH", "STATIC_ROOT", "MEDIA_ROOT", "CSRF_TRUSTED_ORIGINS",
	"EMAIL_BACKEND", "EMAIL_FROM", "EMAIL_API_KEY", "EMAIL_API_SECRET", "AWS_REGION",
	"STRIPE_PUBLIC_KEY", "STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"CHECKOUT_SUCCESS_URL", "CHECKOUT_CANCEL_URL",
	"SESSION_TTL", "METRICS_SCHEDULE",
}

var ErrSecretKeyAusente = errors.New("SECRET_KEY não configurada")

// Load lê o .env (se existir) e as variáveis de ambiente.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("Arquivo .env não encontrado, usando apenas o ambiente")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (cfg Config, err error) {
	v.SetDefault("DEBUG", false)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_PATH", "./sqlite-database.db")
	v.SetDefault("STATIC_ROOT", "./static")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("EMAIL_BACKEND", "console")
	v.SetDefault("EMAIL_FROM", "no-reply@example.com")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/sucesso?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cancelou")
	v.SetDefault("SESSION_TTL", 14*24*time.Hour) // duas semanas, como o cookie de sessão antigo
	v.SetDefault("METRICS_SCHEDULE", "@every 15m")
	v.AutomaticEnv()

	// Bind explícito para que as chaves apareçam no Unmarshal.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if cfg.SecretKey == "" {
		if !cfg.Debug {
			return cfg, ErrSecretKeyAusente
		}
		cfg.SecretKey = "insecure-dev-key"
	}
	return cfg, nil
}

// TrustedOrigins devolve CSRF_TRUSTED_ORIGINS como slice, sem entradas vazias.
func (c Config) TrustedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CSRFTrustedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
