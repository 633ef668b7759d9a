package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "segredo")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "segredo", cfg.SecretKey)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "./media", cfg.MediaRoot)
	assert.Equal(t, "console", cfg.EmailBackend)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.TrustedOrigins())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "segredo")
	t.Setenv("DATABASE_PATH", "/tmp/app.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CSRF_TRUSTED_ORIGINS", "https://a.example.com, ,http://localhost:3000")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/app.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example.com", "http://localhost:3000"}, cfg.TrustedOrigins())
}

func TestLoad_SecretKey(t *testing.T) {
	t.Run("obrigatória fora do modo debug", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "")
		_, err := load(viper.New())
		assert.ErrorIs(t, err, ErrSecretKeyAusente)
	})

	t.Run("chave de desenvolvimento em debug", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "")
		t.Setenv("DEBUG", "true")
		cfg, err := load(viper.New())
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.SecretKey)
	})
}
