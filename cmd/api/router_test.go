package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/config"
	"github.com/willjrcristo/go-assinaturas/internal/database"
	httphandler "github.com/willjrcristo/go-assinaturas/internal/handler/http"
	"github.com/willjrcristo/go-assinaturas/internal/mail"
	"github.com/willjrcristo/go-assinaturas/internal/media"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

func newTestRouter(t *testing.T, debug bool) http.Handler {
	t.Helper()
	return newTestRouterCfg(t, config.Config{Debug: debug})
}

// newTestRouterCfg completa cfg com diretórios temporários e monta a API inteira.
func newTestRouterCfg(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	dir := t.TempDir()
	cfg.SecretKey = "segredo"
	cfg.StaticRoot = filepath.Join(dir, "static")
	cfg.MediaRoot = filepath.Join(dir, "media")
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.MediaRoot, "product_files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.MediaRoot, "product_files", "a.pdf"), []byte("pdf"), 0o644))

	db, err := database.Open(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	usuarios := repository.NewSQLiteRepository(db)
	planos := repository.NewPlanoRepository(db)
	produtos := repository.NewProdutoRepository(db)
	assinaturas := repository.NewAssinaturaRepository(db)
	storage := media.NewStorage(cfg.MediaRoot)
	mailer := mail.ConsoleSender{From: "no-reply@example.com"}

	_, err = service.NewSeeder(usuarios, planos, produtos, assinaturas, storage).Run(context.Background(), service.DefaultSeedData())
	require.NoError(t, err)

	usuarioService := service.NewUsuarioService(usuarios, planos, assinaturas, mailer)
	assinaturaService := service.NewAssinaturaService(assinaturas, planos, produtos, repository.NewDownloadRepository(db), storage)
	billing := service.NewBillingService(usuarios, planos, assinaturas, service.NewStripeClient(), mailer, service.BillingConfig{})
	issuer := auth.NewTokenIssuer(cfg.SecretKey, time.Hour)

	return newRouter(cfg, handlers{
		auth:        httphandler.NewAuthHandler(usuarioService, issuer),
		usuarios:    httphandler.NewUsuarioHandler(usuarioService),
		catalogo:    httphandler.NewCatalogoHandler(service.NewCatalogoService(planos, produtos, storage), assinaturaService, storage),
		assinaturas: httphandler.NewAssinaturaHandler(assinaturaService, billing),
		webhook:     httphandler.NewStripeWebhookHandler(billing),
		requireAuth: auth.Middleware(issuer),
	})
}

func TestRouter_CORS(t *testing.T) {
	preflight := func(router http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("OPTIONS", "/planos", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("sem origens configuradas nenhuma origem é liberada", func(t *testing.T) {
		router := newTestRouter(t, false)

		rr := preflight(router, "https://qualquer.example.com")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

		req := httptest.NewRequest("GET", "/planos", nil)
		req.Header.Set("Origin", "https://qualquer.example.com")
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("só as origens configuradas", func(t *testing.T) {
		router := newTestRouterCfg(t, config.Config{CSRFTrustedOrigins: "https://app.example.com"})

		rr := preflight(router, "https://app.example.com")
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

		rr = preflight(router, "https://outra.example.com")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t, false)

	assert.Equal(t, http.StatusOK, get(router, "/").Code)

	rr := get(router, "/planos")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"nome":"Pro"`)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/assinatura").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/usuarios").Code)

	// Fora do modo debug os arquivos de produto não são servidos direto.
	assert.Equal(t, http.StatusNotFound, get(router, "/media/product_files/a.pdf").Code)

	rr = get(router, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "assinaturas_http_requests_total")
	assert.Contains(t, rr.Body.String(), "assinaturas_http_requests_in_flight")
}

func TestRouter_MediaEmDebug(t *testing.T) {
	router := newTestRouter(t, true)
	rr := get(router, "/media/product_files/a.pdf")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pdf", rr.Body.String())
}
