package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stripe/stripe-go/v78"

	_ "github.com/willjrcristo/go-assinaturas/docs" // Registra a documentação Swagger

	// Nossos pacotes internos da aplicação!
	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/config"
	"github.com/willjrcristo/go-assinaturas/internal/database"
	httphandler "github.com/willjrcristo/go-assinaturas/internal/handler/http"
	"github.com/willjrcristo/go-assinaturas/internal/jobs"
	"github.com/willjrcristo/go-assinaturas/internal/mail"
	"github.com/willjrcristo/go-assinaturas/internal/media"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

// @title           API de Assinaturas
// @version         1.0
// @description     API de planos, produtos para download e assinaturas com limite diário de downloads.
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   Will Cristo
// @contact.url    https://linkedin.com/in/willjrcristo
// @contact.email  willjrcristo@gmail.com
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Token de sessão no formato "Bearer <token>"
func main() {
	// --- 1. CONFIGURAÇÃO DO LOGGER ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("🚀 Iniciando a API de Assinaturas...")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Erro ao carregar a configuração", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// --- 2. CONEXÃO COM O BANCO DE DADOS ---
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Erro ao inicializar o banco de dados", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("💾 Conexão com o banco de dados estabelecida com sucesso.", "path", cfg.DatabasePath)

	// --- 3. INJEÇÃO DE DEPENDÊNCIAS (WIRING) ---
	// DB -> Repository -> Service -> Handler

	// Camada de Repositório
	usuarioRepo := repository.NewSQLiteRepository(db)
	planoRepo := repository.NewPlanoRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	assinaturaRepo := repository.NewAssinaturaRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	slog.Info("Camada de repositório inicializada")

	// Serviços externos
	storage := media.NewStorage(cfg.MediaRoot)
	mailer, err := mail.New(context.Background(), cfg)
	if err != nil {
		slog.Error("Erro ao configurar o envio de e-mails", "error", err)
		os.Exit(1)
	}
	stripe.Key = cfg.StripeSecretKey
	if cfg.StripeSecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY não configurada, o checkout vai falhar")
	}

	// Camada de Serviço
	usuarioService := service.NewUsuarioService(usuarioRepo, planoRepo, assinaturaRepo, mailer)
	catalogoService := service.NewCatalogoService(planoRepo, produtoRepo, storage)
	assinaturaService := service.NewAssinaturaService(assinaturaRepo, planoRepo, produtoRepo, downloadRepo, storage)
	billingService := service.NewBillingService(usuarioRepo, planoRepo, assinaturaRepo, service.NewStripeClient(), mailer,
		service.BillingConfig{
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.CheckoutSuccessURL,
			CancelURL:     cfg.CheckoutCancelURL,
		})
	slog.Info("Camada de serviço inicializada")

	// Camada de Handler
	issuer := auth.NewTokenIssuer(cfg.SecretKey, cfg.SessionTTL)
	h := handlers{
		auth:        httphandler.NewAuthHandler(usuarioService, issuer),
		usuarios:    httphandler.NewUsuarioHandler(usuarioService),
		catalogo:    httphandler.NewCatalogoHandler(catalogoService, assinaturaService, storage),
		assinaturas: httphandler.NewAssinaturaHandler(assinaturaService, billingService),
		webhook:     httphandler.NewStripeWebhookHandler(billingService),
		requireAuth: auth.Middleware(issuer),
	}
	slog.Info("Camada de handler inicializada")

	// --- 4. JOBS AGENDADOS ---
	scheduler := jobs.NewScheduler(jobs.NewJobs(assinaturaRepo, logger), logger, cfg.MetricsSchedule)
	if err := scheduler.Start(); err != nil {
		os.Exit(1)
	}

	// --- 5. ROTEADOR E SERVIDOR HTTP ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("📖 Documentação Swagger disponível em /swagger/index.html")

	go func() {
		slog.Info("✅ Servidor pronto para receber requisições", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Erro ao iniciar o servidor", "error", err)
			os.Exit(1)
		}
	}()

	// --- 6. ENCERRAMENTO ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Encerrando o servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Erro ao encerrar o servidor", "error", err)
	}
	<-scheduler.Stop().Done()
	slog.Info("👋 Servidor encerrado.")
}
