package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/willjrcristo/go-assinaturas/internal/config"
	httphandler "github.com/willjrcristo/go-assinaturas/internal/handler/http"
)

// handlers reúne o que o roteador precisa montar.
type handlers struct {
	auth        *httphandler.AuthHandler
	usuarios    *httphandler.UsuarioHandler
	catalogo    *httphandler.CatalogoHandler
	assinaturas *httphandler.AssinaturaHandler
	webhook     *httphandler.StripeWebhookHandler
	requireAuth httphandler.Middleware
}

func newRouter(cfg config.Config, h handlers) chi.Router {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	// Sem origens configuradas não há CORS: o cors.Handler liberaria qualquer origem.
	if origins := cfg.TrustedOrigins(); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(prometheusMiddleware)

	// Rota de Health Check
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API de Assinaturas está no ar! 🚀"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// A URL será http://localhost:8080/swagger/index.html
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticRoot))))
	// Os arquivos de produto também ficam no MEDIA_ROOT; fora do modo debug só saem pelo download.
	if cfg.Debug {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot))))
	}

	r.Mount("/auth", h.auth.Routes(h.requireAuth))
	r.Mount("/usuarios", h.usuarios.Routes(h.requireAuth))
	r.Mount("/planos", h.catalogo.PlanosRoutes(h.requireAuth))
	r.Mount("/produtos", h.catalogo.ProdutosRoutes(h.requireAuth))
	r.Mount("/assinatura", h.assinaturas.Routes(h.requireAuth))
	r.Post("/webhooks/stripe", h.webhook.HandleStripeWebhook)

	return r
}
