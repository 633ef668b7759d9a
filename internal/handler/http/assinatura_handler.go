package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

type AssinaturaService interface {
	Status(ctx context.Context, usuarioID int64) (*service.StatusAssinatura, error)
}

// A interface de cobrança inclui os métodos da Stripe.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, usuarioID, planoID int64) (string, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
}

// AssinaturaHandler atende /assinatura, sempre para o usuário autenticado.
type AssinaturaHandler struct {
	assinaturas AssinaturaService
	billing     BillingService
}

func NewAssinaturaHandler(assinaturas AssinaturaService, billing BillingService) *AssinaturaHandler {
	return &AssinaturaHandler{assinaturas: assinaturas, billing: billing}
}

type checkoutRequest struct {
	PlanoID int64 `json:"plano_id"`
}

func (h *AssinaturaHandler) Routes(requireAuth Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAuth)

	r.Get("/", h.Status)                         // GET /assinatura
	r.Post("/checkout", h.CreateCheckoutSession) // POST /assinatura/checkout

	return r
}

// @Summary      Situação da assinatura
// @Description  Plano, vigência, downloads de hoje e limite diário do usuário autenticado
// @Tags         assinaturas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.StatusAssinatura
// @Failure      404  {object}  map[string]string
// @Router       /assinatura [get]
func (h *AssinaturaHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.FromContext(r.Context())

	status, err := h.assinaturas.Status(r.Context(), sessao.UsuarioID)
	if err != nil {
		if errors.Is(err, service.ErrSemAssinatura) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao buscar assinatura")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// @Summary      Cria uma sessão de checkout na Stripe
// @Description  Gera uma URL de pagamento para o usuário autenticado assinar um plano
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        plano  body      checkoutRequest  true  "Plano desejado"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /assinatura/checkout [post]
func (h *AssinaturaHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanoID <= 0 {
		respondWithError(w, http.StatusBadRequest, "plano_id inválido")
		return
	}
	sessao, _ := auth.FromContext(r.Context())

	checkoutURL, err := h.billing.CreateCheckoutSession(r.Context(), sessao.UsuarioID, req.PlanoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsuarioNaoEncontrado), errors.Is(err, service.ErrPlanoNaoEncontrado):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssinaturaJaAtiva):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrPlanoSemPreco):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao criar sessão de checkout")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"checkout_url": checkoutURL})
}

// StripeWebhookHandler fica separado porque a rota não usa o token de sessão.
type StripeWebhookHandler struct {
	billing BillingService
}

func NewStripeWebhookHandler(b BillingService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		billing: b,
	}
}

// HandleStripeWebhook é o handler para a rota que recebe os eventos da Stripe.
func (h *StripeWebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536) // Limite de 64KB
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Erro ao ler o corpo do webhook", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Erro ao ler corpo da requisição")
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	err = h.billing.HandleStripeWebhook(r.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, service.ErrWebhookStripe) {
			respondWithError(w, http.StatusBadRequest, "Falha na verificação da assinatura do webhook")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro interno ao processar webhook")
		}
		return
	}

	// Responda com 200 OK para a Stripe saber que recebemos o evento com sucesso.
	w.WriteHeader(http.StatusOK)
}
