package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/subscription"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/mail"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

// Erros de negócio relacionados à cobrança.
var (
	ErrAssinaturaJaAtiva = errors.New("usuário já possui uma assinatura ativa neste plano")
	ErrPlanoSemPreco     = errors.New("plano não está à venda")
	ErrWebhookStripe     = errors.New("erro ao processar webhook da stripe")
)

// StripeClient é o subconjunto da API da Stripe usado aqui.
type StripeClient interface {
	NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSubscription(id string) (*stripe.Subscription, error)
}

// stripeAPI chama a API real. A chave vem de stripe.Key, definida no main.
type stripeAPI struct{}

func NewStripeClient() StripeClient { return stripeAPI{} }

func (stripeAPI) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return customer.New(params)
}

func (stripeAPI) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (stripeAPI) GetSubscription(id string) (*stripe.Subscription, error) {
	return subscription.Get(id, nil)
}

// BillingConfig são as URLs e segredos do checkout.
type BillingConfig struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// BillingService liga planos pagos à Stripe e mantém as assinaturas em dia via webhook.
type BillingService struct {
	usuarios    repository.UsuarioRepository
	planos      repository.PlanoRepository
	assinaturas repository.AssinaturaRepository
	stripe      StripeClient
	mailer      mail.Sender
	cfg         BillingConfig
	now         Clock
}

func NewBillingService(usuarios repository.UsuarioRepository, planos repository.PlanoRepository,
	assinaturas repository.AssinaturaRepository, client StripeClient, mailer mail.Sender, cfg BillingConfig) *BillingService {
	return &BillingService{
		usuarios:    usuarios,
		planos:      planos,
		assinaturas: assinaturas,
		stripe:      client,
		mailer:      mailer,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CreateCheckoutSession cria uma sessão de pagamento na Stripe e devolve a URL.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, usuarioID, planoID int64) (string, error) {
	// 1. Buscar usuário e plano no nosso banco
	user, err := s.usuarios.GetByID(ctx, usuarioID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUsuarioNaoEncontrado
	}
	plano, err := s.planos.GetByID(ctx, planoID)
	if err != nil {
		return "", err
	}
	if plano == nil {
		return "", ErrPlanoNaoEncontrado
	}
	if plano.StripePriceID == "" {
		return "", ErrPlanoSemPreco
	}

	// 2. Não criar nova sessão se o usuário já paga por este plano e a assinatura está ativa.
	atual, err := s.assinaturas.GetByUsuario(ctx, usuarioID)
	if err != nil {
		return "", err
	}
	if atual != nil && atual.StripeSubscriptionID != "" && atual.PlanoID == planoID && atual.IsActive(s.now()) {
		return "", ErrAssinaturaJaAtiva
	}

	// 3. Se o usuário ainda não for um cliente na Stripe, crie um.
	stripeCustomerID := user.StripeCustomerID
	if stripeCustomerID == "" {
		c, err := s.stripe.NewCustomer(&stripe.CustomerParams{
			Name:  stripe.String(user.Username),
			Email: stripe.String(user.Email),
		})
		if err != nil {
			slog.Error("Falha ao criar cliente na Stripe", "error", err)
			return "", err
		}
		stripeCustomerID = c.ID
		if err := s.usuarios.UpdateStripeCustomerID(ctx, user.ID, stripeCustomerID); err != nil {
			return "", err
		}
	}

	// 4. Criar a Sessão de Checkout
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(stripeCustomerID),
		ClientReferenceID: stripe.String(strconv.FormatInt(user.ID, 10)),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plano.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"plano_id": strconv.FormatInt(plano.ID, 10)},
	}

	sess, err := s.stripe.NewCheckoutSession(params)
	if err != nil {
		slog.Error("Falha ao criar a sessão de checkout na Stripe", "error", err)
		return "", err
	}

	return sess.URL, nil
}

// HandleStripeWebhook verifica a assinatura do evento e o aplica.
func (s *BillingService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		slog.Error("Erro ao verificar a assinatura do webhook", "error", err)
		return ErrWebhookStripe
	}
	return s.applyEvent(ctx, event)
}

func (s *BillingService) applyEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return err
		}
		return s.checkoutCompleted(ctx, sess)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return s.subscriptionChanged(ctx, sub, event.Type == "customer.subscription.deleted")

	default:
		slog.Info("Webhook da Stripe recebido, mas não tratado", "event_type", event.Type)
	}
	return nil
}

func (s *BillingService) checkoutCompleted(ctx context.Context, sess stripe.CheckoutSession) error {
	usuarioID, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return fmt.Errorf("client_reference_id inválido %q: %w", sess.ClientReferenceID, err)
	}
	planoID, err := strconv.ParseInt(sess.Metadata["plano_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("metadata plano_id inválido: %w", err)
	}
	if sess.Subscription == nil {
		return fmt.Errorf("sessão %s sem assinatura", sess.ID)
	}

	user, err := s.usuarios.GetByID(ctx, usuarioID)
	if err != nil {
		return err
	}
	if user == nil {
		slog.Warn("Checkout concluído para usuário inexistente", "usuario_id", usuarioID)
		return nil
	}
	if user.StripeCustomerID == "" && sess.Customer != nil {
		if err := s.usuarios.UpdateStripeCustomerID(ctx, user.ID, sess.Customer.ID); err != nil {
			return err
		}
	}

	// Obtenha a assinatura completa para ter a data de expiração
	sub, err := s.stripe.GetSubscription(sess.Subscription.ID)
	if err != nil {
		return err
	}

	hoje := domain.Data(s.now())
	nova := domain.Assinatura{
		UsuarioID:            user.ID,
		PlanoID:              planoID,
		StripeSubscriptionID: sub.ID,
		DataInicio:           hoje,
		DataFim:              domain.Data(time.Unix(sub.CurrentPeriodEnd, 0)),
	}

	atual, err := s.assinaturas.GetByUsuario(ctx, user.ID)
	if err != nil {
		return err
	}
	if atual == nil {
		_, err = s.assinaturas.Create(ctx, nova)
	} else {
		nova.ID = atual.ID
		err = s.assinaturas.Update(ctx, nova)
	}
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, mail.Mensagem{
		Para:    user.Email,
		Assunto: "Assinatura confirmada",
		Corpo:   fmt.Sprintf("Olá %s, sua assinatura está ativa até %s.", user.Username, nova.DataFim.Format(domain.FormatoData)),
	}); err != nil {
		slog.Error("Falha ao enviar e-mail de confirmação", "usuario_id", user.ID, "error", err)
	}
	return nil
}

func (s *BillingService) subscriptionChanged(ctx context.Context, sub stripe.Subscription, removida bool) error {
	assinatura, err := s.assinaturas.GetByStripeID(ctx, sub.ID)
	if err != nil {
		return err
	}
	if assinatura == nil {
		slog.Warn("Assinatura da Stripe sem correspondente local", "stripe_subscription_id", sub.ID)
		return nil
	}

	switch {
	case removida || sub.Status == stripe.SubscriptionStatusCanceled:
		// DataFim é inclusiva: o último dia de acesso é a véspera do cancelamento.
		fim := domain.Data(s.now())
		if sub.EndedAt > 0 {
			fim = domain.Data(time.Unix(sub.EndedAt, 0))
		}
		assinatura.DataFim = fim.AddDate(0, 0, -1)
	case sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing:
		assinatura.DataFim = domain.Data(time.Unix(sub.CurrentPeriodEnd, 0))
	default:
		slog.Info("Status de assinatura sem efeito local", "status", sub.Status, "stripe_subscription_id", sub.ID)
		return nil
	}

	return s.assinaturas.Update(ctx, *assinatura)
}
