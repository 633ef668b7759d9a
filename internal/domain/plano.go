package domain

import "fmt"

// PlanoPadrao é o plano usado quando um produto é criado sem plano.
const PlanoPadrao = "Free"

// Plano é um nível de assinatura (um "Product" na Stripe).
type Plano struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`

	// Preço mensal em centavos. decimal(6,2) no modelo antigo.
	PrecoCentavos int64 `json:"preco_centavos"`

	// ID do preço na Stripe (ex: "price_..."). Vazio quando o plano não é vendido online.
	StripePriceID string `json:"stripe_price_id,omitempty"`

	// Quantos downloads por dia o plano permite.
	LimiteDiario int `json:"limite_diario"`
}

// Preco formata o preço como decimal com duas casas (ex: "9.99").
func (p Plano) Preco() string {
	return fmt.Sprintf("%d.%02d", p.PrecoCentavos/100, p.PrecoCentavos%100)
}

func (p Plano) String() string {
	return p.Nome
}
