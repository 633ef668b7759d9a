package domain

import "time" // Precisaremos do pacote time

type Usuario struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// Hash bcrypt da senha. A senha em texto puro nunca chega ao banco.
	SenhaHash string `json:"-"` // O "-" significa que este campo não será exposto na nossa API JSON.

	// Contas administrativas podem cadastrar produtos e gerenciar usuários.
	Admin bool `json:"admin"`

	// ID do cliente no Stripe (ex: "cus_...")
	// Essencial para ligar nosso usuário ao cliente na Stripe.
	StripeCustomerID string `json:"-"`

	CriadoEm time.Time `json:"criado_em"`
}
