package domain

import "time"

// FormatoData é o formato em que datas de calendário são gravadas no banco.
const FormatoData = "2006-01-02"

// Assinatura liga um usuário a um plano por um período.
// Cada usuário tem no máximo uma assinatura (usuario_id é único no banco).
type Assinatura struct {
	ID        int64 `json:"id"`
	UsuarioID int64 `json:"usuario_id"`

	// Zero quando o plano foi removido (ON DELETE SET NULL).
	PlanoID int64 `json:"plano_id,omitempty"`

	// ID da assinatura na Stripe (ex: "sub_...").
	StripeSubscriptionID string `json:"-"`

	DataInicio time.Time `json:"data_inicio"`
	DataFim    time.Time `json:"data_fim"`
}

// Data trunca t para a data de calendário em UTC.
func Data(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsActive diz se hoje está dentro de [DataInicio, DataFim], inclusive.
func (a Assinatura) IsActive(hoje time.Time) bool {
	h := Data(hoje)
	return !h.Before(Data(a.DataInicio)) && !h.After(Data(a.DataFim))
}

// PaidThisMonth compara só o mês/ano de DataInicio com o de hoje.
// Não acompanha ciclos de cobrança: no mês de aniversário volta a dar true todo ano.
func (a Assinatura) PaidThisMonth(hoje time.Time) bool {
	inicio := Data(a.DataInicio)
	h := Data(hoje)
	return inicio.Year() == h.Year() && inicio.Month() == h.Month()
}

// HasPlano informa se a assinatura ainda aponta para um plano.
func (a Assinatura) HasPlano() bool {
	return a.PlanoID != 0
}
