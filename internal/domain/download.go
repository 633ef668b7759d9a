package domain

import "time"

// LogDownload registra um download de um produto por um usuário em uma data.
// A contagem por (usuário, hoje) é o consumo diário comparado com Plano.LimiteDiario.
type LogDownload struct {
	ID int64 `json:"id"`

	// Zero quando o usuário foi removido (ON DELETE SET NULL).
	UsuarioID int64 `json:"usuario_id,omitempty"`

	ProdutoID int64     `json:"produto_id"`
	Data      time.Time `json:"data"`
}
