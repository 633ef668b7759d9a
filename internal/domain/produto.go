package domain

// Produto é um arquivo para download, liberado por exatamente um plano.
type Produto struct {
	ID      int64  `json:"id"`
	Nome    string `json:"nome"`
	PlanoID int64  `json:"plano_id"`

	// Caminhos relativos ao MEDIA_ROOT. Vazio significa "sem arquivo".
	Imagem  string `json:"imagem,omitempty"`
	Arquivo string `json:"arquivo,omitempty"`
}

func (p Produto) String() string {
	return p.Nome
}
