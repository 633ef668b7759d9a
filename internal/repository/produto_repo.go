package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

// ProdutoRepository define a persistência dos produtos.
type ProdutoRepository interface {
	Create(ctx context.Context, produto domain.Produto) (int64, error)
	GetAll(ctx context.Context) ([]domain.Produto, error)
	GetByID(ctx context.Context, id int64) (*domain.Produto, error)
	GetByNomePlano(ctx context.Context, nome string, planoID int64) (*domain.Produto, error)
	UpdateArquivos(ctx context.Context, id int64, imagem, arquivo string) error
}

type sqliteProdutoRepository struct {
	db *sql.DB
}

func NewProdutoRepository(db *sql.DB) ProdutoRepository {
	return &sqliteProdutoRepository{db: db}
}

const produtoColunas = "id, nome, plano_id, imagem, arquivo"

func (r *sqliteProdutoRepository) Create(ctx context.Context, produto domain.Produto) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO produtos(nome, plano_id, imagem, arquivo) VALUES(?, ?, ?, ?)",
		produto.Nome, produto.PlanoID, nullString(produto.Imagem), nullString(produto.Arquivo))
	if err != nil {
		return 0, fmt.Errorf("inserindo produto %q: %w", produto.Nome, err)
	}
	return res.LastInsertId()
}

func (r *sqliteProdutoRepository) GetAll(ctx context.Context) ([]domain.Produto, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+produtoColunas+" FROM produtos ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var produtos []domain.Produto
	for rows.Next() {
		p, err := scanProduto(rows)
		if err != nil {
			return nil, err
		}
		produtos = append(produtos, *p)
	}
	return produtos, rows.Err()
}

func (r *sqliteProdutoRepository) GetByID(ctx context.Context, id int64) (*domain.Produto, error) {
	return r.getOne(ctx, "SELECT "+produtoColunas+" FROM produtos WHERE id = ?", id)
}

func (r *sqliteProdutoRepository) GetByNomePlano(ctx context.Context, nome string, planoID int64) (*domain.Produto, error) {
	return r.getOne(ctx, "SELECT "+produtoColunas+" FROM produtos WHERE nome = ? AND plano_id = ? ORDER BY id LIMIT 1", nome, planoID)
}

func (r *sqliteProdutoRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Produto, error) {
	p, err := scanProduto(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *sqliteProdutoRepository) UpdateArquivos(ctx context.Context, id int64, imagem, arquivo string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE produtos SET imagem = ?, arquivo = ? WHERE id = ?",
		nullString(imagem), nullString(arquivo), id)
	if err != nil {
		return fmt.Errorf("atualizando arquivos do produto %d: %w", id, err)
	}
	return nil
}

func scanProduto(row scanner) (*domain.Produto, error) {
	var (
		p               domain.Produto
		imagem, arquivo sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Nome, &p.PlanoID, &imagem, &arquivo); err != nil {
		return nil, err
	}
	p.Imagem = imagem.String
	p.Arquivo = arquivo.String
	return &p, nil
}
