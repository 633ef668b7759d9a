package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

// PlanoRepository define a persistência dos planos de assinatura.
type PlanoRepository interface {
	Create(ctx context.Context, plano domain.Plano) (int64, error)
	GetAll(ctx context.Context) ([]domain.Plano, error)
	GetByID(ctx context.Context, id int64) (*domain.Plano, error)
	GetByNome(ctx context.Context, nome string) (*domain.Plano, error)
	UpdateLimiteDiario(ctx context.Context, id int64, limite int) error
	Delete(ctx context.Context, id int64) error
}

type sqlitePlanoRepository struct {
	db *sql.DB
}

func NewPlanoRepository(db *sql.DB) PlanoRepository {
	return &sqlitePlanoRepository{db: db}
}

const planoColunas = "id, nome, preco_centavos, stripe_price_id, limite_diario"

func (r *sqlitePlanoRepository) Create(ctx context.Context, plano domain.Plano) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO planos(nome, preco_centavos, stripe_price_id, limite_diario) VALUES(?, ?, ?, ?)",
		plano.Nome, plano.PrecoCentavos, nullString(plano.StripePriceID), plano.LimiteDiario)
	if err != nil {
		return 0, fmt.Errorf("inserindo plano %q: %w", plano.Nome, err)
	}
	return res.LastInsertId()
}

func (r *sqlitePlanoRepository) GetAll(ctx context.Context) ([]domain.Plano, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+planoColunas+" FROM planos ORDER BY preco_centavos, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var planos []domain.Plano
	for rows.Next() {
		p, err := scanPlano(rows)
		if err != nil {
			return nil, err
		}
		planos = append(planos, *p)
	}
	return planos, rows.Err()
}

func (r *sqlitePlanoRepository) GetByID(ctx context.Context, id int64) (*domain.Plano, error) {
	return r.getOne(ctx, "SELECT "+planoColunas+" FROM planos WHERE id = ?", id)
}

// GetByNome devolve o primeiro plano com esse nome. O nome não é único no banco.
func (r *sqlitePlanoRepository) GetByNome(ctx context.Context, nome string) (*domain.Plano, error) {
	return r.getOne(ctx, "SELECT "+planoColunas+" FROM planos WHERE nome = ? ORDER BY id LIMIT 1", nome)
}

func (r *sqlitePlanoRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Plano, error) {
	p, err := scanPlano(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *sqlitePlanoRepository) UpdateLimiteDiario(ctx context.Context, id int64, limite int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE planos SET limite_diario = ? WHERE id = ?", limite, id)
	if err != nil {
		return fmt.Errorf("atualizando limite do plano %d: %w", id, err)
	}
	return nil
}

// Delete remove o plano; produtos vão junto e assinaturas ficam sem plano.
func (r *sqlitePlanoRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM planos WHERE id = ?", id)
	return err
}

func scanPlano(row scanner) (*domain.Plano, error) {
	var (
		p       domain.Plano
		priceID sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Nome, &p.PrecoCentavos, &priceID, &p.LimiteDiario); err != nil {
		return nil, err
	}
	p.StripePriceID = priceID.String
	return &p, nil
}
